package domain

// Outcome reports the result of one executed action.
type Outcome struct {
	Success      bool
	Kind         ActionKind
	Affected     int
	Message      string
	RecordErrors []string
	SampleNames  []string
	Overflow     int
}

// SampleNames returns up to limit item names and the count of items left out
// of the sample.
func SampleNames(items []Item, limit int) ([]string, int) {
	if limit <= 0 || len(items) == 0 {
		return nil, len(items)
	}
	n := len(items)
	if n > limit {
		n = limit
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = items[i].Name
	}
	return names, len(items) - n
}
