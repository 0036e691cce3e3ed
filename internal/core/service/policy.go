package service

import "time"

// Policy carries the tunable limits of the command engine. Values come from
// configuration; the defaults match long-standing production behavior.
type Policy struct {
	// ConfidenceThreshold is the minimum interpreter confidence below which a
	// message is treated as a question.
	ConfidenceThreshold float64

	// DeleteCap is the largest candidate set delete_item will act on.
	DeleteCap int

	// SummaryLimit caps how many records are rendered into the interpreter
	// prompt.
	SummaryLimit int

	// NameSampleLimit bounds the affected-name sample in outcomes.
	NameSampleLimit int

	// RateLimit and RateWindow define how many commands an organization may
	// send per fixed window.
	RateLimit  int
	RateWindow time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		ConfidenceThreshold: 0.7,
		DeleteCap:           5,
		SummaryLimit:        100,
		NameSampleLimit:     5,
		RateLimit:           30,
		RateWindow:          time.Minute,
	}
}
