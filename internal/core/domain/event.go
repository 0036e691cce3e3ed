package domain

import "time"

// ItemChangeEvent is published after a command mutates inventory. Sync
// consumers (POS, e-commerce) subscribe per organization and re-pull the
// affected records.
type ItemChangeEvent struct {
	OrgID      string     `json:"org_id"`
	Action     ActionKind `json:"action"`
	Affected   int        `json:"affected"`
	Names      []string   `json:"names,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
