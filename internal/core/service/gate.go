package service

import (
	"strings"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

// Verdict is the confirmation gate's decision for an interpreted intent.
type Verdict int

const (
	// VerdictNotAction means the message was a question, or the classification
	// was not confident enough to act on.
	VerdictNotAction Verdict = iota

	// VerdictNeedsValue means the action is clear but its scalar value is
	// missing and must be asked for before anything is touched.
	VerdictNeedsValue

	// VerdictProceed hands the intent to the resolver and executor.
	VerdictProceed
)

// EvaluateIntent is a pure function of the intent and the confidence
// threshold. It never touches the datastore.
func EvaluateIntent(intent domain.Intent, minConfidence float64) Verdict {
	if intent.Kind == domain.ActionNone || intent.Confidence < minConfidence {
		return VerdictNotAction
	}
	if intent.Kind.RequiresValue() && strings.TrimSpace(intent.Value) == "" {
		return VerdictNeedsValue
	}
	return VerdictProceed
}
