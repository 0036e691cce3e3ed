package port

import (
	"context"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

type UsageRecorder interface {
	// RecordCommand counts one processed command toward the organization's
	// daily usage
	RecordCommand(ctx context.Context, orgID string, kind domain.ActionKind) error
}
