package port

import (
	"context"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

type EventPublisher interface {
	// PublishItemChange notifies downstream sync consumers of a mutation
	PublishItemChange(ctx context.Context, event domain.ItemChangeEvent) error
}
