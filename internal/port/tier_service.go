package port

import (
	"context"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

type TierService interface {
	// Allow checks the organization's plan limit for the resource, returning
	// a human-readable limit message when blocked
	Allow(ctx context.Context, orgID string, resource domain.TierResource) (bool, string, error)
}
