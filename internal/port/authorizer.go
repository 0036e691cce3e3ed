package port

import (
	"context"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

type Authorizer interface {
	// Authorize resolves the caller's role in the organization, ok is false
	// when the caller is not a member
	Authorize(ctx context.Context, userID, orgID string) (domain.Role, bool, error)
}
