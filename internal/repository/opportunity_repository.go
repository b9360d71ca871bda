package repository

import (
	"context"

	"github.com/oppscout/oppscout-backend/internal/domain"
)

// OpportunityRepository is the optional durable archive of discovered
// opportunities. Upsert is keyed by the stable opportunity id.
type OpportunityRepository interface {
	Upsert(ctx context.Context, opp *domain.Opportunity) error
	GetByID(ctx context.Context, id string) (*domain.Opportunity, error)
	ListTop(ctx context.Context, limit int) ([]*domain.Opportunity, error)
	Count(ctx context.Context) (int, error)
}
