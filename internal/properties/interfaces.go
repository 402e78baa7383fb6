package properties

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the properties repository contract
type RepositoryInterface interface {
	Create(ctx context.Context, property *Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	Update(ctx context.Context, property *Property) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filters SearchFilters, limit, offset int) ([]*Property, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Property, error)
}

// ViewRecorder is the slice of the risk pipeline the listing detail page needs.
type ViewRecorder interface {
	RecordPropertyView(ctx context.Context, propertyID, ownerID uuid.UUID, userID *uuid.UUID) error
}
