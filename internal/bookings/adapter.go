package bookings

import (
	"context"

	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/internal/properties"
)

// propertySource adapts the properties repository to the PropertyGetter
// contract. It reads the row directly so resolving a booking never counts as
// a listing impression.
type propertySource struct {
	repo properties.RepositoryInterface
}

// NewPropertySource creates a PropertyGetter backed by the properties repository
func NewPropertySource(repo properties.RepositoryInterface) PropertyGetter {
	return &propertySource{repo: repo}
}

func (ps *propertySource) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	property, err := ps.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, nil
	}
	return &Listing{
		ID:          property.ID,
		OwnerID:     property.OwnerID,
		RentMonthly: property.RentMonthly,
		Active:      property.Status == properties.PropertyStatusActive,
	}, nil
}
