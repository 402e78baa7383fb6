package properties

import (
	"time"

	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/internal/risk"
)

// PropertyType classifies a listing
type PropertyType string

const (
	PropertyTypePG     PropertyType = "pg"
	PropertyTypeHostel PropertyType = "hostel"
	PropertyTypeFlat   PropertyType = "flat"
	PropertyTypeRoom   PropertyType = "room"
)

// PropertyStatus is the listing lifecycle state
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"
	PropertyStatusInactive PropertyStatus = "inactive"
)

// Property is a rental listing. RankingPenaltyLevel and FeaturedEligible are
// denormalized from the owner's risk snapshot so search never joins owner_risk.
type Property struct {
	ID                  uuid.UUID         `json:"id"`
	OwnerID             uuid.UUID         `json:"owner_id"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	PropertyType        PropertyType      `json:"property_type"`
	City                string            `json:"city"`
	Locality            string            `json:"locality"`
	Address             string            `json:"address"`
	RentMonthly         int64             `json:"rent_monthly"`
	Deposit             int64             `json:"deposit"`
	Amenities           []string          `json:"amenities"`
	Status              PropertyStatus    `json:"status"`
	RankingPenaltyLevel risk.PenaltyLevel `json:"ranking_penalty_level"`
	FeaturedEligible    bool              `json:"featured_eligible"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// CreatePropertyRequest is the payload for creating a listing
type CreatePropertyRequest struct {
	Title        string       `json:"title" binding:"required"`
	Description  string       `json:"description"`
	PropertyType PropertyType `json:"property_type" binding:"required"`
	City         string       `json:"city" binding:"required"`
	Locality     string       `json:"locality"`
	Address      string       `json:"address"`
	RentMonthly  int64        `json:"rent_monthly" binding:"required,gt=0"`
	Deposit      int64        `json:"deposit" binding:"gte=0"`
	Amenities    []string     `json:"amenities"`
}

// UpdatePropertyRequest is the payload for updating a listing
type UpdatePropertyRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	City        *string         `json:"city"`
	Locality    *string         `json:"locality"`
	Address     *string         `json:"address"`
	RentMonthly *int64          `json:"rent_monthly"`
	Deposit     *int64          `json:"deposit"`
	Amenities   []string        `json:"amenities"`
	Status      *PropertyStatus `json:"status"`
}

// SearchFilters narrows a property search
type SearchFilters struct {
	City         string
	PropertyType PropertyType
	MinRent      int64
	MaxRent      int64
}
