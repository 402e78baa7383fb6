package properties

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/internal/risk"
	"github.com/roomatlas/pg-marketplace/pkg/cache"
	"github.com/roomatlas/pg-marketplace/pkg/common"
	"github.com/roomatlas/pg-marketplace/pkg/logger"
	"go.uber.org/zap"
)

// Service handles property listing business logic
type Service struct {
	repo  RepositoryInterface
	views ViewRecorder
	cache *cache.Manager
}

// NewService creates a new properties service. views and cache may be nil.
func NewService(repo RepositoryInterface, views ViewRecorder, cacheManager *cache.Manager) *Service {
	return &Service{repo: repo, views: views, cache: cacheManager}
}

// CreateProperty creates a listing for an owner. New listings start with no
// ranking penalty; the next risk recompute overwrites the penalty columns for
// the owner's whole portfolio anyway.
func (s *Service) CreateProperty(ctx context.Context, ownerID uuid.UUID, req *CreatePropertyRequest) (*Property, error) {
	property := &Property{
		OwnerID:             ownerID,
		Title:               req.Title,
		Description:         req.Description,
		PropertyType:        req.PropertyType,
		City:                req.City,
		Locality:            req.Locality,
		Address:             req.Address,
		RentMonthly:         req.RentMonthly,
		Deposit:             req.Deposit,
		Amenities:           req.Amenities,
		Status:              PropertyStatusActive,
		RankingPenaltyLevel: risk.PenaltyNone,
		FeaturedEligible:    true,
	}

	if err := s.repo.Create(ctx, property); err != nil {
		return nil, err
	}

	return property, nil
}

// GetProperty returns a listing and records the impression for the owner's
// conversion-rate signal. View tracking is best-effort: a telemetry failure
// never fails the page.
func (s *Service) GetProperty(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, common.NewNotFoundError("property not found", common.ErrNotFound)
	}

	if s.views != nil {
		if err := s.views.RecordPropertyView(ctx, property.ID, property.OwnerID, viewerID); err != nil {
			logger.WarnContext(ctx, "failed to record property view",
				zap.String("property_id", property.ID.String()),
				zap.Error(err),
			)
		}
	}

	return property, nil
}

// UpdateProperty updates a listing after verifying ownership
func (s *Service) UpdateProperty(ctx context.Context, id, ownerID uuid.UUID, req *UpdatePropertyRequest) (*Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, common.NewNotFoundError("property not found", common.ErrNotFound)
	}
	if property.OwnerID != ownerID {
		return nil, common.NewAppError(http.StatusForbidden, "property belongs to another owner", common.ErrForbidden)
	}

	if req.Title != nil {
		property.Title = *req.Title
	}
	if req.Description != nil {
		property.Description = *req.Description
	}
	if req.City != nil {
		property.City = *req.City
	}
	if req.Locality != nil {
		property.Locality = *req.Locality
	}
	if req.Address != nil {
		property.Address = *req.Address
	}
	if req.RentMonthly != nil {
		property.RentMonthly = *req.RentMonthly
	}
	if req.Deposit != nil {
		property.Deposit = *req.Deposit
	}
	if req.Amenities != nil {
		property.Amenities = req.Amenities
	}
	if req.Status != nil {
		property.Status = *req.Status
	}

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, err
	}

	return property, nil
}

// DeactivateProperty soft-deletes a listing after verifying ownership
func (s *Service) DeactivateProperty(ctx context.Context, id, ownerID uuid.UUID) error {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if property == nil {
		return common.NewNotFoundError("property not found", common.ErrNotFound)
	}
	if property.OwnerID != ownerID {
		return common.NewAppError(http.StatusForbidden, "property belongs to another owner", common.ErrForbidden)
	}

	return s.repo.Deactivate(ctx, id)
}

// searchPage is the cached shape of one search result page
type searchPage struct {
	Items []*Property `json:"items"`
	Total int64       `json:"total"`
}

// SearchProperties lists active listings matching the filters. Unfiltered and
// city-only pages are cached briefly; staleness is bounded by the TTL.
func (s *Service) SearchProperties(ctx context.Context, filters SearchFilters, limit, offset int) ([]*Property, int64, error) {
	cacheable := s.cache != nil && filters.PropertyType == "" && filters.MinRent == 0 && filters.MaxRent == 0
	key := cache.Keys.PropertySearch(filters.City, limit, offset)

	if cacheable {
		var cached searchPage
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Items, cached.Total, nil
		}
	}

	items, total, err := s.repo.Search(ctx, filters, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, searchPage{Items: items, Total: total}, cache.TTL.Short()); err != nil {
			logger.WarnContext(ctx, "failed to cache property search page", zap.Error(err))
		}
	}

	return items, total, nil
}

// ListOwnerProperties lists every listing an owner has
func (s *Service) ListOwnerProperties(ctx context.Context, ownerID uuid.UUID) ([]*Property, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}
