package properties

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for property listings
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new properties repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const propertyColumns = `
	id, owner_id, title, description, property_type, city, locality, address,
	rent_monthly, deposit, amenities, status, ranking_penalty_level,
	featured_eligible, created_at, updated_at
`

// Create inserts a new listing
func (r *Repository) Create(ctx context.Context, property *Property) error {
	query := `
		INSERT INTO properties (
			id, owner_id, title, description, property_type, city, locality,
			address, rent_monthly, deposit, amenities, status,
			ranking_penalty_level, featured_eligible
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	property.ID = uuid.New()
	err := r.db.QueryRow(ctx, query,
		property.ID, property.OwnerID, property.Title, property.Description,
		property.PropertyType, property.City, property.Locality, property.Address,
		property.RentMonthly, property.Deposit, property.Amenities, property.Status,
		property.RankingPenaltyLevel, property.FeaturedEligible,
	).Scan(&property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

// GetByID retrieves a listing by ID. Returns (nil, nil) when no row exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, propertyColumns)

	property := &Property{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&property.ID, &property.OwnerID, &property.Title, &property.Description,
		&property.PropertyType, &property.City, &property.Locality, &property.Address,
		&property.RentMonthly, &property.Deposit, &property.Amenities, &property.Status,
		&property.RankingPenaltyLevel, &property.FeaturedEligible,
		&property.CreatedAt, &property.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return property, nil
}

// Update persists listing fields owned by the listing owner. Risk-managed
// columns (ranking_penalty_level, featured_eligible) are deliberately excluded.
func (r *Repository) Update(ctx context.Context, property *Property) error {
	query := `
		UPDATE properties SET
			title = $2, description = $3, city = $4, locality = $5, address = $6,
			rent_monthly = $7, deposit = $8, amenities = $9, status = $10,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		property.ID, property.Title, property.Description, property.City,
		property.Locality, property.Address, property.RentMonthly,
		property.Deposit, property.Amenities, property.Status,
	).Scan(&property.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a listing
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE properties SET status = 'inactive', updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate property: %w", err)
	}
	return nil
}

// Search lists active properties with pagination. Ordering demotes penalized
// owners: featured listings first, then lighter penalty tiers, newest first
// within a tier.
func (r *Repository) Search(ctx context.Context, filters SearchFilters, limit, offset int) ([]*Property, int64, error) {
	conditions := []string{"status = 'active'"}
	args := []interface{}{}
	argPos := 1

	if filters.City != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(city) = LOWER($%d)", argPos))
		args = append(args, filters.City)
		argPos++
	}
	if filters.PropertyType != "" {
		conditions = append(conditions, fmt.Sprintf("property_type = $%d", argPos))
		args = append(args, filters.PropertyType)
		argPos++
	}
	if filters.MinRent > 0 {
		conditions = append(conditions, fmt.Sprintf("rent_monthly >= $%d", argPos))
		args = append(args, filters.MinRent)
		argPos++
	}
	if filters.MaxRent > 0 {
		conditions = append(conditions, fmt.Sprintf("rent_monthly <= $%d", argPos))
		args = append(args, filters.MaxRent)
		argPos++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count properties: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		%s
		ORDER BY featured_eligible DESC,
		         CASE ranking_penalty_level
		             WHEN 'none' THEN 0
		             WHEN 'low' THEN 1
		             WHEN 'medium' THEN 2
		             ELSE 3
		         END,
		         created_at DESC
		LIMIT $%d OFFSET $%d
	`, propertyColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search properties: %w", err)
	}
	defer rows.Close()

	items, err := scanProperties(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByOwner lists every listing an owner has, regardless of status
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Property, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM properties WHERE owner_id = $1 ORDER BY created_at DESC
	`, propertyColumns)

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner properties: %w", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}

func scanProperties(rows pgx.Rows) ([]*Property, error) {
	items := make([]*Property, 0)
	for rows.Next() {
		property := &Property{}
		err := rows.Scan(
			&property.ID, &property.OwnerID, &property.Title, &property.Description,
			&property.PropertyType, &property.City, &property.Locality, &property.Address,
			&property.RentMonthly, &property.Deposit, &property.Amenities, &property.Status,
			&property.RankingPenaltyLevel, &property.FeaturedEligible,
			&property.CreatedAt, &property.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		items = append(items, property)
	}
	return items, nil
}
