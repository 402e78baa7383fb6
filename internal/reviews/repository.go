package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for reviews
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new reviews repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new review
func (r *Repository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (id, property_id, tenant_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	review.ID = uuid.New()
	err := r.db.QueryRow(ctx, query,
		review.ID, review.PropertyID, review.TenantID, review.Rating, review.Comment,
	).Scan(&review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListByProperty lists a listing's reviews with pagination, newest first
func (r *Repository) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*Review, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE property_id = $1`, propertyID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := `
		SELECT id, property_id, tenant_id, rating, comment, created_at
		FROM reviews
		WHERE property_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, propertyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	items := make([]*Review, 0)
	for rows.Next() {
		review := &Review{}
		err := rows.Scan(
			&review.ID, &review.PropertyID, &review.TenantID,
			&review.Rating, &review.Comment, &review.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		items = append(items, review)
	}
	return items, total, nil
}

// GetRatingSummary aggregates a listing's rating
func (r *Repository) GetRatingSummary(ctx context.Context, propertyID uuid.UUID) (*RatingSummary, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews WHERE property_id = $1
	`
	summary := &RatingSummary{PropertyID: propertyID}
	err := r.db.QueryRow(ctx, query, propertyID).Scan(&summary.AverageRating, &summary.ReviewCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating summary: %w", err)
	}
	return summary, nil
}

// HasReviewed reports whether the tenant already reviewed the listing
func (r *Repository) HasReviewed(ctx context.Context, propertyID, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE property_id = $1 AND tenant_id = $2)`,
		propertyID, tenantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return exists, nil
}
