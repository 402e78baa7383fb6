package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for bookings
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new bookings repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `
	id, property_id, owner_id, tenant_id, amount, payment_status,
	booking_status, move_in_date, created_at, updated_at
`

// Create inserts a new booking
func (r *Repository) Create(ctx context.Context, booking *Booking) error {
	query := `
		INSERT INTO bookings (
			id, property_id, owner_id, tenant_id, amount,
			payment_status, booking_status, move_in_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	booking.ID = uuid.New()
	err := r.db.QueryRow(ctx, query,
		booking.ID, booking.PropertyID, booking.OwnerID, booking.TenantID,
		booking.Amount, booking.PaymentStatus, booking.BookingStatus, booking.MoveInDate,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by ID. Returns (nil, nil) when no row exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)

	booking := &Booking{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID, &booking.PropertyID, &booking.OwnerID, &booking.TenantID,
		&booking.Amount, &booking.PaymentStatus, &booking.BookingStatus,
		&booking.MoveInDate, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// UpdatePaymentStatus transitions a booking's payment state
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error {
	_, err := r.db.Exec(ctx,
		`UPDATE bookings SET payment_status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

// UpdateBookingStatus transitions a booking's lifecycle state
func (r *Repository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status BookingStatus) error {
	_, err := r.db.Exec(ctx,
		`UPDATE bookings SET booking_status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// ListByTenant lists a tenant's bookings with pagination
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Booking, int64, error) {
	return r.list(ctx, "tenant_id", tenantID, limit, offset)
}

// ListByOwner lists bookings against an owner's listings with pagination
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Booking, int64, error) {
	return r.list(ctx, "owner_id", ownerID, limit, offset)
}

func (r *Repository) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*Booking, int64, error) {
	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM bookings WHERE %s = $1", column)
	if err := r.db.QueryRow(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE %s = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, bookingColumns, column)

	rows, err := r.db.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	items := make([]*Booking, 0)
	for rows.Next() {
		booking := &Booking{}
		err := rows.Scan(
			&booking.ID, &booking.PropertyID, &booking.OwnerID, &booking.TenantID,
			&booking.Amount, &booking.PaymentStatus, &booking.BookingStatus,
			&booking.MoveInDate, &booking.CreatedAt, &booking.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		items = append(items, booking)
	}
	return items, total, nil
}
