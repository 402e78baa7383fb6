package bookings

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the payment lifecycle state of a booking
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// BookingStatus is the booking lifecycle state
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingFailed    BookingStatus = "failed"
)

// Booking is a tenant's reservation of a listing. OwnerID is denormalized
// from the property so risk aggregation reads bookings without a join.
type Booking struct {
	ID            uuid.UUID     `json:"id"`
	PropertyID    uuid.UUID     `json:"property_id"`
	OwnerID       uuid.UUID     `json:"owner_id"`
	TenantID      uuid.UUID     `json:"tenant_id"`
	Amount        int64         `json:"amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	BookingStatus BookingStatus `json:"booking_status"`
	MoveInDate    time.Time     `json:"move_in_date"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CreateBookingRequest is the payload for creating a booking
type CreateBookingRequest struct {
	PropertyID uuid.UUID `json:"property_id" binding:"required"`
	MoveInDate time.Time `json:"move_in_date" binding:"required"`
}

// PaymentCallbackRequest is the payload delivered by the payment provider
type PaymentCallbackRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Status    string    `json:"status" binding:"required"`
	Reference string    `json:"reference"`
}
