package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// BookingEvent is the payload carried by bookings.* subjects.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	PropertyID uuid.UUID `json:"property_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Status     string    `json:"status"`
}

// PaymentEvent is the payload carried by payments.* subjects.
type PaymentEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	PropertyID    uuid.UUID `json:"property_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	PaymentStatus string    `json:"payment_status"`
	WasPaid       bool      `json:"was_paid"` // status reverted after a successful payment
}

// RiskEvent is the payload carried by risk.* subjects.
type RiskEvent struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	RiskScore int       `json:"risk_score"`
	RiskLevel string    `json:"risk_level"`
}

// DecodePayment unmarshals a payment event payload from the envelope.
func DecodePayment(e *Event) (*PaymentEvent, error) {
	var payload PaymentEvent
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode payment event %s: %w", e.ID, err)
	}
	return &payload, nil
}

// DecodeBooking unmarshals a booking event payload from the envelope.
func DecodeBooking(e *Event) (*BookingEvent, error) {
	var payload BookingEvent
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil, fmt.Errorf("decode booking event %s: %w", e.ID, err)
	}
	return &payload, nil
}
