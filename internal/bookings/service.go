package bookings

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/roomatlas/pg-marketplace/internal/risk"
	"github.com/roomatlas/pg-marketplace/pkg/common"
	"github.com/roomatlas/pg-marketplace/pkg/eventbus"
	"github.com/roomatlas/pg-marketplace/pkg/logger"
	"go.uber.org/zap"
)

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}

// Service handles booking business logic and feeds the risk pipeline on
// payment reversals and cancellations.
type Service struct {
	repo       RepositoryInterface
	properties PropertyGetter
	risk       RiskRecorder
	bus        Publisher
}

// NewService creates a new bookings service. risk and bus may be nil.
func NewService(repo RepositoryInterface, properties PropertyGetter, riskService RiskRecorder, bus Publisher) *Service {
	return &Service{repo: repo, properties: properties, risk: riskService, bus: bus}
}

// CreateBooking reserves a listing for a tenant. The listing's owner is
// denormalized onto the booking row.
func (s *Service) CreateBooking(ctx context.Context, tenantID uuid.UUID, req *CreateBookingRequest) (*Booking, error) {
	listing, err := s.properties.GetListing(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if listing == nil || !listing.Active {
		return nil, common.NewNotFoundError("property not available", common.ErrNotFound)
	}
	if listing.OwnerID == tenantID {
		return nil, common.NewBadRequestError("owners cannot book their own listing", common.ErrBadRequest)
	}

	booking := &Booking{
		PropertyID:    listing.ID,
		OwnerID:       listing.OwnerID,
		TenantID:      tenantID,
		Amount:        listing.RentMonthly,
		PaymentStatus: PaymentPending,
		BookingStatus: BookingPending,
		MoveInDate:    req.MoveInDate,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publishBooking(ctx, eventbus.SubjectBookingCreated, booking)
	return booking, nil
}

// GetBooking returns a booking visible to its tenant or owner
func (s *Service) GetBooking(ctx context.Context, id, requesterID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, common.NewNotFoundError("booking not found", common.ErrNotFound)
	}
	if booking.TenantID != requesterID && booking.OwnerID != requesterID {
		return nil, common.NewAppError(http.StatusForbidden, "booking belongs to another user", common.ErrForbidden)
	}
	return booking, nil
}

// CancelBooking cancels a tenant's booking and re-scores the owner, since
// cancellation volume and repeated owner/tenant pairs feed the risk score.
func (s *Service) CancelBooking(ctx context.Context, id, tenantID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, common.NewNotFoundError("booking not found", common.ErrNotFound)
	}
	if booking.TenantID != tenantID {
		return nil, common.NewAppError(http.StatusForbidden, "booking belongs to another user", common.ErrForbidden)
	}
	if booking.BookingStatus == BookingCancelled {
		return booking, nil
	}

	if err := s.repo.UpdateBookingStatus(ctx, id, BookingCancelled); err != nil {
		return nil, err
	}
	booking.BookingStatus = BookingCancelled

	s.recomputeRisk(ctx, booking.OwnerID)
	s.publishBooking(ctx, eventbus.SubjectBookingCancelled, booking)
	return booking, nil
}

// HandlePaymentCallback applies a payment provider notification. A reversal
// (paid booking moving to failed or refunded) is a strong fraud signal and is
// recorded with elevated severity before the owner is re-scored.
func (s *Service) HandlePaymentCallback(ctx context.Context, req *PaymentCallbackRequest) error {
	booking, err := s.repo.GetByID(ctx, req.BookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return common.NewNotFoundError("booking not found", common.ErrNotFound)
	}

	status := PaymentStatus(req.Status)
	switch status {
	case PaymentPaid, PaymentFailed, PaymentRefunded:
	default:
		return common.NewBadRequestError("unknown payment status", common.ErrBadRequest)
	}

	if booking.PaymentStatus == status {
		return nil
	}

	wasPaid := booking.PaymentStatus == PaymentPaid

	if err := s.repo.UpdatePaymentStatus(ctx, booking.ID, status); err != nil {
		return err
	}

	switch status {
	case PaymentPaid:
		if err := s.repo.UpdateBookingStatus(ctx, booking.ID, BookingConfirmed); err != nil {
			return err
		}
		s.recomputeRisk(ctx, booking.OwnerID)
		s.publishPayment(ctx, eventbus.SubjectPaymentPaid, booking, status, wasPaid)

	case PaymentFailed, PaymentRefunded:
		if wasPaid {
			s.trackEvent(ctx, risk.TrackEventInput{
				EventType:  risk.EventTypePaymentReversal,
				OwnerID:    booking.OwnerID,
				UserID:     &booking.TenantID,
				PropertyID: &booking.PropertyID,
				Severity:   risk.SeverityPaymentReversal,
				Details:    map[string]interface{}{"booking_id": booking.ID.String(), "reference": req.Reference},
			})
		} else {
			s.trackEvent(ctx, risk.TrackEventInput{
				EventType:  risk.EventTypePaymentFailed,
				OwnerID:    booking.OwnerID,
				UserID:     &booking.TenantID,
				PropertyID: &booking.PropertyID,
				Details:    map[string]interface{}{"booking_id": booking.ID.String()},
			})
		}

		if status == PaymentFailed {
			if err := s.repo.UpdateBookingStatus(ctx, booking.ID, BookingFailed); err != nil {
				return err
			}
		}

		s.recomputeRisk(ctx, booking.OwnerID)
		s.publishPayment(ctx, eventbus.SubjectPaymentFailed, booking, status, wasPaid)
	}

	return nil
}

// ListTenantBookings lists the tenant's bookings with pagination
func (s *Service) ListTenantBookings(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Booking, int64, error) {
	return s.repo.ListByTenant(ctx, tenantID, limit, offset)
}

// ListOwnerBookings lists bookings against the owner's listings with pagination
func (s *Service) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Booking, int64, error) {
	return s.repo.ListByOwner(ctx, ownerID, limit, offset)
}

func (s *Service) trackEvent(ctx context.Context, in risk.TrackEventInput) {
	if s.risk == nil {
		return
	}
	if err := s.risk.TrackSuspiciousEvent(ctx, in); err != nil {
		logger.WarnContext(ctx, "failed to track suspicious event",
			zap.String("event_type", in.EventType),
			zap.String("owner_id", in.OwnerID.String()),
			zap.Error(err),
		)
	}
}

// recomputeRisk is best-effort: the payments.failed consumer re-triggers the
// recompute, and the next relevant event heals a missed run anyway.
func (s *Service) recomputeRisk(ctx context.Context, ownerID uuid.UUID) {
	if s.risk == nil {
		return
	}
	if _, err := s.risk.RecomputeOwnerRisk(ctx, ownerID); err != nil {
		logger.WarnContext(ctx, "failed to recompute owner risk",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) publishBooking(ctx context.Context, subject string, booking *Booking) {
	if s.bus == nil {
		return
	}

	event, err := eventbus.NewEvent(subject, "bookings-service", eventbus.BookingEvent{
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		OwnerID:    booking.OwnerID,
		TenantID:   booking.TenantID,
		Status:     string(booking.BookingStatus),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to build booking event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish booking event", zap.Error(err))
	}
}

func (s *Service) publishPayment(ctx context.Context, subject string, booking *Booking, status PaymentStatus, wasPaid bool) {
	if s.bus == nil {
		return
	}

	event, err := eventbus.NewEvent(subject, "bookings-service", eventbus.PaymentEvent{
		BookingID:     booking.ID,
		PropertyID:    booking.PropertyID,
		OwnerID:       booking.OwnerID,
		TenantID:      booking.TenantID,
		PaymentStatus: string(status),
		WasPaid:       wasPaid,
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to build payment event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish payment event", zap.Error(err))
	}
}
