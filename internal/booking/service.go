package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/domain"
	"github.com/agendahub/booking-backend/internal/repository"
)

// Service owns the write path for appointments. Every state change commits
// together with its outbox event; nothing here talks to the notification
// pipeline directly.
type Service struct {
	appts    repository.AppointmentRepository
	schedule repository.WorkScheduleRepository
	clk      clock.Clock
	slot     time.Duration
	logger   *zap.Logger

	// Hooks for metrics — optional, nil-safe via NewService.
	onCreated  func()
	onCanceled func()
	onConflict func()
}

// Hooks carries the metric callbacks injected by main.
type Hooks struct {
	OnCreated  func()
	OnCanceled func()
	OnConflict func()
}

func NewService(
	appts repository.AppointmentRepository,
	schedule repository.WorkScheduleRepository,
	clk clock.Clock,
	slotDuration time.Duration,
	logger *zap.Logger,
	hooks Hooks,
) *Service {
	if hooks.OnCreated == nil {
		hooks.OnCreated = func() {}
	}
	if hooks.OnCanceled == nil {
		hooks.OnCanceled = func() {}
	}
	if hooks.OnConflict == nil {
		hooks.OnConflict = func() {}
	}
	return &Service{
		appts: appts, schedule: schedule, clk: clk, slot: slotDuration,
		logger:    logger,
		onCreated: hooks.OnCreated, onCanceled: hooks.OnCanceled, onConflict: hooks.OnConflict,
	}
}

// Create books the slot for userID. The appointment row and its
// APPT_CREATED outbox event commit in one transaction; a losing racer is
// rejected by the partial unique index and surfaces as ErrSlotTaken.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req domain.CreateAppointmentRequest) (*domain.Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	instant, err := clock.ParseInstant(req.StartsAtISO)
	if err != nil {
		return nil, err
	}
	loc, err := clock.LoadZone(req.TZ)
	if err != nil {
		return nil, err
	}

	startsLocal := instant.In(loc)
	if !startsLocal.After(s.clk.Now().In(loc)) {
		return nil, domain.ErrPastStartTime
	}

	blocks, err := s.schedule.BlocksFor(ctx, req.ProviderID, clock.DBWeekday(startsLocal))
	if err != nil {
		return nil, err
	}
	if !s.insideWorkHours(startsLocal, blocks) {
		return nil, domain.ErrOutsideWorkHours
	}

	now := s.clk.Now().UTC()
	appt := &domain.Appointment{
		ID:         uuid.New(),
		UserID:     userID,
		ProviderID: req.ProviderID,
		StartsAt:   startsLocal.UTC(),
		EndsAt:     startsLocal.Add(s.slot).UTC(),
		Status:     domain.AppointmentPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	evt := domain.NewAppointmentEvent(appt.ID, domain.EventAppointmentCreated, map[string]any{
		"provider_id": appt.ProviderID.String(),
		"starts_at":   appt.StartsAt.Format(time.RFC3339),
	})
	evt.CreatedAt = now

	if err := s.appts.CreatePendingWithEvent(ctx, appt, evt); err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			s.onConflict()
			return nil, err
		}
		return nil, fmt.Errorf("persist appointment: %w", err)
	}

	s.onCreated()
	s.logger.Info("appointment created",
		zap.String("id", appt.ID.String()),
		zap.String("provider_id", appt.ProviderID.String()),
		zap.Time("starts_at", appt.StartsAt),
	)
	return appt, nil
}

// Cancel flips the appointment to CANCELED together with its APPT_CANCELED
// event. Only the booking owner may cancel; a repeated cancel succeeds
// without appending a second event.
func (s *Service) Cancel(ctx context.Context, apptID, userID uuid.UUID) (*domain.Appointment, error) {
	appt, err := s.appts.Get(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if appt.Status == domain.AppointmentCanceled {
		return appt, nil
	}

	evt := domain.NewAppointmentEvent(appt.ID, domain.EventAppointmentCanceled, map[string]any{
		"starts_at": appt.StartsAt.Format(time.RFC3339),
	})
	evt.CreatedAt = s.clk.Now().UTC()

	canceled, err := s.appts.CancelWithEvent(ctx, apptID, evt)
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	appt.Status = domain.AppointmentCanceled
	if canceled {
		s.onCanceled()
		s.logger.Info("appointment canceled", zap.String("id", appt.ID.String()))
	}
	return appt, nil
}

// ListMine returns the user's appointments, newest start first.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Appointment, error) {
	return s.appts.ListByUser(ctx, userID)
}

// insideWorkHours reports whether the whole slot [start, start+slot) fits
// in one of the provider's blocks on that day. The slot does not have to
// align with the block start.
func (s *Service) insideWorkHours(startsLocal time.Time, blocks []domain.WorkHourBlock) bool {
	endsLocal := startsLocal.Add(s.slot)
	for _, b := range blocks {
		blockStart := b.Start.At(startsLocal)
		blockEnd := b.End.At(startsLocal)
		if !startsLocal.Before(blockStart) && startsLocal.Before(blockEnd) && !endsLocal.After(blockEnd) {
			return true
		}
	}
	return false
}
