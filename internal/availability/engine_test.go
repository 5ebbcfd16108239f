package availability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/availability"
	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/domain"
	"github.com/agendahub/booking-backend/internal/repository"
)

const slot = 30 * time.Minute

// 2025-11-03 is a Monday.
var (
	providerID = uuid.New()
	farBefore  = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
)

func newEngine(clk clock.Clock) (*availability.Engine, *repository.MockWorkScheduleRepository, *repository.MockAppointmentRepository) {
	schedule := repository.NewMockWorkScheduleRepository()
	appts := repository.NewMockAppointmentRepository()
	return availability.NewEngine(schedule, appts, clk, slot), schedule, appts
}

func book(t *testing.T, appts *repository.MockAppointmentRepository, startsAt time.Time) {
	t.Helper()
	appt := &domain.Appointment{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ProviderID: providerID,
		StartsAt:   startsAt.UTC(),
		EndsAt:     startsAt.Add(slot).UTC(),
		Status:     domain.AppointmentPending,
	}
	evt := domain.NewAppointmentEvent(appt.ID, domain.EventAppointmentCreated, nil)
	if err := appts.CreatePendingWithEvent(context.Background(), appt, evt); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
}

func TestFreeSlots_FullBlock(t *testing.T) {
	engine, schedule, _ := newEngine(clock.Fixed(farBefore))
	schedule.AddBlock(providerID, 1, "09:00", "12:00")

	slots, err := engine.FreeSlots(context.Background(), providerID, "2025-11-03", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"2025-11-03T09:00:00-03:00",
		"2025-11-03T09:30:00-03:00",
		"2025-11-03T10:00:00-03:00",
		"2025-11-03T10:30:00-03:00",
		"2025-11-03T11:00:00-03:00",
		"2025-11-03T11:30:00-03:00",
	}
	assertSlots(t, slots, want)
}

func TestFreeSlots_BookedSlotExcluded(t *testing.T) {
	engine, schedule, appts := newEngine(clock.Fixed(farBefore))
	schedule.AddBlock(providerID, 1, "09:00", "12:00")

	// 09:00 -03 is 12:00 UTC.
	book(t, appts, time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC))

	slots, err := engine.FreeSlots(context.Background(), providerID, "2025-11-03", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"2025-11-03T09:30:00-03:00",
		"2025-11-03T10:00:00-03:00",
		"2025-11-03T10:30:00-03:00",
		"2025-11-03T11:00:00-03:00",
		"2025-11-03T11:30:00-03:00",
	}
	assertSlots(t, slots, want)
}

func TestFreeSlots_CanceledBookingFreesSlot(t *testing.T) {
	engine, schedule, appts := newEngine(clock.Fixed(farBefore))
	schedule.AddBlock(providerID, 1, "09:00", "10:00")

	appt := &domain.Appointment{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ProviderID: providerID,
		StartsAt:   time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC),
		Status:     domain.AppointmentPending,
	}
	ctx := context.Background()
	evt := domain.NewAppointmentEvent(appt.ID, domain.EventAppointmentCreated, nil)
	if err := appts.CreatePendingWithEvent(ctx, appt, evt); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	cancelEvt := domain.NewAppointmentEvent(appt.ID, domain.EventAppointmentCanceled, nil)
	if _, err := appts.CancelWithEvent(ctx, appt.ID, cancelEvt); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}

	slots, err := engine.FreeSlots(ctx, providerID, "2025-11-03", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, []string{
		"2025-11-03T09:00:00-03:00",
		"2025-11-03T09:30:00-03:00",
	})
}

func TestFreeSlots_PastSlotsFiltered(t *testing.T) {
	// 13:00 UTC is 10:00 in São Paulo: 09:00, 09:30, and the in-progress
	// 10:00 slot are all gone.
	now := time.Date(2025, 11, 3, 13, 0, 0, 0, time.UTC)
	engine, schedule, _ := newEngine(clock.Fixed(now))
	schedule.AddBlock(providerID, 1, "09:00", "12:00")

	slots, err := engine.FreeSlots(context.Background(), providerID, "2025-11-03", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, []string{
		"2025-11-03T10:30:00-03:00",
		"2025-11-03T11:00:00-03:00",
		"2025-11-03T11:30:00-03:00",
	})
}

func TestFreeSlots_ClosedDay(t *testing.T) {
	engine, schedule, _ := newEngine(clock.Fixed(farBefore))
	schedule.AddBlock(providerID, 1, "09:00", "12:00")

	// Tuesday has no blocks: empty list, not an error.
	slots, err := engine.FreeSlots(context.Background(), providerID, "2025-11-04", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a closed day, got %v", slots)
	}
}

func TestFreeSlots_EveningBlockCrossesUTCDate(t *testing.T) {
	engine, schedule, appts := newEngine(clock.Fixed(farBefore))
	schedule.AddBlock(providerID, 1, "22:00", "23:30")

	// 22:30 -03 on Nov 3 is 01:30 UTC on Nov 4; the taken-window widening
	// must still find it.
	book(t, appts, time.Date(2025, 11, 4, 1, 30, 0, 0, time.UTC))

	slots, err := engine.FreeSlots(context.Background(), providerID, "2025-11-03", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, []string{
		"2025-11-03T22:00:00-03:00",
		"2025-11-03T23:00:00-03:00",
	})
}

func TestFreeSlots_SpringForwardSkipsMissingHour(t *testing.T) {
	// 2025-03-09 in New York jumps from 02:00 to 03:00. A 01:00-05:00
	// block therefore spans three absolute hours and no 02:xx wall time
	// can appear.
	engine, schedule, _ := newEngine(clock.Fixed(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	schedule.AddBlock(providerID, 0, "01:00", "05:00")

	slots, err := engine.FreeSlots(context.Background(), providerID, "2025-03-09", "America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, []string{
		"2025-03-09T01:00:00-05:00",
		"2025-03-09T01:30:00-05:00",
		"2025-03-09T03:00:00-04:00",
		"2025-03-09T03:30:00-04:00",
		"2025-03-09T04:00:00-04:00",
		"2025-03-09T04:30:00-04:00",
	})
}

func TestFreeSlots_FallBackRepeatsHour(t *testing.T) {
	// 2025-11-02 in New York repeats the 01:00 hour. A 00:30-02:00 block
	// spans 2.5 absolute hours; the repeated wall times differ by offset.
	engine, schedule, _ := newEngine(clock.Fixed(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)))
	schedule.AddBlock(providerID, 0, "00:30", "02:00")

	slots, err := engine.FreeSlots(context.Background(), providerID, "2025-11-02", "America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, []string{
		"2025-11-02T00:30:00-04:00",
		"2025-11-02T01:00:00-04:00",
		"2025-11-02T01:30:00-04:00",
		"2025-11-02T01:00:00-05:00",
		"2025-11-02T01:30:00-05:00",
	})
}

func TestFreeSlots_OverlappingBlocksDeduped(t *testing.T) {
	engine, schedule, _ := newEngine(clock.Fixed(farBefore))
	schedule.AddBlock(providerID, 1, "09:00", "11:00")
	schedule.AddBlock(providerID, 1, "10:00", "12:00")

	slots, err := engine.FreeSlots(context.Background(), providerID, "2025-11-03", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSlots(t, slots, []string{
		"2025-11-03T09:00:00-03:00",
		"2025-11-03T09:30:00-03:00",
		"2025-11-03T10:00:00-03:00",
		"2025-11-03T10:30:00-03:00",
		"2025-11-03T11:00:00-03:00",
		"2025-11-03T11:30:00-03:00",
	})
}

func TestFreeSlots_BadInput(t *testing.T) {
	engine, schedule, _ := newEngine(clock.Fixed(farBefore))
	schedule.AddBlock(providerID, 1, "09:00", "12:00")
	ctx := context.Background()

	if _, err := engine.FreeSlots(ctx, providerID, "2025-11-03", "Mars/Olympus"); !isWrapped(err, domain.ErrUnknownTimezone) {
		t.Fatalf("expected ErrUnknownTimezone, got %v", err)
	}
	if _, err := engine.FreeSlots(ctx, providerID, "03/11/2025", "America/Sao_Paulo"); !isWrapped(err, domain.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := engine.FreeSlots(ctx, providerID, "2025-11-03", ""); !isWrapped(err, domain.ErrMissingTimezone) {
		t.Fatalf("expected ErrMissingTimezone, got %v", err)
	}
}

func TestFreeSlots_UnknownProvider(t *testing.T) {
	engine, _, _ := newEngine(clock.Fixed(farBefore))

	_, err := engine.FreeSlots(context.Background(), uuid.New(), "2025-11-03", "America/Sao_Paulo")
	if !isWrapped(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func isWrapped(err, target error) bool { return errors.Is(err, target) }

func assertSlots(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
