package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/repository"
)

// Engine computes the free slot starts of a provider on a local calendar
// date. Candidates come from the weekly work-hour blocks anchored on the
// requested date; already-booked slots and slots in the past are removed.
type Engine struct {
	schedule repository.WorkScheduleRepository
	appts    repository.AppointmentRepository
	clk      clock.Clock
	slot     time.Duration
}

func NewEngine(
	schedule repository.WorkScheduleRepository,
	appts repository.AppointmentRepository,
	clk clock.Clock,
	slotDuration time.Duration,
) *Engine {
	return &Engine{schedule: schedule, appts: appts, clk: clk, slot: slotDuration}
}

// FreeSlots returns the open slot starts for providerID on date (YYYY-MM-DD)
// in the IANA zone tz, formatted RFC 3339 with the zone's offset, ascending.
// An empty result is a legitimate answer: the provider may simply be closed.
func (e *Engine) FreeSlots(ctx context.Context, providerID uuid.UUID, date, tz string) ([]string, error) {
	loc, err := clock.LoadZone(tz)
	if err != nil {
		return nil, err
	}
	day, err := clock.ParseDate(date, loc)
	if err != nil {
		return nil, err
	}

	blocks, err := e.schedule.BlocksFor(ctx, providerID, clock.DBWeekday(day))
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return []string{}, nil
	}

	// Overlapping blocks are legal; dedupe candidates on the exact instant.
	candidates := make(map[int64]time.Time)
	for _, b := range blocks {
		blockStart := b.Start.At(day)
		blockEnd := b.End.At(day)
		for cur := blockStart; !cur.Add(e.slot).After(blockEnd); cur = cur.Add(e.slot) {
			candidates[cur.Unix()] = cur
		}
	}

	taken, err := e.slotsTakenOn(ctx, providerID, day)
	if err != nil {
		return nil, err
	}

	now := e.clk.Now().In(loc)
	free := make([]time.Time, 0, len(candidates))
	for _, cand := range candidates {
		if _, booked := taken[cand.Unix()]; booked {
			continue
		}
		if !cand.After(now) {
			continue
		}
		free = append(free, cand)
	}
	sort.Slice(free, func(i, j int) bool { return free[i].Before(free[j]) })

	out := make([]string, len(free))
	for i, t := range free {
		out[i] = t.Format(time.RFC3339)
	}
	return out, nil
}

// slotsTakenOn returns the occupied starts_at instants of the provider's
// local day, keyed by Unix second. A local day is a 24h UTC interval only
// without a DST transition, so the lookup window is widened by two hours
// on each side and filtered back to the local calendar date.
func (e *Engine) slotsTakenOn(ctx context.Context, providerID uuid.UUID, day time.Time) (map[int64]struct{}, error) {
	dayEnd := day.AddDate(0, 0, 1)
	from := day.UTC().Add(-2 * time.Hour)
	to := dayEnd.UTC().Add(2 * time.Hour)

	instants, err := e.appts.SlotsTaken(ctx, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("slots taken lookup: %w", err)
	}

	taken := make(map[int64]struct{}, len(instants))
	for _, t := range instants {
		local := t.In(day.Location())
		if local.Year() == day.Year() && local.YearDay() == day.YearDay() {
			taken[t.Unix()] = struct{}{}
		}
	}
	return taken, nil
}
