package clock

import (
	"fmt"
	"time"

	"github.com/agendahub/booking-backend/internal/domain"
)

// Clock abstracts wall-clock time so booking and availability logic can
// be tested at a fixed instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the real wall clock.
func System() Clock { return systemClock{} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

// LoadZone resolves an IANA timezone name.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, domain.ErrMissingTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTimezone, name)
	}
	return loc, nil
}

// ParseDate parses a YYYY-MM-DD calendar date anchored at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return day, nil
}

// ParseInstant parses an RFC 3339 timestamp. Offset-naive timestamps are
// rejected explicitly so callers can report them apart from garbage.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	if _, naiveErr := time.Parse("2006-01-02T15:04:05", s); naiveErr == nil {
		return time.Time{}, domain.ErrNaiveStartTime
	}
	return time.Time{}, domain.ErrInvalidStartTime
}

// DBWeekday returns t's weekday under the storage convention
// 0=Sunday .. 6=Saturday. Go's time.Weekday counts the same way; the
// helper exists so the convention has exactly one home.
func DBWeekday(t time.Time) int { return int(t.Weekday()) }
