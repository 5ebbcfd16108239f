package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a zone-agnostic wall-clock time within a single day.
// Work-hour blocks are stored as TimeOfDay pairs and only become instants
// when anchored on a calendar date in a provider's timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts HH:MM, with an optional :SS suffix that is ignored.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return TimeOfDay{}, ErrInvalidTimeFormat
		}
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) Before(other TimeOfDay) bool { return t.Minutes() < other.Minutes() }

// At anchors the time of day on day's calendar date in day's location.
func (t TimeOfDay) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return ErrInvalidTimeFormat
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// WorkHourBlock is one bookable interval on a provider's weekly schedule.
// Weekday follows the storage convention 0=Sunday .. 6=Saturday, which is
// also what Go's time.Weekday yields.
type WorkHourBlock struct {
	ID         int64     `json:"id"`
	ProviderID uuid.UUID `json:"-"`
	Weekday    int       `json:"weekday"`
	Start      TimeOfDay `json:"start_time"`
	End        TimeOfDay `json:"end_time"`
}

// CreateWorkHourRequest is the inbound payload for adding a schedule block.
type CreateWorkHourRequest struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r *CreateWorkHourRequest) Validate() error {
	if r.Weekday < 0 || r.Weekday > 6 {
		return ErrInvalidWeekday
	}
	start, err := ParseTimeOfDay(r.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseTimeOfDay(r.EndTime)
	if err != nil {
		return err
	}
	if !start.Before(end) {
		return ErrInvalidBlockSpan
	}
	return nil
}

// Block converts the validated request into a WorkHourBlock for providerID.
func (r *CreateWorkHourRequest) Block(providerID uuid.UUID) WorkHourBlock {
	start, _ := ParseTimeOfDay(r.StartTime)
	end, _ := ParseTimeOfDay(r.EndTime)
	return WorkHourBlock{ProviderID: providerID, Weekday: r.Weekday, Start: start, End: end}
}
