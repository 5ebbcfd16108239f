package domain_test

import (
	"testing"
	"time"

	"github.com/agendahub/booking-backend/internal/domain"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Run("HH:MM", func(t *testing.T) {
		got, err := domain.ParseTimeOfDay("09:30")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Hour != 9 || got.Minute != 30 {
			t.Fatalf("expected 09:30, got %v", got)
		}
	})

	t.Run("HH:MM:SS seconds ignored", func(t *testing.T) {
		got, err := domain.ParseTimeOfDay("14:00:59")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Hour != 14 || got.Minute != 0 {
			t.Fatalf("expected 14:00, got %v", got)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := domain.ParseTimeOfDay("9h30"); err != domain.ErrInvalidTimeFormat {
			t.Fatalf("expected ErrInvalidTimeFormat, got %v", err)
		}
	})

	t.Run("out of range rejected", func(t *testing.T) {
		if _, err := domain.ParseTimeOfDay("25:00"); err != domain.ErrInvalidTimeFormat {
			t.Fatalf("expected ErrInvalidTimeFormat, got %v", err)
		}
	})
}

func TestTimeOfDay_At(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2025, time.November, 3, 0, 0, 0, 0, loc)

	got := domain.TimeOfDay{Hour: 9, Minute: 0}.At(day)
	want := time.Date(2025, time.November, 3, 9, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got.Location() != loc {
		t.Fatalf("expected location %v, got %v", loc, got.Location())
	}
}

func TestCreateWorkHourRequest_Validate(t *testing.T) {
	valid := domain.CreateWorkHourRequest{Weekday: 1, StartTime: "09:00", EndTime: "12:00"}

	t.Run("valid block passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("weekday below range", func(t *testing.T) {
		r := valid
		r.Weekday = -1
		if err := r.Validate(); err != domain.ErrInvalidWeekday {
			t.Fatalf("expected ErrInvalidWeekday, got %v", err)
		}
	})

	t.Run("weekday above range", func(t *testing.T) {
		r := valid
		r.Weekday = 7
		if err := r.Validate(); err != domain.ErrInvalidWeekday {
			t.Fatalf("expected ErrInvalidWeekday, got %v", err)
		}
	})

	t.Run("bad start time", func(t *testing.T) {
		r := valid
		r.StartTime = "nine"
		if err := r.Validate(); err != domain.ErrInvalidTimeFormat {
			t.Fatalf("expected ErrInvalidTimeFormat, got %v", err)
		}
	})

	t.Run("equal start and end", func(t *testing.T) {
		r := valid
		r.EndTime = r.StartTime
		if err := r.Validate(); err != domain.ErrInvalidBlockSpan {
			t.Fatalf("expected ErrInvalidBlockSpan, got %v", err)
		}
	})

	t.Run("inverted span", func(t *testing.T) {
		r := valid
		r.StartTime, r.EndTime = r.EndTime, r.StartTime
		if err := r.Validate(); err != domain.ErrInvalidBlockSpan {
			t.Fatalf("expected ErrInvalidBlockSpan, got %v", err)
		}
	})
}
