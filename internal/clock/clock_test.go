package clock_test

import (
	"errors"
	"testing"
	"time"

	"github.com/agendahub/booking-backend/internal/clock"
	"github.com/agendahub/booking-backend/internal/domain"
)

func TestDBWeekday(t *testing.T) {
	// 2025-11-02 is a Sunday.
	sunday := time.Date(2025, time.November, 2, 12, 0, 0, 0, time.UTC)

	for offset, want := range []int{0, 1, 2, 3, 4, 5, 6} {
		day := sunday.AddDate(0, 0, offset)
		if got := clock.DBWeekday(day); got != want {
			t.Fatalf("%s: expected weekday %d, got %d", day.Weekday(), want, got)
		}
	}
}

func TestLoadZone(t *testing.T) {
	t.Run("valid zone", func(t *testing.T) {
		loc, err := clock.LoadZone("America/Sao_Paulo")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if loc.String() != "America/Sao_Paulo" {
			t.Fatalf("unexpected location %v", loc)
		}
	})

	t.Run("unknown zone", func(t *testing.T) {
		if _, err := clock.LoadZone("Mars/Olympus_Mons"); !errors.Is(err, domain.ErrUnknownTimezone) {
			t.Fatalf("expected ErrUnknownTimezone, got %v", err)
		}
	})

	t.Run("empty zone", func(t *testing.T) {
		if _, err := clock.LoadZone(""); !errors.Is(err, domain.ErrMissingTimezone) {
			t.Fatalf("expected ErrMissingTimezone, got %v", err)
		}
	})
}

func TestParseDate(t *testing.T) {
	loc, _ := time.LoadLocation("America/Sao_Paulo")

	t.Run("valid date anchors at local midnight", func(t *testing.T) {
		day, err := clock.ParseDate("2025-11-03", loc)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := time.Date(2025, time.November, 3, 0, 0, 0, 0, loc)
		if !day.Equal(want) {
			t.Fatalf("expected %v, got %v", want, day)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := clock.ParseDate("03/11/2025", loc); !errors.Is(err, domain.ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate, got %v", err)
		}
	})
}

func TestParseInstant(t *testing.T) {
	t.Run("offset-bearing timestamp", func(t *testing.T) {
		got, err := clock.ParseInstant("2025-11-03T09:00:00-03:00")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := time.Date(2025, time.November, 3, 12, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("zulu timestamp", func(t *testing.T) {
		if _, err := clock.ParseInstant("2025-11-03T12:00:00Z"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("naive timestamp rejected explicitly", func(t *testing.T) {
		if _, err := clock.ParseInstant("2025-11-03T09:00:00"); !errors.Is(err, domain.ErrNaiveStartTime) {
			t.Fatalf("expected ErrNaiveStartTime, got %v", err)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := clock.ParseInstant("next tuesday"); !errors.Is(err, domain.ErrInvalidStartTime) {
			t.Fatalf("expected ErrInvalidStartTime, got %v", err)
		}
	})
}

func TestFixed(t *testing.T) {
	at := time.Date(2025, time.November, 3, 8, 59, 59, 0, time.UTC)
	c := clock.Fixed(at)
	if !c.Now().Equal(at) {
		t.Fatalf("expected %v, got %v", at, c.Now())
	}
}
