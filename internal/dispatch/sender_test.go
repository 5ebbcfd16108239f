package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agendahub/booking-backend/internal/dispatch"
	"github.com/agendahub/booking-backend/internal/domain"
)

func testMessage() *domain.NotificationMessage {
	return &domain.NotificationMessage{
		ID:        1,
		Channel:   domain.ChannelWhatsApp,
		Recipient: "+5511999990000",
		Template:  "appt_created",
		Variables: map[string]any{"starts_at": "2025-11-03T12:00:00Z"},
		Status:    domain.NotificationQueued,
	}
}

func TestHTTPSender_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := dispatch.NewHTTPSender(srv.URL, "test-key")
	if err := sender.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/whatsapp/send" {
		t.Fatalf("expected /whatsapp/send, got %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody["to"] != "+5511999990000" || gotBody["template"] != "appt_created" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestHTTPSender_StatusClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"202 accepted", http.StatusAccepted, nil},
		{"429 throttled", http.StatusTooManyRequests, domain.ErrUpstreamRetryable},
		{"500 server error", http.StatusInternalServerError, domain.ErrUpstreamRetryable},
		{"503 unavailable", http.StatusServiceUnavailable, domain.ErrUpstreamRetryable},
		{"400 bad request", http.StatusBadRequest, domain.ErrUpstreamRejected},
		{"404 unknown endpoint", http.StatusNotFound, domain.ErrUpstreamRejected},
		{"422 invalid payload", http.StatusUnprocessableEntity, domain.ErrUpstreamRejected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			err := dispatch.NewHTTPSender(srv.URL, "").Send(context.Background(), testMessage())
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestHTTPSender_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listening anymore

	err := dispatch.NewHTTPSender(srv.URL, "").Send(context.Background(), testMessage())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestHTTPSender_NoAPIKeyOmitsHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := dispatch.NewHTTPSender(srv.URL, "").Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}
