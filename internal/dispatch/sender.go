package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/agendahub/booking-backend/internal/domain"
)

// Sender abstracts the downstream notification provider. Mocking this
// interface in tests gives full control over delivery behaviour without
// real HTTP calls.
type Sender interface {
	Send(ctx context.Context, msg *domain.NotificationMessage) error
}

// sendRequest is the JSON body posted to the external provider.
type sendRequest struct {
	To        string         `json:"to"`
	Template  string         `json:"template"`
	Variables map[string]any `json:"variables"`
}

// HTTPSender delivers WhatsApp messages by POSTing to the external
// provider's /whatsapp/send endpoint. Errors are classified into the
// domain sentinels the retry logic keys on: ErrTransport for network
// failures, ErrUpstreamRetryable for 429 and 5xx, ErrUpstreamRejected
// for every other 4xx.
type HTTPSender struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPSender(baseURL, apiKey string) *HTTPSender {
	return &HTTPSender{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 2 * time.Second,
				}).DialContext,
				ResponseHeaderTimeout: 5 * time.Second,
			},
			Timeout: 15 * time.Second,
		},
	}
}

func (s *HTTPSender) Send(ctx context.Context, msg *domain.NotificationMessage) error {
	body, err := json.Marshal(sendRequest{
		To:        msg.Recipient,
		Template:  msg.Template,
		Variables: msg.Variables,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	url := s.baseURL + "/" + msg.Channel + "/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamRetryable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrUpstreamRejected, resp.StatusCode)
	}
}

var _ Sender = (*HTTPSender)(nil)
