package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/morgabi/homehunt/internal/models"
)

// NotifyAction tells the recipient what happened to the apartment.
type NotifyAction string

const (
	ActionAdded   NotifyAction = "added"
	ActionUpdated NotifyAction = "updated"
)

// Mailer sends apartment change notifications. Callers fire and forget:
// a mailer failure must never roll back or block the operation that
// triggered it.
type Mailer interface {
	Notify(ctx context.Context, apt *models.Apartment, action NotifyAction) error
}

// httpMailer posts notification payloads to the email endpoint.
type httpMailer struct {
	endpoint string
	apiKey   string
	to       string
	client   *http.Client
}

// NewMailer creates a Mailer for the given endpoint. An empty endpoint
// produces a mailer whose Notify reports a configuration error; the
// caller's fire-and-forget handling absorbs it like any other failure.
func NewMailer(endpoint, apiKey, to string) Mailer {
	return &httpMailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		to:       to,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// notifyPayload is the wire shape of a notification.
type notifyPayload struct {
	Action   NotifyAction   `json:"action"`
	To       string         `json:"to,omitempty"`
	Title    string         `json:"title"`
	Location *string        `json:"location,omitempty"`
	Price    *float64       `json:"price,omitempty"`
	Status   models.Status  `json:"status"`
	Link     *string        `json:"link,omitempty"`
	ImageURL string         `json:"imageUrl"`
	Ratings  map[string]int `json:"ratings"`
}

func (m *httpMailer) Notify(ctx context.Context, apt *models.Apartment, action NotifyAction) error {
	if m.endpoint == "" {
		return fmt.Errorf("mailer endpoint not configured")
	}

	payload := notifyPayload{
		Action:   action,
		To:       m.to,
		Title:    apt.Title,
		Location: apt.Location,
		Price:    apt.Price,
		Status:   apt.Status,
		Link:     apt.ApartmentLink,
		ImageURL: apt.ImageURL,
		Ratings: map[string]int{
			"mor":  apt.MorRating,
			"gabi": apt.GabiRating,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
