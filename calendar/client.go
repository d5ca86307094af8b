// Package calendar books meetings through a scheduling bridge service.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"leadflow/campaign"
)

// Client implements campaign.Scheduler against an HTTP bridge that
// fronts the calendar provider. The bridge creates the event with a
// video conference attached and returns the join link.
type Client struct {
	http     *http.Client
	baseURL  string
	token    string
	timezone string
	idGen    func() string
}

func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("calendar: base url required")
	}
	return &Client{
		http:     &http.Client{Timeout: 15 * time.Second},
		baseURL:  baseURL,
		token:    token,
		timezone: "Asia/Kolkata",
		idGen:    func() string { return uuid.NewString() },
	}, nil
}

// WithTimezone overrides the event timezone sent to the bridge.
func (c *Client) WithTimezone(tz string) *Client {
	c.timezone = tz
	return c
}

type createEventRequest struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Timezone    string   `json:"timezone"`
	Attendees   []string `json:"attendees"`
	RequestID   string   `json:"conference_request_id"`
}

type createEventResponse struct {
	EventID string `json:"event_id"`
	Link    string `json:"meet_link"`
}

func (c *Client) CreateMeeting(ctx context.Context, attendeeEmail string, start time.Time, duration time.Duration) (campaign.Meeting, error) {
	payload := createEventRequest{
		Summary:     "Intro Call",
		Description: "Scheduled via outreach campaign",
		Start:       start.Format(time.RFC3339),
		End:         start.Add(duration).Format(time.RFC3339),
		Timezone:    c.timezone,
		Attendees:   []string{attendeeEmail},
		RequestID:   c.idGen(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return campaign.Meeting{}, fmt.Errorf("calendar: encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return campaign.Meeting{}, fmt.Errorf("calendar: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return campaign.Meeting{}, fmt.Errorf("calendar: create event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return campaign.Meeting{}, fmt.Errorf("calendar: create event: status %d", resp.StatusCode)
	}

	var out createEventResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return campaign.Meeting{}, fmt.Errorf("calendar: decode event response: %w", err)
	}
	if out.EventID == "" {
		return campaign.Meeting{}, fmt.Errorf("calendar: bridge returned no event id")
	}
	return campaign.Meeting{Link: out.Link, EventID: out.EventID}, nil
}
