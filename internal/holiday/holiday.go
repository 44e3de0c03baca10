// Package holiday fetches public holidays from the nager.at feed and
// merges them into the reminder table once at startup.
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"planer/internal/logging"
	"planer/internal/storage"
)

const (
	// DefaultBaseURL is the nager.at v3 API root.
	DefaultBaseURL = "https://date.nager.at/api/v3"

	// FallbackType is used when a holiday record carries no category tags.
	FallbackType = "Holiday"
)

// Holiday is one record of the public-holiday feed. Only the fields the
// planner stores are decoded.
type Holiday struct {
	Date      string   `json:"date"`
	LocalName string   `json:"localName"`
	Name      string   `json:"name"`
	Types     []string `json:"types"`
}

// Client reads the public-holiday feed. The zero-value http.Client is
// used by default; there is no retry and no timeout override.
type Client struct {
	baseURL string
	httpc   *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at a different feed root, used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpc:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the public holidays for one year and country code.
func (c *Client) Fetch(ctx context.Context, year int, country string) ([]Holiday, error) {
	url := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.baseURL, year, country)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch holidays: unexpected status %s", resp.Status)
	}

	var holidays []Holiday
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	return holidays, nil
}

// Type returns the reminder category for a holiday: the first tag, or
// FallbackType when the feed provides none.
func (h Holiday) Type() string {
	if len(h.Types) > 0 {
		return h.Types[0]
	}
	return FallbackType
}

// Ingest fetches one year's holidays and inserts each as a reminder,
// skipping (name, date) pairs that already exist. Existing reminder
// rows are never touched, so a failed fetch leaves the table intact.
func Ingest(ctx context.Context, store *storage.Store, client *Client, year int, country string) error {
	holidays, err := client.Fetch(ctx, year, country)
	if err != nil {
		return err
	}

	log := logging.Logger()
	added := 0
	for _, h := range holidays {
		inserted, err := store.InsertReminderIfAbsent(h.LocalName, h.Date, h.Type())
		if err != nil {
			return fmt.Errorf("store reminder %q: %w", h.LocalName, err)
		}
		if inserted {
			added++
		}
	}
	log.Info("holiday ingestion finished",
		"year", year, "country", country, "fetched", len(holidays), "added", added)
	return nil
}
