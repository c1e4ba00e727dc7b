// Package source talks to the groupware calendar. The synchronizer
// depends only on the Client interface; HTTPClient is the JSON-backed
// implementation.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yymzk/calbridge/internal/domain/schedule"
	"github.com/yymzk/calbridge/pkg/logger"
)

// Client is the source calendar contract consumed by the synchronizer.
type Client interface {
	// GetEvents returns all raw events overlapping [start, end).
	GetEvents(ctx context.Context, start, end time.Time, includeAllDay bool) ([]schedule.SourceEvent, error)

	// GetEventByID returns one raw event, or nil when the source no
	// longer knows the id.
	GetEventByID(ctx context.Context, id string) (*schedule.SourceEvent, error)
}

// HTTPClient implements Client against a JSON endpoint.
type HTTPClient struct {
	base *url.URL
	http *http.Client
	log  logger.Logger
}

// HTTPOption applies a configuration option to the HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.http = c
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) HTTPOption {
	return func(h *HTTPClient) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHTTPClient builds a client for the given API base URL.
func NewHTTPClient(base string, opts ...HTTPOption) (*HTTPClient, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("source base url: %w", err)
	}
	h := &HTTPClient{
		base: u,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  logger.Get().Named("source"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// GetEvents implements Client.
func (h *HTTPClient) GetEvents(ctx context.Context, start, end time.Time, includeAllDay bool) ([]schedule.SourceEvent, error) {
	u := h.base.JoinPath("events")
	q := u.Query()
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	q.Set("all_day", strconv.FormatBool(includeAllDay))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	var envelope struct {
		Events []schedule.SourceEvent `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode events: %w", ErrFetch, err)
	}
	return envelope.Events, nil
}

// GetEventByID implements Client.
func (h *HTTPClient) GetEventByID(ctx context.Context, id string) (*schedule.SourceEvent, error) {
	u := h.base.JoinPath("events", url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	var ev schedule.SourceEvent
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		return nil, fmt.Errorf("%w: decode event %s: %w", ErrFetch, id, err)
	}
	return &ev, nil
}
