// Package target talks to the target cloud calendar. The synchronizer
// depends only on the Client interface; HTTPClient is the REST-backed
// implementation.
package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yymzk/calbridge/internal/domain/schedule"
	"github.com/yymzk/calbridge/pkg/logger"
)

// Client is the target calendar contract consumed by the synchronizer.
// The target API has no batch endpoint; callers issue one request per
// event.
type Client interface {
	InsertEvent(ctx context.Context, calendarID string, ev schedule.TargetEvent) error
	UpdateEvent(ctx context.Context, calendarID string, ev schedule.TargetEvent) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// HTTPClient implements Client against a REST endpoint.
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
		return nil, fmt.Errorf("target base url: %w", err)
	}
	h := &HTTPClient{
		base: u,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  logger.Get().Named("target"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// InsertEvent implements Client.
func (h *HTTPClient) InsertEvent(ctx context.Context, calendarID string, ev schedule.TargetEvent) error {
	path := fmt.Sprintf("calendars/%s/events", url.PathEscape(calendarID))
	return h.send(ctx, http.MethodPost, path, &ev)
}

// UpdateEvent implements Client.
func (h *HTTPClient) UpdateEvent(ctx context.Context, calendarID string, ev schedule.TargetEvent) error {
	path := fmt.Sprintf("calendars/%s/events/%s", url.PathEscape(calendarID), url.PathEscape(ev.ID))
	return h.send(ctx, http.MethodPut, path, &ev)
}

// DeleteEvent implements Client.
func (h *HTTPClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	path := fmt.Sprintf("calendars/%s/events/%s", url.PathEscape(calendarID), url.PathEscape(eventID))
	return h.send(ctx, http.MethodDelete, path, nil)
}

func (h *HTTPClient) send(ctx context.Context, method, path string, ev *schedule.TargetEvent) error {
	var body io.Reader
	if ev != nil {
		data, err := json.Marshal(ev)
		if err != nil {
			return &APIError{Reason: ReasonUnknown, Message: err.Error()}
		}
		body = bytes.NewReader(data)
	}

	u := h.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return &APIError{Reason: ReasonUnknown, Message: err.Error()}
	}
	if ev != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return &APIError{Reason: ReasonUnknown, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{
		Reason:     reasonFromStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    string(msg),
	}
	h.log.Debug(ctx, "target api call failed",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.String("reason", string(apiErr.Reason)))
	return apiErr
}

func reasonFromStatus(status int) Reason {
	switch status {
	case http.StatusNotFound, http.StatusGone:
		return ReasonNotFound
	case http.StatusConflict:
		return ReasonAlreadyExists
	default:
		return ReasonUnknown
	}
}
