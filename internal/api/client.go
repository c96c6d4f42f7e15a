// Package api is a typed HTTP client for the ground station backend.
//
// It covers the one-shot endpoints (events, sessions, launch, event
// ingest) and derives the live stream URL. The stream itself is consumed
// by package stream.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/groundctl/groundctl/internal/errors"
	"github.com/groundctl/groundctl/internal/logger"
	"github.com/groundctl/groundctl/internal/telemetry"
)

// ClientIDHeader carries the per-process client id on every request.
const ClientIDHeader = "X-Client-Id"

// Endpoint paths, relative to the base URL.
const (
	PathEvents   = "/api/events/"
	PathSessions = "/api/events/sessions"
	PathLaunch   = "/api/commands/launch"
	PathStream   = "/api/ws/events"
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 512

// LaunchResponse is the wire format for GET /api/commands/launch.
type LaunchResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Options configures a Client.
type Options struct {
	// BaseURL is the backend HTTP root, e.g. http://localhost:8000.
	BaseURL string
	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
	// ClientID is sent as X-Client-Id. Generated when empty.
	ClientID string
	Logger   logger.Logger
}

// Client talks to the backend over HTTP.
type Client struct {
	httpClient *http.Client
	base       *url.URL
	clientID   string
	log        logger.Logger
}

// New creates a Client for the configured base URL.
func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	base, err := url.Parse(raw)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		if err == nil {
			err = fmt.Errorf("expected http(s)://host[:port], got %q", opts.BaseURL)
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid server URL: "+opts.BaseURL,
			"Set server.url or pass --server, e.g. http://localhost:8000")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	id := opts.ClientID
	if id == "" {
		id = uuid.NewString()
	}

	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	return &Client{
		httpClient: httpClient,
		base:       base,
		clientID:   id,
		log:        log,
	}, nil
}

// ClientID returns the id this client sends with every request.
func (c *Client) ClientID() string {
	return c.clientID
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// FetchEvents returns the most recent events, newest first. An empty
// identifier fetches across all sessions.
func (c *Client) FetchEvents(ctx context.Context, identifier string) ([]telemetry.Event, error) {
	query := url.Values{}
	if identifier != "" {
		query.Set("identifier", identifier)
	}

	var events []telemetry.Event
	if err := c.getJSON(ctx, PathEvents, query, &events); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Failed to fetch events",
			"Check the backend at "+c.base.String()+" is reachable")
	}
	if events == nil {
		events = []telemetry.Event{}
	}
	return events, nil
}

// FetchSessions returns the known session identifiers in the server's order.
func (c *Client) FetchSessions(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.getJSON(ctx, PathSessions, nil, &ids); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Failed to fetch sessions",
			"Check the backend at "+c.base.String()+" is reachable")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Launch sends the launch command. The backend relays the launch pad's
// answer as {status_code, message}, so a non-2xx HTTP status with a
// decodable body is still a result rather than an error.
func (c *Client) Launch(ctx context.Context) (LaunchResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, PathLaunch, nil, nil)
	if err != nil {
		return LaunchResponse{}, errors.WrapWithCode(err, errors.ErrCommand,
			"Launch request failed", "")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return LaunchResponse{}, errors.WrapWithCode(err, errors.ErrCommand,
			"Failed to read launch response", "")
	}

	var result LaunchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return LaunchResponse{}, errors.WrapWithCode(httpError(resp.StatusCode, body), errors.ErrCommand,
				"Launch request rejected", "")
		}
		return LaunchResponse{}, errors.WrapWithCode(err, errors.ErrCommand,
			"Launch response is not valid JSON", "")
	}
	return result, nil
}

// PostEvent ingests one event. The backend answers 204 No Content.
func (c *Client) PostEvent(ctx context.Context, event telemetry.EventCreate) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrFetch, "Failed to encode event", "")
	}

	resp, err := c.do(ctx, http.MethodPost, PathEvents, nil, bytes.NewReader(payload))
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrFetch, "Failed to post event", "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.WrapWithCode(httpError(resp.StatusCode, body), errors.ErrFetch,
			"Backend rejected event", "")
	}
	return nil
}

// StreamURL builds the live stream endpoint for identifier. The scheme is
// wss when the base URL is https and ws otherwise.
func (c *Client) StreamURL(identifier string) string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + PathStream
	u.RawQuery = url.Values{"identifier": []string{identifier}}.Encode()
	return u.String()
}

// Header returns the headers every request carries. The stream dialer
// sends them on the upgrade request.
func (c *Client) Header() http.Header {
	h := http.Header{}
	h.Set(ClientIDHeader, c.clientID)
	return h
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return httpError(resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(ClientIDHeader, c.clientID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("%s %s", method, u.String())
	return c.httpClient.Do(req)
}

func httpError(status int, body []byte) error {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Errorf("HTTP %d", status)
	}
	return fmt.Errorf("HTTP %d: %s", status, text)
}
