package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-tripform/pkg/contract"
	"github.com/goliatone/go-tripform/pkg/trip"
)

const maxErrorBody = 64 << 10

// Client is the HTTP collaborator for planning and airport search.
type Client struct {
	base            *url.URL
	http            *http.Client
	timeout         time.Duration
	contract        Contract
	doc             *contract.Document
	checkContract   bool
	limiter         *rate.Limiter
	search          SearchParams
	legacyDestTZ    string
	legacyTravelMin int
	logger          *slog.Logger
	requestID       func() string
}

// SearchParams refines an airport search. Limit is clamped to 1..50 and
// defaults to 10. Lat/Lon, when both set, make the service return distances.
type SearchParams struct {
	Limit int
	Lat   *float64
	Lon   *float64
}

// New builds a Client for baseURL, for example "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:            base,
		timeout:         defaultTimeout,
		contract:        ContractPlan,
		checkContract:   true,
		legacyDestTZ:    defaultDestTimezone,
		legacyTravelMin: defaultTravelMin,
		logger:          discardLogger(),
		requestID:       func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	} else if c.http.Timeout == 0 && c.timeout > 0 {
		clone := *c.http
		clone.Timeout = c.timeout
		c.http = &clone
	}
	if _, ok := ParseContract(string(c.contract)); !ok {
		return nil, fmt.Errorf("client: unknown contract %q", c.contract)
	}
	if c.checkContract && c.doc == nil {
		doc, err := contract.Default()
		if err != nil {
			return nil, fmt.Errorf("client: %w", err)
		}
		c.doc = doc
	}
	return c, nil
}

func parseBase(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Contract returns the configured planning contract.
func (c *Client) Contract() Contract {
	return c.contract
}

// Plan sends req to the planning operation and decodes the advice.
func (c *Client) Plan(ctx context.Context, req trip.TripRequest) (trip.PlanResult, error) {
	if c.contract == ContractLegacy {
		return c.planLegacy(ctx, req)
	}
	var result trip.PlanResult
	if err := c.do(ctx, "plan", http.MethodPost, contract.PathPlan, nil, req, &result); err != nil {
		return trip.PlanResult{}, err
	}
	return result, nil
}

// SearchAirports queries the airport index with the client's default
// parameters. A blank query returns an empty list without a request.
func (c *Client) SearchAirports(ctx context.Context, query string) ([]trip.AirportCandidate, error) {
	return c.Search(ctx, query, c.search)
}

// Search queries the airport index. Results keep the service's order.
func (c *Client) Search(ctx context.Context, query string, params SearchParams) ([]trip.AirportCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []trip.AirportCandidate{}, nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: "search airports", Err: err}
		}
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(clampLimit(params.Limit)))
	if params.Lat != nil && params.Lon != nil {
		values.Set("lat", strconv.FormatFloat(*params.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(*params.Lon, 'f', -1, 64))
	}

	var out []trip.AirportCandidate
	if err := c.do(ctx, "search airports", http.MethodGet, contract.PathSearch, values, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []trip.AirportCandidate{}
	}
	return out, nil
}

// AirportByIATA looks up one airport. The boolean is false when the service
// does not know the code.
func (c *Client) AirportByIATA(ctx context.Context, code string) (trip.AirportCandidate, bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return trip.AirportCandidate{}, false, nil
	}
	values := url.Values{}
	values.Set("code", code)

	var out trip.AirportCandidate
	if err := c.do(ctx, "airport by iata", http.MethodGet, contract.PathAirportByIATA, values, nil, &out); err != nil {
		return trip.AirportCandidate{}, false, err
	}
	if out.IATA == "" {
		return trip.AirportCandidate{}, false, nil
	}
	return out, true, nil
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "health", http.MethodGet, contract.PathHealth, nil, nil, &out); err != nil {
		return err
	}
	if !strings.EqualFold(out.Status, "ok") {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, out.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: %s: encode request: %w", op, err)
		}
		if c.checkContract {
			if err := c.doc.ValidateRequest(method, path, payload); err != nil {
				return fmt.Errorf("client: %s: %w", op, err)
			}
		}
		body = bytes.NewReader(payload)
	}

	target := *c.base
	target.Path = c.base.Path + path
	if query != nil {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("client: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := c.requestID()
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("planning service request failed",
			slog.String("op", op),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody(resp.StatusCode)))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	c.logger.Debug("planning service response",
		slog.String("op", op),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, raw)
	}
	if c.checkContract {
		if err := c.doc.ValidateResponse(method, path, resp.StatusCode, raw); err != nil {
			return &DecodeError{Op: op, Code: resp.StatusCode, Err: err}
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Op: op, Code: resp.StatusCode, Err: err}
	}
	return nil
}

func maxResponseBody(status int) int64 {
	if status < 200 || status > 299 {
		return maxErrorBody
	}
	return 8 << 20
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultSearchLimit
	case limit > maxSearchLimit:
		return maxSearchLimit
	default:
		return limit
	}
}

// IsRetryable reports whether err is a transport failure or a 5xx status.
func IsRetryable(err error) bool {
	var transport *TransportError
	if errors.As(err, &transport) {
		return !errors.Is(err, context.Canceled)
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.StatusCode() >= 500
	}
	return false
}
