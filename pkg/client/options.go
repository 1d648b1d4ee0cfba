package client

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/goliatone/go-tripform/pkg/contract"
)

// Contract selects the request/response shape of the planning operation.
type Contract string

const (
	// ContractPlan posts the flat request to /plan.
	ContractPlan Contract = "plan"
	// ContractLegacy posts the grouped request to /trip/plan.
	ContractLegacy Contract = "legacy"
)

// ParseContract maps a configuration value onto a Contract. Empty selects
// ContractPlan.
func ParseContract(raw string) (Contract, bool) {
	switch Contract(raw) {
	case "", ContractPlan:
		return ContractPlan, true
	case ContractLegacy:
		return ContractLegacy, true
	default:
		return "", false
	}
}

const (
	defaultTimeout      = 30 * time.Second
	defaultSearchLimit  = 10
	maxSearchLimit      = 50
	defaultTravelMin    = 60
	defaultDestTimezone = "America/Santiago"
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient supplies the http.Client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request when the http.Client has no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithContract selects the planning contract.
func WithContract(contract Contract) Option {
	return func(c *Client) {
		if contract != "" {
			c.contract = contract
		}
	}
}

// WithDocument replaces the embedded service description used to check
// payloads.
func WithDocument(doc *contract.Document) Option {
	return func(c *Client) {
		c.doc = doc
	}
}

// WithoutContractChecks disables request and response schema checks.
func WithoutContractChecks() Option {
	return func(c *Client) {
		c.checkContract = false
	}
}

// WithSearchRate throttles airport searches to rps requests per second with
// the given burst. A non-positive rps disables throttling.
func WithSearchRate(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSearchDefaults sets the limit and reference point SearchAirports uses.
func WithSearchDefaults(params SearchParams) Option {
	return func(c *Client) {
		c.search = params
	}
}

// WithLegacyTrip sets the values the legacy contract needs but the canonical
// request does not carry.
func WithLegacyTrip(destinationTimezone string, travelMinutes int) Option {
	return func(c *Client) {
		if destinationTimezone != "" {
			c.legacyDestTZ = destinationTimezone
		}
		if travelMinutes > 0 {
			c.legacyTravelMin = travelMinutes
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRequestIDs overrides the generator for X-Request-ID headers.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
