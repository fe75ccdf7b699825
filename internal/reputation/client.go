package reputation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/cyberwise/cyberwise-core/internal/logging"
)

// ErrProviderRejected means the provider answered but declined the lookup
// (bad key, quota, malformed target).
var ErrProviderRejected = errors.New("reputation provider rejected the request")

// Client talks to the reputation-scoring API. Outbound lookups are
// rate-limited client-side so a history screen repainting quickly cannot
// burn through the provider quota.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logging.Logger
}

// NewClient builds a Client. rps caps requests per second; timeout bounds
// each HTTP round trip.
func NewClient(baseURL, apiKey string, timeout time.Duration, rps float64, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		log:        log,
	}
}

// Check queries the endpoint for kind and returns the normalized report.
func (c *Client) Check(ctx context.Context, kind Kind, value string) (*RiskReport, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, kind, url.PathEscape(c.apiKey), url.PathEscape(value))
	if kind == KindURL {
		endpoint += "?strictness=0"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build reputation request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reputation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reputation request: unexpected status %d", resp.StatusCode)
	}

	report, err := decode(kind, value, json.NewDecoder(resp.Body))
	if err != nil {
		return nil, err
	}

	c.log.Debug(ctx, "reputation check complete", "kind", kind, "risk_score", report.RiskScore)
	return report, nil
}

func decode(kind Kind, target string, dec *json.Decoder) (*RiskReport, error) {
	switch kind {
	case KindURL:
		var r urlResponse
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("decode url response: %w", err)
		}
		if !r.Success {
			return nil, fmt.Errorf("%w: %s", ErrProviderRejected, r.Message)
		}
		return r.report(target), nil
	case KindEmail:
		var r emailResponse
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("decode email response: %w", err)
		}
		if !r.Success {
			return nil, fmt.Errorf("%w: %s", ErrProviderRejected, r.Message)
		}
		return r.report(target), nil
	case KindPhone:
		var r phoneResponse
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("decode phone response: %w", err)
		}
		if !r.Success {
			return nil, fmt.Errorf("%w: %s", ErrProviderRejected, r.Message)
		}
		return r.report(target), nil
	default:
		return nil, fmt.Errorf("unknown reputation kind %q", kind)
	}
}
