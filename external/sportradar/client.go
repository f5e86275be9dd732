package sportradar

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
	"github.com/riskibarqy/cricket-odds/internal/platform/resilience"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

const (
	defaultBaseURL          = "https://api.sportradar.com/cricket-t2/en"
	defaultTimeout          = 20 * time.Second
	defaultRequestDelay     = time.Second
	defaultRateLimitBackoff = 5 * time.Second
	defaultRetryBackoff     = 2 * time.Second
	maxBodySize             = 6 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)

var (
	errSportradarTransient = crerr.New("sportradar transient failure")
	errSportradarRateLimit = crerr.New("sportradar rate limited")
)

type ClientConfig struct {
	HTTPClient       *http.Client
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	RequestDelay     time.Duration
	RateLimitBackoff time.Duration
	RetryBackoff     time.Duration
	Logger           *logging.Logger
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// Client talks to the Sportradar cricket API. Requests run one at a time
// with a fixed gap between them.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	apiKey           string
	rateLimitBackoff time.Duration
	retryBackoff     time.Duration
	logger           *logging.Logger
	throttle         *resilience.Throttle
	breaker          *resilience.CircuitBreaker
	circuitEnabled   bool
	flight           resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	requestDelay := cfg.RequestDelay
	if requestDelay <= 0 {
		requestDelay = defaultRequestDelay
	}
	rateLimitBackoff := cfg.RateLimitBackoff
	if rateLimitBackoff <= 0 {
		rateLimitBackoff = defaultRateLimitBackoff
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:       httpClient,
		baseURL:          baseURL,
		apiKey:           strings.TrimSpace(cfg.APIKey),
		rateLimitBackoff: rateLimitBackoff,
		retryBackoff:     retryBackoff,
		logger:           logger.Named("sportradar"),
		throttle:         resilience.NewThrottle(requestDelay),
		breaker:          resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled:   breakerCfg.Enabled,
	}
}

func (c *Client) FetchLiveMatches(ctx context.Context) ([]usecase.ExternalMatch, error) {
	var payload summariesEnvelope
	if err := c.doJSON(ctx, "/schedules/live/summaries.json", &payload); err != nil {
		return nil, fmt.Errorf("fetch live summaries: %w", err)
	}
	return mapSummaries(payload.Summaries), nil
}

func (c *Client) FetchScheduleByDate(ctx context.Context, date time.Time) ([]usecase.ExternalMatch, error) {
	day := date.Format(time.DateOnly)
	var payload scheduleEnvelope
	if err := c.doJSON(ctx, "/schedules/"+day+"/schedule.json", &payload); err != nil {
		return nil, fmt.Errorf("fetch schedule date=%s: %w", day, err)
	}

	items := payload.Summaries
	for _, event := range payload.SportEvents {
		items = append(items, summary{SportEvent: event})
	}
	return mapSummaries(items), nil
}

func (c *Client) FetchMatchSummary(ctx context.Context, providerMatchID string) (usecase.ExternalMatch, error) {
	providerMatchID = strings.TrimSpace(providerMatchID)
	if providerMatchID == "" {
		return usecase.ExternalMatch{}, fmt.Errorf("%w: provider match id is required", usecase.ErrInvalidInput)
	}

	var payload summary
	path := "/sport_events/" + url.PathEscape(providerMatchID) + "/summary.json"
	if err := c.doJSON(ctx, path, &payload); err != nil {
		return usecase.ExternalMatch{}, fmt.Errorf("fetch match summary id=%s: %w", providerMatchID, err)
	}
	return mapSummary(payload), nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: sportradar api key is not configured", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path + "?" + url.Values{"api_key": []string{c.apiKey}}.Encode()

	out, err, _ := c.flight.Do(path, func() (any, error) {
		var raw []byte
		run := func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}
		if !c.circuitEnabled {
			return raw, run()
		}
		breakerErr := c.breaker.Execute(run, isCircuitFailure)
		if stderrors.Is(breakerErr, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "sportradar circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: sport data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return raw, breakerErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

// executeRequest makes at most two attempts. A 429 waits the rate-limit
// backoff before the retry; transport errors and 5xx wait the retry backoff.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		var raw []byte
		err := c.throttle.Do(ctx, func(ctx context.Context) error {
			var reqErr error
			raw, reqErr = c.send(ctx, fullURL)
			return reqErr
		})
		if err == nil {
			return raw, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		var wait time.Duration
		switch {
		case stderrors.Is(err, errSportradarRateLimit):
			wait = c.rateLimitBackoff
		case stderrors.Is(err, errSportradarTransient):
			wait = c.retryBackoff
		default:
			return nil, err
		}
		if attempt == 1 {
			break
		}
		c.logger.DebugContext(ctx, "sportradar request retrying", "url", redactAPIURL(fullURL), "wait", wait.String(), "error", err)
		if err := resilience.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	c.logger.WarnContext(ctx, "sportradar request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, lastErr)
}

func (c *Client) send(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %s", errSportradarTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errSportradarTransient, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: provider status=%d", errSportradarRateLimit, resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: provider status=%d body=%s", errSportradarTransient, resp.StatusCode, abbreviateBody(raw))
	default:
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, usecase.ErrDependencyUnavailable)
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "api_key=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("api_key") {
		query.Set("api_key", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
