package sheetfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cricket-odds/internal/platform/logging"
	"github.com/riskibarqy/cricket-odds/internal/platform/resilience"
	"github.com/riskibarqy/cricket-odds/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultRetryBackoff = 2 * time.Second
	maxResponseSize     = 4 << 20
)

var errFeedTransient = crerr.New("odds feed transient failure")

type ClientConfig struct {
	HTTPClient *fasthttp.Client
	URL          string
	Timeout      time.Duration
	RetryBackoff time.Duration
	Location     *time.Location
	Logger     *logging.Logger
}

// Client reads the odds spreadsheet through the Sheets values endpoint.
type Client struct {
	httpClient *fasthttp.Client
	url          string
	timeout      time.Duration
	retryBackoff time.Duration
	location     *time.Location
	logger       *logging.Logger
	now          func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "cricket-odds-sheetfeed",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseSize,
			MaxIdleConnDuration: time.Minute,
		}
	}

	return &Client{
		httpClient:   httpClient,
		url:          strings.TrimSpace(cfg.URL),
		timeout:      timeout,
		retryBackoff: retryBackoff,
		location:     location,
		logger:       logger.Named("sheetfeed"),
		now:          time.Now,
	}
}

func (c *Client) FetchOddsRows(ctx context.Context) ([]usecase.ExternalOddsRow, error) {
	if c.url == "" {
		return nil, fmt.Errorf("%w: ODDS_FEED_URL is empty", usecase.ErrFeedConfiguration)
	}

	raw, err := c.fetchWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	var payload valuesEnvelope
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode odds feed: %v", usecase.ErrDependencyUnavailable, err)
	}

	table, err := newTable(payload.Values)
	if err != nil {
		return nil, err
	}

	rows, dropped := table.rows(c.location, c.now())
	for _, d := range dropped {
		c.logger.WarnContext(ctx, "odds feed row dropped", "row", d.rowNumber, "event_name", d.eventName, "reason", d.reason)
	}
	for _, row := range rows {
		if row.DateFallback {
			c.logger.WarnContext(ctx, "odds feed commence unparseable, using fetch time", "row", row.RowNumber, "event_name", row.EventName)
		}
	}
	return rows, nil
}

// fetchWithRetry makes at most two attempts. Only transport errors, 429 and
// 5xx are retried.
func (c *Client) fetchWithRetry(ctx context.Context) ([]byte, error) {
	raw, err := c.get(ctx)
	if err == nil || !stderrors.Is(err, errFeedTransient) {
		return raw, err
	}

	c.logger.DebugContext(ctx, "odds feed request retrying", "wait", c.retryBackoff.String(), "error", err)
	if err := resilience.Sleep(ctx, c.retryBackoff); err != nil {
		return nil, err
	}

	raw, err = c.get(ctx)
	if err == nil || !stderrors.Is(err, errFeedTransient) {
		return raw, err
	}
	c.logger.WarnContext(ctx, "odds feed request failed", "error", err)
	return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: fetch odds feed: %v", errFeedTransient, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return append([]byte(nil), resp.Body()...), nil
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		return nil, fmt.Errorf("%w: odds feed status=%d", errFeedTransient, status)
	default:
		// 401/403/404 mean a wrong sheet id, key or sharing setting.
		return nil, fmt.Errorf("%w: odds feed status=%d body=%s", usecase.ErrFeedConfiguration, status, abbreviateBody(resp.Body()))
	}
}

type valuesEnvelope struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension"`
	Values         [][]any `json:"values"`
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
