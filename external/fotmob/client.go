package fotmob

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/smuti/greydb-api/internal/platform/resilience"
	"github.com/smuti/greydb-api/internal/usecase"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL   = "https://www.fotmob.com/api"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxPayloadBytes  = 8 << 20
)

var errFotmobTransient = crerr.New("fotmob transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// Cache keeps finished documents for CacheTTL. Unfinished documents are
	// never cached so the reconciliation scanner sees live status changes.
	Cache    PayloadCache
	CacheTTL time.Duration
}

type PayloadCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, raw []byte, ttl time.Duration) error
}

// Client reads match documents from the FotMob web API. It never retries:
// every failure is returned to the caller, which owns pacing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
	cache      PayloadCache
	cacheTTL   time.Duration
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     logger,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
	}
}

// BreakerSnapshot reports the provider circuit breaker state for health checks.
func (c *Client) BreakerSnapshot() resilience.Snapshot {
	return c.breaker.Snapshot()
}

// FetchMatchDetails returns the raw matchDetails document for providerMatchID.
func (c *Client) FetchMatchDetails(ctx context.Context, providerMatchID int64) ([]byte, error) {
	if providerMatchID <= 0 {
		return nil, fmt.Errorf("%w: provider match id must be > 0", usecase.ErrInvalidInput)
	}

	key := "matchDetails:" + strconv.FormatInt(providerMatchID, 10)
	if raw, ok := c.cachedPayload(ctx, key); ok {
		return raw, nil
	}

	raw, err := c.doJSON(ctx, "/matchDetails", url.Values{
		"matchId": []string{strconv.FormatInt(providerMatchID, 10)},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch match details match_id=%d: %w", providerMatchID, err)
	}
	if documentFinished(raw) {
		c.storePayload(ctx, key, raw)
	}
	return raw, nil
}

func (c *Client) cachedPayload(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "fotmob payload cache read failed", "key", key, "error", err)
		return nil, false
	}
	return raw, ok && len(raw) > 0
}

func (c *Client) storePayload(ctx context.Context, key string, raw []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
		c.logger.WarnContext(ctx, "fotmob payload cache write failed", "key", key, "error", err)
	}
}

// documentFinished peeks at the status flags without a full parse.
func documentFinished(raw []byte) bool {
	for _, path := range [][]any{{"header", "status", "finished"}, {"general", "finished"}} {
		node, err := sonic.Get(raw, path...)
		if err != nil {
			continue
		}
		if finished, err := node.Bool(); err == nil && finished {
			return true
		}
	}
	return false
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	shared, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var body []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isFotmobCircuitFailure)
		if stderrors.Is(execErr, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "fotmob circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: circuit open", usecase.ErrProviderUnavailable)
		}
		return body, execErr
	})
	if err != nil {
		return nil, err
	}
	raw, _ := shared.([]byte)

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !sonic.Valid(trimmed) {
		return nil, fmt.Errorf("%w: response is not a JSON object body=%s", usecase.ErrProviderUnavailable, abbreviateBody(raw))
	}
	return trimmed, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		reqErr := crerr.Mark(fmt.Errorf("%w: send request: %s", usecase.ErrProviderUnavailable, redactRequestError(err)), errFotmobTransient)
		c.logger.WarnContext(ctx, "fotmob request failed", "url", redactURL(fullURL), "error", reqErr)
		return nil, reqErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("%w: read response body: %v", usecase.ErrProviderUnavailable, err), errFotmobTransient)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		reqErr := crerr.Mark(fmt.Errorf("%w: provider status=%d retry_after=%q", usecase.ErrProviderRateLimited, resp.StatusCode, resp.Header.Get("Retry-After")), errFotmobTransient)
		c.logger.WarnContext(ctx, "fotmob rate limited request", "url", redactURL(fullURL))
		return nil, reqErr
	default:
		reqErr := fmt.Errorf("%w: provider status=%d body=%s", usecase.ErrProviderUnavailable, resp.StatusCode, abbreviateBody(raw))
		if resp.StatusCode >= http.StatusInternalServerError {
			reqErr = crerr.Mark(reqErr, errFotmobTransient)
		}
		c.logger.WarnContext(ctx, "fotmob request failed", "url", redactURL(fullURL), "status", resp.StatusCode)
		return nil, reqErr
	}
}

func isFotmobCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return crerr.Is(err, errFotmobTransient)
}

// redactURL drops credentials, query and fragment from rawURL.
func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	parsed.User = nil
	parsed.RawQuery = ""
	parsed.ForceQuery = false
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}

// redactRequestError renders a transport error with the request URL redacted.
func redactRequestError(err error) string {
	var urlErr *url.Error
	if !stderrors.As(err, &urlErr) {
		return err.Error()
	}
	redacted := *urlErr
	redacted.URL = redactURL(urlErr.URL)
	return redacted.Error()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
