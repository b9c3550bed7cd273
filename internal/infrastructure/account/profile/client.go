package profile

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/skill-league/internal/domain/user"
	basecache "github.com/riskibarqy/skill-league/internal/platform/cache"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
	"github.com/riskibarqy/skill-league/internal/platform/resilience"
	"github.com/riskibarqy/skill-league/internal/usecase"
)

const (
	batchPath        = "/v1/profiles/batch"
	maxBatchSize     = 100
	maxParallelCalls = 4
	cachePrefix      = "profile:"
)

var errProfileTransient = crerr.New("profile service transient failure")

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client resolves display profiles from the account service. Profiles are
// cached individually; only the missing IDs go over the wire.
type Client struct {
	http     *fasthttp.Client
	batchURL string
	timeout  time.Duration
	breaker  *resilience.CircuitBreaker
	cache    basecache.Cache
	logger   *logging.Logger
}

func NewClient(cfg Config, cache basecache.Cache, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Default()
	}
	batchURL, err := buildURL(cfg.BaseURL, batchPath)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid PROFILE_BASE_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "skill-league",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		batchURL: batchURL,
		timeout:  timeout,
		breaker:  resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		cache:    cache,
		logger:   logger.Named("profile"),
	}, nil
}

func (c *Client) GetProfiles(ctx context.Context, userIDs []string) (map[string]user.Profile, error) {
	out := make(map[string]user.Profile, len(userIDs))
	missing := c.fromCache(ctx, dedupe(userIDs), out)
	if len(missing) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	p := pool.New().WithContext(ctx).WithMaxGoroutines(maxParallelCalls)
	for batch := range slices.Chunk(missing, maxBatchSize) {
		p.Go(func(ctx context.Context) error {
			profiles, err := c.fetchBatch(ctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, item := range profiles {
				out[item.UserID] = item
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return out, err
	}

	for _, id := range missing {
		if item, ok := out[id]; ok {
			c.toCache(ctx, item)
		}
	}
	return out, nil
}

func (c *Client) fetchBatch(ctx context.Context, userIDs []string) ([]user.Profile, error) {
	var profiles []user.Profile
	err := c.breaker.Execute(func() error {
		var callErr error
		profiles, callErr = c.doBatch(ctx, userIDs)
		return callErr
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "profile circuit breaker rejected request", "state", string(c.breaker.State()))
		}
		return nil, fmt.Errorf("%w: fetch profiles: %w", usecase.ErrDependencyUnavailable, err)
	}
	return profiles, nil
}

func (c *Client) doBatch(ctx context.Context, userIDs []string) ([]user.Profile, error) {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	if err := sonic.ConfigDefault.NewEncoder(body).Encode(batchRequest{UserIDs: userIDs}); err != nil {
		return nil, crerr.Wrap(err, "encode profile batch request")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.batchURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	// body goes back to the pool only after the request is released.
	req.SetBodyRaw(body.B)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("%w: %v", errProfileTransient, err)
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusOK {
		raw := resp.Body()
		if len(raw) > 512 {
			raw = raw[:512]
		}
		if isRetryableStatus(status) {
			return nil, fmt.Errorf("%w: status=%d body=%s", errProfileTransient, status, strings.TrimSpace(string(raw)))
		}
		return nil, fmt.Errorf("profile batch status=%d body=%s", status, strings.TrimSpace(string(raw)))
	}

	var decoded batchResponse
	if err := sonic.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, crerr.Wrap(err, "unmarshal profile batch response")
	}

	out := make([]user.Profile, 0, len(decoded.Profiles))
	for _, item := range decoded.Profiles {
		if strings.TrimSpace(item.UserID) == "" {
			continue
		}
		out = append(out, user.Profile{
			UserID:      item.UserID,
			DisplayName: item.DisplayName,
			Email:       item.Email,
		})
	}
	return out, nil
}

func (c *Client) fromCache(ctx context.Context, userIDs []string, out map[string]user.Profile) []string {
	if c.cache == nil {
		return userIDs
	}
	missing := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		raw, ok := c.cache.Get(ctx, cachePrefix+id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		var item user.Profile
		if err := sonic.Unmarshal(raw, &item); err != nil {
			c.cache.Delete(ctx, cachePrefix+id)
			missing = append(missing, id)
			continue
		}
		out[id] = item
	}
	return missing
}

func (c *Client) toCache(ctx context.Context, item user.Profile) {
	if c.cache == nil {
		return
	}
	encoded, err := sonic.Marshal(item)
	if err != nil {
		return
	}
	c.cache.Set(ctx, cachePrefix+item.UserID, encoded)
}

type batchRequest struct {
	UserIDs []string `json:"user_ids"`
}

type batchResponse struct {
	Profiles []profilePayload `json:"profiles"`
}

type profilePayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errProfileTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= 500
}

func dedupe(userIDs []string) []string {
	seen := make(map[string]struct{}, len(userIDs))
	out := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func buildURL(baseURL, path string) (string, error) {
	candidate := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate + path, nil
}

// NopDirectory is used when the profile service is disabled; snapshots keep
// user IDs only.
type NopDirectory struct{}

func (NopDirectory) GetProfiles(context.Context, []string) (map[string]user.Profile, error) {
	return map[string]user.Profile{}, nil
}
