package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	sErrors "github.com/johnstarich/tally/errors"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 500 * time.Millisecond
)

// HTTPConfig configures an HTTP source
type HTTPConfig struct {
	// BaseURL is the address of the API, pages are fetched from BaseURL/transactions/{page}.json
	BaseURL string
	// Client defaults to an http.Client with Timeout
	Client  *http.Client
	Timeout time.Duration
	// RequestsPerSecond limits outgoing requests. Zero is unlimited.
	RequestsPerSecond float64
	// Retries is the number of additional attempts after a transport error or 5xx response
	Retries int
	// RetryDelay is the delay before the first retry, doubled for each retry after
	RetryDelay time.Duration
	// CacheTTL is how long fetched pages are reused. Zero disables the cache.
	CacheTTL time.Duration
}

// HTTP fetches pages of records from a JSON API
type HTTP struct {
	baseURL    string
	client     *http.Client
	limiter    *rate.Limiter
	retries    int
	retryDelay time.Duration
	pages      *cache.Cache
	logger     *zap.Logger
}

// NewHTTP creates an HTTP source from config
func NewHTTP(config HTTPConfig, logger *zap.Logger) (*HTTP, error) {
	var errs sErrors.Errors
	errs.ErrIf(config.BaseURL == "", "Base URL is required")
	errs.ErrIf(config.Retries < 0, "Retries must not be negative: %d", config.Retries)
	errs.ErrIf(config.RequestsPerSecond < 0, "Requests per second must not be negative: %f", config.RequestsPerSecond)
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	client := config.Client
	if client == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	retryDelay := config.RetryDelay
	if retryDelay == 0 {
		retryDelay = defaultRetryDelay
	}
	var pages *cache.Cache
	if config.CacheTTL > 0 {
		pages = cache.New(config.CacheTTL, config.CacheTTL*2)
	}
	return &HTTP{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		client:     client,
		limiter:    limiter,
		retries:    config.Retries,
		retryDelay: retryDelay,
		pages:      pages,
		logger:     logger,
	}, nil
}

// Page implements Source
func (h *HTTP) Page(ctx context.Context, page int) (Page, error) {
	key := strconv.Itoa(page)
	if h.pages != nil {
		if cached, found := h.pages.Get(key); found {
			h.logger.Debug("Using cached page", zap.Int("page", page))
			return cached.(Page), nil
		}
	}

	var lastErr error
	for attempt := 0; attempt <= h.retries; attempt++ {
		if attempt > 0 {
			delay := h.retryDelay * time.Duration(1<<uint(attempt-1))
			h.logger.Info("Retrying page", zap.Int("page", page), zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return Page{}, NewUnavailableError(page, ctx.Err())
			case <-time.After(delay):
			}
		}

		result, retryable, err := h.fetch(ctx, page)
		if err == nil {
			if h.pages != nil {
				h.pages.SetDefault(key, result)
			}
			return result, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return Page{}, NewUnavailableError(page, lastErr)
}

func (h *HTTP) pageURL(page int) string {
	return fmt.Sprintf("%s/transactions/%d.json", h.baseURL, page)
}

func (h *HTTP) fetch(ctx context.Context, page int) (result Page, retryable bool, err error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return Page{}, false, errors.Wrap(err, "Rate limiter wait failed")
	}

	url := h.pageURL(page)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return Page{}, false, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	h.logger.Debug("Requesting page", zap.String("url", url))

	resp, err := h.client.Do(req)
	if err != nil {
		return Page{}, ctx.Err() == nil, errors.Wrap(err, "Error sending request")
	}
	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return Page{}, true, errors.Wrap(err, "Failed to read response body")
	}
	if ce := h.logger.Check(zap.DebugLevel, "Received response"); ce != nil {
		ce.Write(zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
	}

	if resp.StatusCode != http.StatusOK {
		return Page{}, resp.StatusCode >= 500, errors.Errorf("Unexpected response status: %s", resp.Status)
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&result); err != nil {
		return Page{}, false, errors.Wrap(err, "Error parsing response body")
	}
	return result, false, nil
}
