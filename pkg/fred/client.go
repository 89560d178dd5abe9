package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fredcat/pkg/config"
	"fredcat/pkg/dataset"
	fcerrors "fredcat/pkg/errors"
	"fredcat/pkg/logger"
	"fredcat/pkg/ratelimit"

	"resty.dev/v3"
)

// NotesColumn is the free-text description FRED attaches to each category.
// It is dropped on ingestion.
const NotesColumn = "notes"

// childrenResponse is the body of category/children
type childrenResponse struct {
	Categories   []map[string]json.RawMessage `json:"categories"`
	ErrorCode    int                          `json:"error_code"`
	ErrorMessage string                       `json:"error_message"`
}

// Client talks to the FRED API. Every request first waits on the shared
// rate limiter.
type Client struct {
	http    *resty.Client
	timeout time.Duration
	baseURL string
	apiKey  string
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient makes the client send requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).
			SetTimeout(c.timeout).
			SetRetryCount(0).
			SetHeader("Accept", "application/json")
	}
}

// NewClient creates a FRED client. limiter must be the process-wide limiter;
// a nil logger means the global one.
func NewClient(cfg config.APIConfig, limiter ratelimit.Limiter, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "fredcat/1.0"),
		timeout: timeout,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.Key,
		limiter: limiter,
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchChildren returns the direct children of categoryID as a table with
// the notes column removed. A response without a categories array yields an
// empty table. Failures are returned as *errors.Error and never retried.
func (c *Client) FetchChildren(ctx context.Context, categoryID string) (*dataset.Table, error) {
	url := CategoryChildrenURL(c.baseURL, categoryID, c.apiKey)
	safeURL := RedactURL(url)

	if c.limiter != nil {
		start := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fcerrors.New(fcerrors.ErrorTypeNetwork, "rate limiter wait aborted", err)
		}
		logger.LogRateLimitWait(c.logger, categoryID, time.Since(start))
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		Get(url)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", logger.Fields{
			"url":      safeURL,
			"error":    err.Error(),
			"duration": duration,
		})
		if ctx.Err() != nil {
			return nil, fcerrors.New(fcerrors.ErrorTypeNetwork, "request cancelled", ctx.Err())
		}
		return nil, fcerrors.New(fcerrors.ErrorTypeNetwork, fmt.Sprintf("GET category %s failed", categoryID), err)
	}

	logger.LogRequest(c.logger, http.MethodGet, safeURL, resp.StatusCode(), duration)

	body := []byte(resp.String())
	if resp.IsError() {
		return nil, fcerrors.FromResponse(resp.StatusCode(), resp.Status(), body)
	}

	var parsed childrenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", logger.Fields{
			"url":          safeURL,
			"status":       resp.StatusCode(),
			"error":        err.Error(),
			"body_preview": preview,
		})
		return nil, &fcerrors.Error{
			Type:    fcerrors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode(),
			Err:     err,
		}
	}
	if parsed.ErrorMessage != "" {
		code := parsed.ErrorCode
		if code == 0 {
			code = resp.StatusCode()
		}
		return nil, &fcerrors.Error{
			Type:    fcerrors.TypeForStatus(code),
			Message: parsed.ErrorMessage,
			Code:    code,
		}
	}

	table, err := dataset.FromRecords(parsed.Categories)
	if err != nil {
		return nil, fcerrors.New(fcerrors.ErrorTypeParsing, fmt.Sprintf("malformed category record for %s", categoryID), err)
	}
	table.DropColumn(NotesColumn)

	c.logger.DebugWithFields("fetched category children", logger.Fields{
		"category_id": categoryID,
		"children":    table.Len(),
	})

	return table, nil
}
