// Package client is a Go client for the fsgate REST API.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/fsgate/internal/infrastructure/resilience"
)

// dataURIPrefix is the only data URI form the server accepts for binary uploads
const dataURIPrefix = "data:application/octet-stream;base64,"

// Config holds client configuration.
type Config struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	// BreakerThreshold consecutive failed calls stop the client for
	// BreakerCooldown. Failures are transport errors and 5xx responses.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// DefaultConfig returns a client configuration for a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:3000",
		Timeout:      60 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		UserAgent:    "fsgate-client/1.0",

		BreakerThreshold: 5,
		BreakerCooldown:  30 * time.Second,
	}
}

// Client talks to one fsgate server. It is safe for concurrent use.
type Client struct {
	resty   *resty.Client
	direct  *resty.Client
	breaker *resilience.Breaker

	mu    sync.RWMutex
	token string
}

// New creates a client. Connection failures, 429 and 5xx responses are
// retried with exponential backoff.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = def.RetryWaitMin
	}
	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = def.RetryWaitMax
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = def.BreakerThreshold
	}
	if cfg.BreakerCooldown == 0 {
		cfg.BreakerCooldown = def.BreakerCooldown
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil
	// Hand the final response back instead of a "giving up" error so API
	// errors keep their body
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	httpClient := retryClient.StandardClient()
	httpClient.Timeout = cfg.Timeout

	breaker := resilience.New(resilience.Settings{
		FailureThreshold: cfg.BreakerThreshold,
		Cooldown:         cfg.BreakerCooldown,
	})

	return &Client{
		resty: newResty(httpClient, cfg),
		// The retrying transport reads a plain reader body into memory to
		// replay it, so streamed uploads go out once on a plain client.
		// Their duration is bounded by the caller's context.
		direct:  newResty(&http.Client{}, cfg),
		breaker: breaker,
		token:   cfg.Token,
	}
}

func newResty(hc *http.Client, cfg Config) *resty.Client {
	return resty.NewWithClient(hc).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("User-Agent", cfg.UserAgent).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.requestOn(ctx, c.resty)
}

func (c *Client) requestOn(ctx context.Context, rc *resty.Client) *resty.Request {
	req := rc.R().SetContext(ctx).SetError(&errorBody{})
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// errServerFailure marks a 5xx for the breaker; the response itself is
// still returned to the caller
var errServerFailure = errors.New("server failure")

// send executes req through the circuit breaker
func (c *Client) send(req *resty.Request, method, target string) (*resty.Response, error) {
	var resp *resty.Response
	err := c.breaker.Do(func() error {
		var err error
		resp, err = req.Execute(method, target)
		if err != nil {
			return err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return errServerFailure
		}
		return nil
	})
	if errors.Is(err, errServerFailure) {
		return resp, nil
	}
	return resp, err
}

// BreakerState reports whether calls are currently allowed through.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// resourcePath builds an API path, escaping each segment of p
func resourcePath(prefix, p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return prefix + "/"
	}
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return prefix + "/" + strings.Join(segments, "/")
}

// check turns a transport failure or an error status into an error
func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(resp.Body()))
	}
	return apiErr
}

// checkRaw is check for responses whose body was left unparsed
func checkRaw(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}
	body := resp.RawBody()
	defer body.Close()
	data, _ := io.ReadAll(io.LimitReader(body, 64<<10))
	return decodeAPIError(resp.StatusCode(), data)
}

// Health returns the server health document.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	resp, err := c.send(c.request(ctx).SetResult(&h), resty.MethodGet, "/health")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &h, nil
}

// SetupAuth registers token with the server and starts using it.
// Registering the token already in place succeeds.
func (c *Client) SetupAuth(ctx context.Context, token string) error {
	req := c.request(ctx).SetBody(map[string]string{"token": token})
	resp, err := c.send(req, resty.MethodPost, "/api/auth/setup")
	if err := check(resp, err); err != nil {
		return err
	}
	c.SetToken(token)
	return nil
}

// AuthStatus reports whether the server has a token registered.
func (c *Client) AuthStatus(ctx context.Context) (bool, error) {
	var status struct {
		Configured bool `json:"configured"`
	}
	resp, err := c.send(c.request(ctx).SetResult(&status), resty.MethodGet, "/api/auth/status")
	if err := check(resp, err); err != nil {
		return false, err
	}
	return status.Configured, nil
}

// ListDirectory lists the entries of a directory; "" is the root.
func (c *Client) ListDirectory(ctx context.Context, p string) ([]Entry, error) {
	var entries []Entry
	resp, err := c.send(c.request(ctx).SetResult(&entries), resty.MethodGet, resourcePath("/api/directories", p))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateDirectory creates one directory whose parent must exist.
func (c *Client) CreateDirectory(ctx context.Context, p string) error {
	return check(c.send(c.request(ctx), resty.MethodPost, resourcePath("/api/directories", p)))
}

// DeleteDirectory removes an empty directory.
func (c *Client) DeleteDirectory(ctx context.Context, p string) error {
	return check(c.send(c.request(ctx), resty.MethodDelete, resourcePath("/api/directories", p)))
}

// ReadFile returns the whole content of a file.
func (c *Client) ReadFile(ctx context.Context, p string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.Download(ctx, p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Download streams a file into w and returns the number of bytes copied.
func (c *Client) Download(ctx context.Context, p string, w io.Writer) (int64, error) {
	return c.stream(ctx, resourcePath("/api/files", p), nil, w)
}

// Stat returns the size and media type of a file without its content.
func (c *Client) Stat(ctx context.Context, p string) (size int64, mediaType string, err error) {
	resp, err := c.send(c.request(ctx), resty.MethodHead, resourcePath("/api/files", p))
	if err != nil {
		return 0, "", fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return 0, "", &APIError{Status: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	}
	size, _ = strconv.ParseInt(resp.Header().Get("Content-Length"), 10, 64)
	return size, resp.Header().Get("Content-Type"), nil
}

// CreateFile creates or overwrites a text file.
func (c *Client) CreateFile(ctx context.Context, p, content string) error {
	req := c.request(ctx).SetBody(map[string]string{"content": content})
	return check(c.send(req, resty.MethodPost, resourcePath("/api/files", p)))
}

// UploadFile creates or overwrites a file with binary data sent as a
// base64 data URI.
func (c *Client) UploadFile(ctx context.Context, p string, data []byte) error {
	req := c.request(ctx).SetBody(map[string]string{"fileData": EncodeDataURI(data)})
	return check(c.send(req, resty.MethodPost, resourcePath("/api/files", p)))
}

// UploadStream creates or overwrites a file from a raw byte stream. The
// body is sent as it is read and is not retried.
func (c *Client) UploadStream(ctx context.Context, p string, r io.Reader) error {
	req := c.requestOn(ctx, c.direct).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(r)
	return check(c.send(req, resty.MethodPost, resourcePath("/api/files", p)))
}

// UpdateFile replaces the content of an existing file.
func (c *Client) UpdateFile(ctx context.Context, p, content string) error {
	req := c.request(ctx).SetBody(map[string]string{"content": content})
	return check(c.send(req, resty.MethodPut, resourcePath("/api/files", p)))
}

// DeleteFile removes a file.
func (c *Client) DeleteFile(ctx context.Context, p string) error {
	return check(c.send(c.request(ctx), resty.MethodDelete, resourcePath("/api/files", p)))
}

// Metadata describes a file or directory.
func (c *Client) Metadata(ctx context.Context, p string) (*Metadata, error) {
	var meta Metadata
	resp, err := c.send(c.request(ctx).SetResult(&meta), resty.MethodGet, resourcePath("/api/metadata", p))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Search matches a glob pattern below base. limit <= 0 uses the server
// default.
func (c *Client) Search(ctx context.Context, base, pattern string, limit int) (*SearchResult, error) {
	var result SearchResult
	req := c.request(ctx).
		SetResult(&result).
		SetQueryParam("pattern", pattern)
	if base != "" {
		req.SetQueryParam("path", base)
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	if err := check(c.send(req, resty.MethodGet, "/api/search")); err != nil {
		return nil, err
	}
	return &result, nil
}

// Archive streams a compressed tarball of a directory into w. format is
// "tar.gz" or "tar.zst"; empty selects gzip.
func (c *Client) Archive(ctx context.Context, p, format string, w io.Writer) (int64, error) {
	query := map[string]string{}
	if format != "" {
		query["format"] = format
	}
	return c.stream(ctx, resourcePath("/api/archives", p), query, w)
}

func (c *Client) stream(ctx context.Context, target string, query map[string]string, w io.Writer) (int64, error) {
	req := c.request(ctx).
		SetQueryParams(query).
		SetDoNotParseResponse(true)
	resp, err := c.send(req, resty.MethodGet, target)
	if err := checkRaw(resp, err); err != nil {
		return 0, err
	}
	body := resp.RawBody()
	defer body.Close()

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("read %s: %w", target, err)
	}
	return n, nil
}

// EncodeDataURI wraps data in the data URI form accepted by uploads.
func EncodeDataURI(data []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(data)
}
