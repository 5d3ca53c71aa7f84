package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/common"
	"github.com/ajenda/ajenda/internal/logging"
	"github.com/google/uuid"
)

const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"

	authBasePath   = "/api/auth"
	eventsBasePath = "/api/evenements"
	minePath       = "/mes-evenements"
	rangePath      = "/plage"
	searchPath     = "/recherche"

	// rangeTimeLayout matches what browsers send for Date.toISOString.
	rangeTimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// HTTPClient implements Client over the backend's JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        logging.Logger
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its Transport is
// where an Authorizer belongs.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request, overriding the timeout of the
// http.Client in use.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.timeout = d
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		c.log = l
	}
}

// NewHTTPClient builds a client for the backend rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("server url %q: want http(s)://host[:port]", baseURL)
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) SignIn(ctx context.Context, req models.LoginRequest) (*models.JwtResponse, error) {
	var resp models.JwtResponse
	if err := c.doRequest(ctx, http.MethodPost, authBasePath+"/signin", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, req models.SignupRequest) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, authBasePath+"/signup", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListEvents(ctx context.Context, scope Scope) ([]*models.Event, error) {
	return c.listEvents(ctx, scopedPath(scope, ""), nil)
}

func (c *HTTPClient) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	var e models.Event
	if err := c.doRequest(ctx, http.MethodGet, eventPath(id), nil, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *HTTPClient) CreateEvent(ctx context.Context, e *models.Event) (*models.Event, error) {
	var created models.Event
	if err := c.doRequest(ctx, http.MethodPost, eventsBasePath, nil, e, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) UpdateEvent(ctx context.Context, id int64, e *models.Event) (*models.Event, error) {
	var updated models.Event
	if err := c.doRequest(ctx, http.MethodPut, eventPath(id), nil, e, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) DeleteEvent(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, eventPath(id), nil, nil, nil)
}

func (c *HTTPClient) EventsInRange(ctx context.Context, scope Scope, from, to time.Time) ([]*models.Event, error) {
	q := url.Values{}
	q.Set("debut", from.UTC().Format(rangeTimeLayout))
	q.Set("fin", to.UTC().Format(rangeTimeLayout))
	return c.listEvents(ctx, scopedPath(scope, rangePath), q)
}

func (c *HTTPClient) SearchEvents(ctx context.Context, scope Scope, keyword string) ([]*models.Event, error) {
	q := url.Values{}
	q.Set("motCle", keyword)
	return c.listEvents(ctx, scopedPath(scope, searchPath), q)
}

func (c *HTTPClient) listEvents(ctx context.Context, path string, query url.Values) ([]*models.Event, error) {
	events := []*models.Event{}
	if err := c.doRequest(ctx, http.MethodGet, path, query, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func scopedPath(scope Scope, suffix string) string {
	if scope == ScopeAll {
		return eventsBasePath + suffix
	}
	return eventsBasePath + minePath + suffix
}

func eventPath(id int64) string {
	return eventsBasePath + "/" + strconv.FormatInt(id, 10)
}

// doRequest sends one JSON request and decodes a 2xx answer into result.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, query url.Values, body, result any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set(headerAccept, contentTypeJSON)
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}

	log := c.log.With("request_id", requestID, "method", method, "path", path)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// mapTransportError unwraps the Authorizer's local refusals from the
// *url.Error that http.Client wraps them in.
func mapTransportError(ctx context.Context, err error) error {
	for _, local := range []error{ErrAuthRequired, ErrTokenExpired, ErrTokenMalformed} {
		if errors.Is(err, local) {
			return local
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
