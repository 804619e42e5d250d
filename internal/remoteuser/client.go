// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package remoteuser

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/z5labs/blockbuilder/internal/try"
	"github.com/z5labs/blockbuilder/pkg/noop"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const requestIDHeader = "X-Request-Id"

type clientOptions struct {
	timeout    time.Duration
	maxRetries int
	waitMin    time.Duration
	waitMax    time.Duration
	logHandler slog.Handler
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// Timeout bounds every individual attempt.
func Timeout(d time.Duration) ClientOption {
	return func(co *clientOptions) {
		co.timeout = d
	}
}

// Retry configures how many times, and with which backoff bounds, a request
// is retried on connection errors and 5xx responses.
func Retry(maxRetries int, waitMin, waitMax time.Duration) ClientOption {
	return func(co *clientOptions) {
		co.maxRetries = maxRetries
		co.waitMin = waitMin
		co.waitMax = waitMax
	}
}

// ClientLogHandler configures where retry attempts are logged.
func ClientLogHandler(h slog.Handler) ClientOption {
	return func(co *clientOptions) {
		co.logHandler = h
	}
}

// Client talks to the users API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	co := &clientOptions{
		timeout:    10 * time.Second,
		maxRetries: 3,
		waitMin:    100 * time.Millisecond,
		waitMax:    2 * time.Second,
		logHandler: noop.LogHandler{},
	}
	for _, opt := range opts {
		opt(co)
	}

	rc := &retryablehttp.Client{
		HTTPClient: &http.Client{
			Timeout:   co.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger:       slog.New(co.logHandler),
		RetryWaitMin: co.waitMin,
		RetryWaitMax: co.waitMax,
		RetryMax:     co.maxRetries,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    rc.StandardClient(),
	}
}

// CreateUser registers a new user.
func (c *Client) CreateUser(ctx context.Context, username, password string) (User, error) {
	b, err := json.Marshal(createUserRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return User{}, err
	}

	var user User
	err = c.do(ctx, http.MethodPost, c.baseURL+"/users", b, http.StatusCreated, &user)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Activity returns how many events were recorded for the user within window.
func (c *Client) Activity(ctx context.Context, id string, window time.Duration) (Activity, error) {
	q := url.Values{}
	q.Set("window", window.String())
	u := c.baseURL + "/users/" + url.PathEscape(id) + "/activity?" + q.Encode()

	var activity Activity
	err := c.do(ctx, http.MethodGet, u, nil, http.StatusOK, &activity)
	if err != nil {
		return Activity{}, err
	}
	return activity, nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, want int, v any) (err error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return err
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer try.Close(&err, resp.Body)

	if resp.StatusCode != want {
		var er errorResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&er)
		if decodeErr != nil {
			er.Error = "failed to decode error response: " + decodeErr.Error()
		}
		return StatusError{
			Code:    resp.StatusCode,
			Message: er.Error,
		}
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
