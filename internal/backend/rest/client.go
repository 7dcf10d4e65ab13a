// Package rest implements backend.Client against a hosted backend that
// exposes a PostgREST table API under /rest/v1 and a GoTrue auth API under
// /auth/v1.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghazighazi3030/blogueee/internal/backend"
)

var _ backend.Client = (*Client)(nil)

// Client talks to the hosted backend. Requests carry the anonymous key as
// apikey and the caller's access token (see backend.WithAccessToken) as the
// bearer, falling back to the anonymous key.
type Client struct {
	backend.Notifier

	BaseURL    string
	AnonKey    string
	HTTPClient *http.Client
	now        func() time.Time
}

func NewClient(baseURL, anonKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AnonKey:    anonKey,
		HTTPClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (c *Client) Close() error {
	c.HTTPClient.CloseIdleConnections()
	return nil
}

// request describes one call to the backend.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	prefer string
	token  string // overrides the token taken from ctx
}

// errorBody covers the error shapes of both APIs: PostgREST sends message,
// GoTrue sends msg or error_description.
type errorBody struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
	Code             any    `json:"code"`
}

func (e errorBody) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// do sends req and decodes a 2xx JSON response into out when out is not nil.
func (c *Client) do(ctx context.Context, req request, out any) (http.Header, error) {
	u := c.BaseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return nil, backend.Fail(req.op, err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, backend.Fail(req.op, err)
	}
	token := req.token
	if token == "" {
		token = backend.AccessToken(ctx)
	}
	if token == "" {
		token = c.AnonKey
	}
	httpReq.Header.Set("apikey", c.AnonKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, backend.Fail(req.op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var eb errorBody
		msg := ""
		if json.Unmarshal(raw, &eb) == nil {
			msg = eb.text()
		}
		if msg == "" {
			msg = fmt.Sprintf("%s failed with status: %d", req.op, resp.StatusCode)
		}
		return resp.Header, &backend.Error{Op: req.op, Message: msg, Err: &StatusError{Code: resp.StatusCode}}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent && req.method != http.MethodHead {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, backend.Fail(req.op, fmt.Errorf("decode response: %w", err))
		}
	}
	return resp.Header, nil
}

// StatusError records the HTTP status of a failed call.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return "status " + strconv.Itoa(e.Code) }

// parseCount reads the total from a Content-Range header such as "0-9/42"
// or "*/42".
func parseCount(h http.Header) (int, error) {
	cr := h.Get("Content-Range")
	i := strings.LastIndexByte(cr, '/')
	if i < 0 || cr[i+1:] == "*" {
		return 0, fmt.Errorf("missing count in Content-Range %q", cr)
	}
	return strconv.Atoi(cr[i+1:])
}

func table(name string) string { return "/rest/v1/" + name }

func eq(v string) string { return "eq." + v }
