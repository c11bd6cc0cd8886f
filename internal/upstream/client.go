package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gleam/dashboard/internal/config"
	"github.com/gofiber/fiber/v2"
)

// Client talks to the GLEAM REST backend on behalf of a signed-in dashboard user.
type Client struct {
	baseURL string
	timeout time.Duration
}

func NewClient(cfg *config.Config) *Client {
	return New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), timeout: timeout}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, token string, out interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.Do(ctx, fiber.MethodGet, path, token, nil, out)
}

func (c *Client) Post(ctx context.Context, path, token string, body, out interface{}) error {
	return c.Do(ctx, fiber.MethodPost, path, token, body, out)
}

func (c *Client) Put(ctx context.Context, path, token string, body, out interface{}) error {
	return c.Do(ctx, fiber.MethodPut, path, token, body, out)
}

func (c *Client) Patch(ctx context.Context, path, token string, body, out interface{}) error {
	return c.Do(ctx, fiber.MethodPatch, path, token, body, out)
}

func (c *Client) Delete(ctx context.Context, path, token string) error {
	return c.Do(ctx, fiber.MethodDelete, path, token, nil, nil)
}

// Do sends one request. A nil out discards the response body. Responses wrapped as
// {"data": ...} are unwrapped before decoding.
func (c *Client) Do(ctx context.Context, method, path, token string, body, out interface{}) error {
	code, respBody, err := Send(ctx, SendOptions{
		Method:  method,
		URL:     c.baseURL + path,
		Token:   token,
		Body:    body,
		Timeout: c.timeout,
	})
	if err != nil {
		return err
	}
	if code < 200 || code > 299 {
		return parseError(code, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := decode(respBody, out); err != nil {
		return fmt.Errorf("upstream: decode %s %s: %w", method, path, err)
	}
	return nil
}

// SendOptions describes a single outbound call. It is shared with the geocoder and the
// prediction client, which talk to third-party hosts rather than the backend.
type SendOptions struct {
	Method    string
	URL       string
	Token     string
	UserAgent string
	Body      interface{}
	Timeout   time.Duration
}

// Send performs the request with fiber's client and returns the raw status and body.
// Transport failures come back as an *Error with code UPSTREAM_UNAVAILABLE. A context
// that is done, before or during the call, returns ctx.Err() without waiting for the reply.
func Send(ctx context.Context, opts SendOptions) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	timeout := opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return 0, nil, context.DeadlineExceeded
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(opts.Method)
	req.SetRequestURI(opts.URL)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if opts.Token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+opts.Token)
	}
	if opts.UserAgent != "" {
		agent.UserAgent(opts.UserAgent)
	}
	if opts.Body != nil {
		agent.JSON(opts.Body)
	}
	agent.Timeout(timeout)

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, unavailable(err)
	}

	// fasthttp cannot abort a request in flight, so the call runs in its own goroutine and
	// a cancelled ctx stops the wait. The agent is released by Bytes when the call ends.
	done := make(chan sendResult, 1)
	go func() {
		code, body, errs := agent.Bytes()
		done <- sendResult{code: code, body: body, errs: errs}
	}()

	select {
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case res := <-done:
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		if len(res.errs) > 0 {
			return 0, nil, unavailable(errors.Join(res.errs...))
		}
		return res.code, res.body, nil
	}
}

type sendResult struct {
	code int
	body []byte
	errs []error
}

func decode(body []byte, out interface{}) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if data, ok := envelope["data"]; ok && len(data) > 0 && string(data) != "null" {
			return json.Unmarshal(data, out)
		}
	}
	return json.Unmarshal(body, out)
}
