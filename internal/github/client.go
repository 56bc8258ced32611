// Package github is a minimal GitHub GraphQL v4 client covering the queries
// and mutations the tracker needs. List queries drain every page before
// returning.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/steveyegge/wgtracker/internal/errs"
)

// DefaultEndpoint is the public GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// pageSize is the connection page size; GitHub caps it at 100.
const pageSize = 100

// Client talks to the GitHub GraphQL API.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit caps requests per second. Zero or negative disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client authenticating with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		token:    token,
		http:     &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(5), 1),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// do runs one GraphQL operation and returns its "data" member. accept, if
// non-empty, replaces the default Accept header (used for schema previews).
func (c *Client) do(ctx context.Context, op, query string, vars map[string]any, accept string) (gjson.Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, errs.Network(op, err)
	}

	payload, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: marshaling request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, errs.Config(op, err)
	}
	req.Header.Set("Authorization", "bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	} else {
		req.Header.Set("Accept", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, errs.Network(op+": could not perform network request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, errs.Network(op+": could not read response", err)
	}
	c.logger.Debug("github request", "op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, errs.Errorf(errs.KindResponse, "%s: github returned %s: %s", op, resp.Status, snippet(body))
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errs.Errorf(errs.KindResponse, "%s: could not parse response: %s", op, snippet(body))
	}

	result := gjson.ParseBytes(body)
	if problems := result.Get("errors").Array(); len(problems) > 0 {
		messages := make([]string, 0, len(problems))
		for _, p := range problems {
			messages = append(messages, p.Get("message").String())
		}
		return gjson.Result{}, errs.Errorf(errs.KindResponse, "%s: errors in response: %s", op, strings.Join(messages, "; "))
	}

	data := result.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return gjson.Result{}, errs.Errorf(errs.KindResponse, "%s: no data in response", op)
	}
	return data, nil
}

// lookup walks a dotted path through data. A null object along the way means
// the remote object does not exist; a missing member means a malformed
// response.
func lookup(op string, data gjson.Result, path string) (gjson.Result, error) {
	cur := data
	for _, field := range strings.Split(path, ".") {
		cur = cur.Get(field)
		if !cur.Exists() {
			return gjson.Result{}, errs.Errorf(errs.KindResponse, "%s: %s missing from response", op, field)
		}
		if cur.Type == gjson.Null {
			return gjson.Result{}, errs.Errorf(errs.KindNotFound, "%s: %s not found", op, field)
		}
	}
	return cur, nil
}

// paginate runs query repeatedly, following the connection at path, and
// calls each for every node.
func (c *Client) paginate(ctx context.Context, op, query string, vars map[string]any, path string, each func(node gjson.Result) error) error {
	vars["first"] = pageSize
	var after any
	for {
		vars["after"] = after
		data, err := c.do(ctx, op, query, vars, "")
		if err != nil {
			return err
		}

		conn, err := lookup(op, data, path)
		if err != nil {
			return err
		}
		for _, node := range conn.Get("nodes").Array() {
			if node.Type == gjson.Null {
				continue
			}
			if err := each(node); err != nil {
				return err
			}
		}

		if !conn.Get("pageInfo.hasNextPage").Bool() {
			return nil
		}
		cursor := conn.Get("pageInfo.endCursor").String()
		if cursor == "" {
			return errs.Errorf(errs.KindResponse, "%s: next page without cursor", op)
		}
		after = cursor
	}
}

func parseTime(op string, v gjson.Result) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return time.Time{}, errs.Response(op+": bad timestamp", err)
	}
	return t, nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
