// Package websearch runs web searches through the Tavily API and hands the
// model a compact JSON summary.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Cyclone1070/turnkit/internal/logging"
	"github.com/Cyclone1070/turnkit/internal/tool"
)

const (
	// DefaultEndpoint is Tavily's search endpoint.
	DefaultEndpoint   = "https://api.tavily.com/search"
	DefaultMaxResults = 5

	maxBodySize = 4 << 20
)

// Client calls Tavily.
type Client struct {
	http       *http.Client
	apiKey     string
	endpoint   string
	maxResults int
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithEndpoint(u string) Option {
	return func(cl *Client) { cl.endpoint = u }
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http = &http.Client{Timeout: d} }
}

// WithMaxResults sets the default result count used when a call omits it.
func WithMaxResults(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.maxResults = n
		}
	}
}

// New creates a Client. An empty apiKey is reported when the tool runs.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: 15 * time.Second},
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the Summary or Failure document for req as JSON text.
func (c *Client) Search(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", tool.Fatal(ErrMissingAPIKey)
	}

	limit := req.MaxResults
	if limit <= 0 {
		limit = c.maxResults
	}
	includeAnswer := true
	if req.IncludeAnswer != nil {
		includeAnswer = *req.IncludeAnswer
	}

	resp, err := c.do(ctx, tavilyRequest{Query: req.Query, MaxResults: limit, IncludeAnswer: includeAnswer})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		logging.Warn().With(logging.ToolName("web_search"), logging.Err(err)).Msg("tavily search failed")
		return encode(Failure{Error: err.Error(), Query: req.Query}), nil
	}

	out := Summary{Query: resp.Query, Answer: resp.Answer, Results: []Hit{}}
	if out.Query == "" {
		out.Query = req.Query
	}
	for i, r := range resp.Results {
		if i == limit {
			break
		}
		out.Results = append(out.Results, Hit{Title: r.Title, URL: r.URL, Snippet: r.Content, Score: r.Score})
	}
	return encode(out), nil
}

func (c *Client) do(ctx context.Context, body tavilyRequest) (*tavilyResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var out tavilyResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}
	return &out, nil
}

func encode(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Tool returns web_search backed by c.
func (c *Client) Tool() tool.Tool {
	return tool.NewFunction("web_search",
		"Search the web via Tavily and return JSON with an answer and the top results.",
		c.Search)
}
