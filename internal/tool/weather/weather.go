// Package weather reports current temperatures from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Cyclone1070/turnkit/internal/logging"
	"github.com/Cyclone1070/turnkit/internal/tool"
)

// DefaultBaseURL is the OpenWeatherMap API root.
const DefaultBaseURL = "https://api.openweathermap.org"

const maxBodySize = 1 << 20

// Request is the argument of get_weather.
type Request struct {
	City string `json:"city" description:"city name, e.g. London"`
}

func (r Request) String() string { return r.City }

// Client queries the geocoding and current-weather endpoints.
type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithBaseURL points the client at another API root (tests use httptest).
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the HTTP timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http = &http.Client{Timeout: d} }
}

// New creates a Client. An empty apiKey is reported when the tool runs.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geoResult struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type currentWeather struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Current returns the current temperature line for city.
// Only a missing key or a cancelled context produce an error.
func (c *Client) Current(ctx context.Context, city string) (string, error) {
	if c.apiKey == "" {
		return "", tool.Fatal(ErrMissingAPIKey)
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)

	var places []geoResult
	status, err := c.getJSON(ctx, "/geo/1.0/direct", q, &places)
	if err != nil {
		return c.fault(ctx, city, err)
	}
	if status != http.StatusOK || len(places) == 0 {
		return MsgCityNotFound, nil
	}

	q = url.Values{}
	q.Set("lat", strconv.FormatFloat(places[0].Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(places[0].Lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)

	var w currentWeather
	status, err = c.getJSON(ctx, "/data/2.5/weather", q, &w)
	if err != nil {
		return c.fault(ctx, city, err)
	}
	if status != http.StatusOK {
		return MsgFetchFailed, nil
	}

	temp := strconv.FormatFloat(w.Main.Temp, 'f', -1, 64)
	return fmt.Sprintf("The current temperature in %s is %s°C.", city, temp), nil
}

func (c *Client) fault(ctx context.Context, city string, err error) (string, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	logging.Warn().With(logging.ToolName("get_weather"), logging.Err(err)).Msg("weather lookup failed for " + city)
	return MsgFetchFailed, nil
}

// getJSON decodes the body only for 200 responses.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}

// Tool returns get_weather backed by c.
func (c *Client) Tool() tool.Tool {
	return tool.NewFunction("get_weather", "Get the current temperature for a city.",
		func(ctx context.Context, req Request) (string, error) {
			return c.Current(ctx, req.City)
		})
}
