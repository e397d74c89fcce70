// Package openweather fetches current conditions from the OpenWeather
// current weather API and shapes them as narrator snapshots.
package openweather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/observability"
)

// DefaultBaseURL is the public OpenWeather API host.
const DefaultBaseURL = "https://api.openweathermap.org"

// snapshotPaths maps each snapshot key other than city to its location in
// the /data/2.5/weather response.
var snapshotPaths = []struct{ key, path string }{
	{"temperature", "main.temp"},
	{"feels_like", "main.feels_like"},
	{"pressure", "main.pressure"},
	{"humidity", "main.humidity"},
	{"weather", "weather.0.description"},
	{"wind_speed", "wind.speed"},
	{"wind_deg", "wind.deg"},
	{"visibility", "visibility"},
	{"clouds", "clouds.all"},
}

// Client implements domain.CurrentWeatherFetcher.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client authenticating with apiKey.
func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchCurrent returns the current metric-unit conditions at the city's
// coordinate. The snapshot's city is the list name, not OpenWeather's.
func (c *Client) FetchCurrent(ctx context.Context, city domain.City) (domain.WeatherSnapshot, error) {
	snap, err := c.fetchCurrent(ctx, city)
	if err != nil {
		c.metrics.CurrentWeatherFetches.WithLabelValues("error").Inc()
		return domain.WeatherSnapshot{}, err
	}
	c.metrics.CurrentWeatherFetches.WithLabelValues("ok").Inc()
	return snap, nil
}

func (c *Client) fetchCurrent(ctx context.Context, city domain.City) (domain.WeatherSnapshot, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(city.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(city.Lon, 'f', -1, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	body, err := c.getJSON(ctx, c.baseURL+"/data/2.5/weather?"+params.Encode())
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("current weather %s: %w", city.Name, err)
	}

	members := []domain.Member{{Key: "city", Value: domain.String(city.Name)}}
	for _, p := range snapshotPaths {
		v, _ := body.Get(p.path)
		members = append(members, domain.Member{Key: p.key, Value: v})
	}
	snap, err := domain.SnapshotFromValue(domain.Object(members...))
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("current weather %s: %w", city.Name, err)
	}
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL string) (domain.Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Value{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.OpenWeatherDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// The request URL carries the API key; keep it out of the error.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return domain.Value{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Value{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	v, err := domain.DecodeValue(resp.Body)
	if err != nil {
		return domain.Value{}, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}
