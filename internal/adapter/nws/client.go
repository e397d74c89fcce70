// Package nws resolves observation stations and fetches observations from
// the National Weather Service API (api.weather.gov).
package nws

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/observability"
)

// Client implements domain.StationResolver and domain.ObservationFetcher
// against the National Weather Service API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an NWS API client. The API rejects requests without a
// User-Agent, so userAgent should identify the caller.
func NewClient(baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// ResolveStation returns the first observation station listed for the grid
// point containing coord, or "" when the point lists none.
func (c *Client) ResolveStation(ctx context.Context, coord domain.Coordinate) (domain.StationRef, error) {
	station, err := c.resolveStation(ctx, coord)
	switch {
	case err != nil:
		c.metrics.StationLookups.WithLabelValues("error").Inc()
	case !station.Found():
		c.metrics.StationLookups.WithLabelValues("none").Inc()
	default:
		c.metrics.StationLookups.WithLabelValues("found").Inc()
	}
	return station, err
}

func (c *Client) resolveStation(ctx context.Context, coord domain.Coordinate) (domain.StationRef, error) {
	point, err := c.getJSON(ctx, fmt.Sprintf("%s/points/%s", c.baseURL, coord), "points")
	if err != nil {
		return "", fmt.Errorf("points %s: %w", coord, err)
	}

	stations, ok := point.Get("properties.observationStations")
	if !ok {
		return "", fmt.Errorf("points %s: response has no properties.observationStations", coord)
	}

	// The live API links to a station collection instead of embedding the list.
	if link, isLink := stations.AsString(); isLink {
		c.logger.Debug("following station collection", "url", link)
		collection, err := c.getJSON(ctx, link, "stations")
		if err != nil {
			return "", fmt.Errorf("station collection: %w", err)
		}
		if stations, ok = collection.Field("observationStations"); !ok {
			return "", fmt.Errorf("station collection %s has no observationStations", link)
		}
	}

	if stations.Kind() != domain.KindArray {
		return "", fmt.Errorf("observationStations is a %s, want array", stations.Kind())
	}
	first, ok := stations.Index(0)
	if !ok {
		return "", nil
	}
	ref, ok := first.AsString()
	if !ok {
		return "", fmt.Errorf("observationStations[0] is a %s, want string", first.Kind())
	}
	return domain.StationRef(ref), nil
}

// FetchObservation returns the properties of the first observation the station
// recorded during the UTC day date (YYYY-MM-DD), or a null Value when it
// recorded none.
func (c *Client) FetchObservation(ctx context.Context, station domain.StationRef, date string) (domain.Value, error) {
	observation, err := c.fetchObservation(ctx, station, date)
	switch {
	case err != nil:
		c.metrics.ObservationLookups.WithLabelValues("error").Inc()
	case observation.IsNull():
		c.metrics.ObservationLookups.WithLabelValues("none").Inc()
	default:
		c.metrics.ObservationLookups.WithLabelValues("found").Inc()
	}
	return observation, err
}

func (c *Client) fetchObservation(ctx context.Context, station domain.StationRef, date string) (domain.Value, error) {
	start, end, err := domain.DayWindow(date)
	if err != nil {
		return domain.Null(), err
	}

	params := url.Values{
		"start": {start.Format(time.RFC3339)},
		"end":   {end.Format(time.RFC3339)},
	}
	u := fmt.Sprintf("%s/stations/%s/observations?%s", c.baseURL, url.PathEscape(station.ID()), params.Encode())

	body, err := c.getJSON(ctx, u, "observations")
	if err != nil {
		return domain.Null(), fmt.Errorf("observations %s on %s: %w", station.ID(), date, err)
	}

	features, ok := body.Field("features")
	if !ok || features.Kind() != domain.KindArray {
		return domain.Null(), fmt.Errorf("observations %s on %s: response has no features array", station.ID(), date)
	}
	if features.Len() == 0 {
		return domain.Null(), nil
	}
	properties, ok := features.Get("0.properties")
	if !ok {
		return domain.Null(), fmt.Errorf("observations %s on %s: features[0] has no properties", station.ID(), date)
	}
	return properties, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL, endpoint string) (domain.Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Value{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Value{}, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Value{}, fmt.Errorf("nws API error: status %d: %s", resp.StatusCode, body)
	}

	v, err := domain.DecodeValue(resp.Body)
	if err != nil {
		return domain.Value{}, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}
