// Package api serves enriched disaster records, scraped city weather and
// on-demand risk narratives over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 20
	maxLimit     = 500
	maxBodyBytes = 64 << 10
)

// RecordStore reads enriched records.
type RecordStore interface {
	List(ctx context.Context, limit, offset int) ([]domain.ExportRow, error)
	Get(ctx context.Context, id string) (domain.ExportRow, error)
}

// WeatherStore reads scraped city snapshots.
type WeatherStore interface {
	SnapshotByCity(ctx context.Context, city string) (domain.CityWeather, error)
	CityMarkers(ctx context.Context, country string) ([]domain.CityMarker, error)
}

// Scraper refreshes the stored snapshots for a country.
type Scraper interface {
	Scrape(ctx context.Context, country string) (int, error)
}

// Narrator generates a risk narrative for a snapshot.
type Narrator interface {
	Narrate(ctx context.Context, snap domain.WeatherSnapshot) (string, error)
}

// Handler holds the API's collaborators.
type Handler struct {
	store    RecordStore
	weather  WeatherStore
	scraper  Scraper
	narrator Narrator
	logger   *slog.Logger
}

// NewHandler wires the API. A nil scraper disables /scrape (no API key).
func NewHandler(store RecordStore, weather WeatherStore, scraper Scraper, narrator Narrator, logger *slog.Logger) *Handler {
	return &Handler{store: store, weather: weather, scraper: scraper, narrator: narrator, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/api/records", h.listRecords)
	r.GET("/api/records/:id", h.getRecord)
	r.POST("/api/analyze", h.analyze)

	r.GET("/scrape/:country", h.scrape)
	r.GET("/weather", h.cityWeather)
	r.GET("/cities/:country", h.cityMarkers)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listRecords(c *gin.Context) {
	limit := defaultLimit
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	records, err := h.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list records failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) getRecord(c *gin.Context) {
	id := c.Param("id")
	record, err := h.store.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case err != nil:
		h.logger.Error("get record failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch record"})
	default:
		c.JSON(http.StatusOK, record)
	}
}

func (h *Handler) analyze(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	snap, err := domain.ParseSnapshot(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.narrator.Narrate(c.Request.Context(), snap)
	if err != nil {
		h.logger.Error("risk narrative failed", "city", snap.City.Text(), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "risk analysis unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (h *Handler) scrape(c *gin.Context) {
	if h.scraper == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "weather scraping is not configured"})
		return
	}

	country := c.Param("country")
	stored, err := h.scraper.Scrape(c.Request.Context(), country)
	if err != nil {
		h.logger.Error("scrape failed", "country", country, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error scraping weather data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "weather data scraped and stored for country: " + country,
		"country": country,
		"stored":  stored,
	})
}

func (h *Handler) cityWeather(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city parameter is required"})
		return
	}

	weather, err := h.weather.SnapshotByCity(c.Request.Context(), city)
	switch {
	case errors.Is(err, domain.ErrCityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "weather data not found for the city"})
	case err != nil:
		h.logger.Error("get weather failed", "city", city, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch weather data"})
	default:
		c.JSON(http.StatusOK, weather)
	}
}

func (h *Handler) cityMarkers(c *gin.Context) {
	country := c.Param("country")
	markers, err := h.weather.CityMarkers(c.Request.Context(), country)
	if err != nil {
		h.logger.Error("list cities failed", "country", country, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cities"})
		return
	}
	if len(markers) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cities found for country: " + country})
		return
	}

	c.JSON(http.StatusOK, markers)
}
