package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// ErrMissingAPIKey is returned when the selected narrator provider has no API key.
var ErrMissingAPIKey = errors.New("missing API key")

const (
	defaultNWSBaseURL   = "https://api.weather.gov"
	defaultNWSUserAgent = "DisasterRiskAI (weather enrichment)"
	defaultGroqBaseURL  = "https://api.groq.com"
	defaultGeminiModel  = "gemini-2.0-flash"
)

// Config holds the enrichment tool settings, populated from environment variables.
type Config struct {
	InputPath  string
	OutputPath string
	SheetName  string

	NWSBaseURL   string
	NWSUserAgent string
	NWSTimeout   time.Duration

	HTTPAddr        string // empty disables the ops server
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional sinks.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
	SQLitePath   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	nwsTimeout, err := parsePositiveDuration("NWS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputPath:       sharedcfg.EnvOrDefault("INPUT_PATH", "assets/usa.xlsx"),
		OutputPath:      sharedcfg.EnvOrDefault("OUTPUT_PATH", "assets/usa_with_weather_data.csv"),
		SheetName:       os.Getenv("SHEET_NAME"),
		NWSBaseURL:      sharedcfg.EnvOrDefault("NWS_BASE_URL", defaultNWSBaseURL),
		NWSUserAgent:    sharedcfg.EnvOrDefault("NWS_USER_AGENT", defaultNWSUserAgent),
		NWSTimeout:      nwsTimeout,
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "disaster-weather-records"),
		SQLitePath:      os.Getenv("SQLITE_PATH"),
	}

	if cfg.InputPath == "" {
		return nil, errors.New("INPUT_PATH is required")
	}
	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if cfg.NWSUserAgent == "" {
		return nil, errors.New("NWS_USER_AGENT is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
		}
	}

	return cfg, nil
}

// Provider names accepted by NARRATOR_PROVIDER.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// NarratorConfig holds the risk narrator settings.
type NarratorConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration

	LogLevel  string
	LogFormat string
}

// LoadNarrator reads the narrator configuration. The API key of the selected
// provider is required; its absence is reported as ErrMissingAPIKey.
func LoadNarrator() (*NarratorConfig, error) {
	timeout, err := parsePositiveDuration("NARRATOR_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	cfg := &NarratorConfig{
		Provider:  sharedcfg.EnvOrDefault("NARRATOR_PROVIDER", ProviderGroq),
		Timeout:   timeout,
		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
	}

	switch cfg.Provider {
	case ProviderGroq:
		cfg.APIKey = os.Getenv("GROQ_API_KEY")
		cfg.BaseURL = sharedcfg.EnvOrDefault("GROQ_BASE_URL", defaultGroqBaseURL)
		cfg.Model = sharedcfg.EnvOrDefault("NARRATOR_MODEL", domain.DefaultChatModel)
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: GROQ_API_KEY is not set", ErrMissingAPIKey)
		}
	case ProviderGemini:
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		cfg.Model = sharedcfg.EnvOrDefault("NARRATOR_MODEL", defaultGeminiModel)
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrMissingAPIKey)
		}
	default:
		return nil, fmt.Errorf("invalid NARRATOR_PROVIDER %q (want %s or %s)", cfg.Provider, ProviderGroq, ProviderGemini)
	}

	return cfg, nil
}

// APIConfig holds the records/analysis API settings.
type APIConfig struct {
	Addr       string
	SQLitePath string
	RateLimit  float64 // requests per second
	Narrator   *NarratorConfig
	Weather    WeatherConfig

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// WeatherConfig holds the current-weather scraper settings. An empty APIKey
// disables scraping; stored snapshots are still served.
type WeatherConfig struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	CitiesPath  string
	ScrapeLimit int
}

func loadWeather() (WeatherConfig, error) {
	timeout, err := parsePositiveDuration("OPENWEATHER_TIMEOUT", "10s")
	if err != nil {
		return WeatherConfig{}, err
	}

	limit, err := strconv.Atoi(sharedcfg.EnvOrDefault("SCRAPE_LIMIT", "100"))
	if err != nil || limit <= 0 {
		return WeatherConfig{}, errors.New("invalid SCRAPE_LIMIT")
	}

	key := os.Getenv("OPENWEATHER_API_KEY")
	if key == "" {
		key = os.Getenv("WEATHER_API_KEY")
	}

	return WeatherConfig{
		APIKey:      key,
		BaseURL:     sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
		Timeout:     timeout,
		CitiesPath:  sharedcfg.EnvOrDefault("CITIES_PATH", "assets/worldcities.csv"),
		ScrapeLimit: limit,
	}, nil
}

// LoadAPI reads the API server configuration. The narrator section is loaded
// with LoadNarrator, so the API refuses to start without a chat API key.
func LoadAPI() (*APIConfig, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	rate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("API_RATE_LIMIT", "5"), 64)
	if err != nil || rate <= 0 {
		return nil, errors.New("invalid API_RATE_LIMIT")
	}

	narrator, err := LoadNarrator()
	if err != nil {
		return nil, err
	}

	weather, err := loadWeather()
	if err != nil {
		return nil, err
	}

	cfg := &APIConfig{
		Addr:            sharedcfg.EnvOrDefault("API_ADDR", ":8081"),
		SQLitePath:      sharedcfg.EnvOrDefault("SQLITE_PATH", "assets/disasters.db"),
		RateLimit:       rate,
		Narrator:        narrator,
		Weather:         weather,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}
	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}
