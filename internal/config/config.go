package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Artifact paths shared by the offline pipeline and riskd.
	DataDir      string
	ArtifactDir  string
	ManifestPath string
	ModelPath    string

	// Live weather provider.
	WeatherAPIKey  string
	WeatherTimeout time.Duration

	// Weather cache configuration.
	WeatherCacheBackend string // "memory" or "redis"
	WeatherCacheExpiry  time.Duration
	RedisURL            string

	// Kafka prediction sink (optional).
	KafkaSinkEnabled bool
	KafkaBrokers     []string
	KafkaSinkTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when
// present.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheExpiry, err := parseDuration("WEATHER_CACHE_EXPIRY", "1h")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	artifactDir := envOrDefault("ARTIFACT_DIR", "artifacts")

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir:      envOrDefault("DATA_DIR", "data/raw"),
		ArtifactDir:  artifactDir,
		ManifestPath: envOrDefault("MANIFEST_PATH", artifactDir+"/schema_manifest.json"),
		ModelPath:    envOrDefault("MODEL_PATH", artifactDir+"/risk_model.json"),

		WeatherAPIKey:  os.Getenv("WEATHER_API_KEY"),
		WeatherTimeout: weatherTimeout,

		WeatherCacheBackend: envOrDefault("WEATHER_CACHE_BACKEND", "memory"),
		WeatherCacheExpiry:  cacheExpiry,
		RedisURL:            envOrDefault("REDIS_URL", "redis://localhost:6379/0"),

		KafkaSinkEnabled: os.Getenv("KAFKA_SINK_ENABLED") == "true",
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:   envOrDefault("KAFKA_SINK_TOPIC", "risk-predictions"),
	}

	switch cfg.WeatherCacheBackend {
	case "memory", "redis":
	default:
		return nil, errors.New("WEATHER_CACHE_BACKEND must be \"memory\" or \"redis\"")
	}
	if cfg.KafkaSinkEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_SINK_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaSinkEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_ENABLED is true but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

// EnvInt reads an integer environment variable, returning def when unset
// or unparsable.
func EnvInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
