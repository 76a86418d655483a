// Command riskd serves the road-risk scoring API. It loads the schema
// manifest and model artifacts produced by cmd/pipeline; when the model is
// missing it serves rule-based fallback scores instead of refusing to
// start.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/marrowdrift/road-risk-service/internal/adapter/httpapi"
	"github.com/marrowdrift/road-risk-service/internal/adapter/kafka"
	"github.com/marrowdrift/road-risk-service/internal/adapter/openweather"
	"github.com/marrowdrift/road-risk-service/internal/adapter/rediscache"
	"github.com/marrowdrift/road-risk-service/internal/config"
	"github.com/marrowdrift/road-risk-service/internal/domain"
	"github.com/marrowdrift/road-risk-service/internal/feature"
	"github.com/marrowdrift/road-risk-service/internal/model"
	"github.com/marrowdrift/road-risk-service/internal/observability"
	"github.com/marrowdrift/road-risk-service/internal/serving"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	manifest, err := feature.LoadManifest(cfg.ManifestPath)
	if err != nil {
		logger.Error("failed to load schema manifest", "path", cfg.ManifestPath, "error", err)
		os.Exit(1)
	}
	logger.Info("schema manifest loaded", "version", manifest.Version, "features", manifest.Width())

	var classifier domain.Classifier
	clf, err := model.Load(cfg.ModelPath, manifest.Width())
	switch {
	case err == nil:
		classifier = clf
		metrics.ModelLoaded.Set(1)
		logger.Info("model loaded", "type", clf.ModelType(), "features", clf.FeatureCount())
	case domain.IsWidthMismatch(err):
		logger.Error("model disagrees with schema manifest", "error", err)
		os.Exit(1)
	default:
		metrics.ModelLoaded.Set(0)
		logger.Warn("model unavailable, serving rule-based fallback", "path", cfg.ModelPath, "error", err)
	}

	weather := buildWeatherProvider(cfg, logger, metrics)
	vectors := serving.NewVectorBuilder(manifest, logger, metrics)
	scorer := serving.NewScorer(classifier, weather, vectors, logger, metrics)

	var api httpapi.Scorer = scorer
	var sink *kafka.Writer
	if cfg.KafkaSinkEnabled {
		sink = kafka.NewWriter(cfg, logger)
		api = &publishingScorer{scorer: scorer, sink: sink, logger: logger}
		logger.Info("kafka prediction sink enabled", "topic", cfg.KafkaSinkTopic)
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, api, readiness{}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	logger.Info("shutdown complete")
}

// publishingScorer forwards scoring calls and publishes the resulting
// predictions to the Kafka sink. Publish failures are logged, never
// surfaced to the API caller.
type publishingScorer struct {
	scorer *serving.Scorer
	sink   *kafka.Writer
	logger *slog.Logger
}

func (p *publishingScorer) ScorePoint(ctx context.Context, loc domain.Location, at time.Time) domain.RiskPrediction {
	pred := p.scorer.ScorePoint(ctx, loc, at)
	p.publish(ctx, []domain.RiskPrediction{pred})
	return pred
}

func (p *publishingScorer) ScoreRoute(ctx context.Context, points []domain.Location, at time.Time) ([]domain.RiskPrediction, domain.RouteSummary) {
	preds, summary := p.scorer.ScoreRoute(ctx, points, at)
	p.publish(ctx, preds)
	return preds, summary
}

func (p *publishingScorer) publish(ctx context.Context, preds []domain.RiskPrediction) {
	if err := p.sink.Publish(ctx, preds); err != nil {
		p.logger.Error("failed to publish predictions", "error", err)
	}
}

// buildWeatherProvider assembles the provider chain: upstream client,
// wrapped by the configured cache backend.
func buildWeatherProvider(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) domain.WeatherProvider {
	client := openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, logger)

	var cache serving.WeatherCache
	if cfg.WeatherCacheBackend == "redis" {
		redisCache, err := rediscache.New(cfg.RedisURL, cfg.WeatherCacheExpiry, logger)
		if err != nil {
			logger.Error("failed to connect redis weather cache, using memory", "error", err)
		} else {
			cache = redisCache
		}
	}
	if cache == nil {
		cache = serving.NewMemoryWeatherCache(cfg.WeatherCacheExpiry, clockwork.NewRealClock())
	}
	return serving.NewCachedWeatherProvider(client, cache, logger, metrics)
}

// readiness reports ready once artifacts are loaded; main exits before
// serving when they are not, so reaching the handler means ready.
type readiness struct{}

func (readiness) CheckReadiness(context.Context) error { return nil }
