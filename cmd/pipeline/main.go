// Command pipeline runs one offline training pass: it reads the raw
// accident and rainfall CSVs, derives the feature set, and writes the
// schema manifest and model artifacts riskd serves from.
package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/marrowdrift/road-risk-service/internal/config"
	"github.com/marrowdrift/road-risk-service/internal/observability"
	"github.com/marrowdrift/road-risk-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seed := int64(config.EnvInt("PIPELINE_SEED", 1))
	p := pipeline.New(cfg, logger, metrics, rand.New(rand.NewSource(seed)))

	res, err := p.Run(ctx)
	if err != nil {
		logger.Error("pipeline run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("artifacts written",
		"manifest", res.ManifestPath,
		"model", res.ModelPath,
		"accident_rows", res.AccidentRows,
		"weather_rows", res.WeatherRows,
		"features", res.FeatureCount,
		"target", res.TargetColumn)
}
