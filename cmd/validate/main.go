// Command validate checks that the schema manifest and model artifacts
// agree with each other and produces one sample prediction, so a
// deployment can be verified before riskd restarts onto new artifacts.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

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

	manifest, err := feature.LoadManifest(cfg.ManifestPath)
	if err != nil {
		logger.Error("manifest check failed", "path", cfg.ManifestPath, "error", err)
		os.Exit(1)
	}
	fmt.Printf("manifest ok: version=%s features=%d\n", manifest.Version, manifest.Width())

	clf, err := model.Load(cfg.ModelPath, manifest.Width())
	if err != nil {
		logger.Error("model check failed", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}
	fmt.Printf("model ok: type=%s features=%d\n", clf.ModelType(), clf.FeatureCount())

	for i, name := range manifest.FeatureNames() {
		if clf.FeatureNames[i] != name {
			logger.Error("feature order mismatch",
				"index", i, "manifest", name, "model", clf.FeatureNames[i])
			os.Exit(1)
		}
	}

	metrics := observability.NewMetricsForTesting()
	vectors := serving.NewVectorBuilder(manifest, logger, metrics)
	vec := vectors.Build(
		domain.Location{Lat: 19.076, Lon: 72.877},
		time.Now().UTC(),
		domain.DefaultWeather(),
	)
	p, err := clf.PredictProbability(vec)
	if err != nil {
		logger.Error("sample prediction failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("sample prediction ok: probability=%.4f\n", p)
}
