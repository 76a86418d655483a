// Package pipeline orchestrates the offline training run: raw CSVs in,
// schema manifest and model artifact out.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marrowdrift/road-risk-service/internal/config"
	"github.com/marrowdrift/road-risk-service/internal/dataset"
	"github.com/marrowdrift/road-risk-service/internal/feature"
	"github.com/marrowdrift/road-risk-service/internal/model"
	"github.com/marrowdrift/road-risk-service/internal/observability"
)

// Result summarizes a completed training run.
type Result struct {
	AccidentRows int
	WeatherRows  int
	FeatureCount int
	TargetColumn string
	ManifestPath string
	ModelPath    string
}

// Pipeline runs the offline derivation and training stages.
type Pipeline struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	rng     *rand.Rand
}

func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, rng *rand.Rand) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logger, metrics: metrics, rng: rng}
}

// Run executes one full training run. The only fatal data condition is an
// empty accident dataset; missing weather sources degrade to an
// accidents-only feature set.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result

	accidents, weather, err := p.load(ctx)
	if err != nil {
		return res, err
	}
	res.AccidentRows = accidents.Len()
	res.WeatherRows = weather.Len()

	var merged *dataset.Frame
	p.stage("merge", func() {
		merged = dataset.MergeAccidentWeather(accidents, weather)
	})

	p.stage("derive", func() {
		feature.DeriveTemporal(merged, p.rng)
		feature.DeriveCategorical(merged)
		feature.DeriveWeather(merged)
		feature.DeriveRisk(merged)
		feature.DeriveInteractions(merged)
		feature.DeriveGeospatial(merged)
	})

	var targetName string
	var labels []float64
	p.stage("target", func() {
		feature.BuildTarget(merged)
		targetName, labels = feature.SelectTarget(merged, p.rng)
	})
	res.TargetColumn = targetName

	p.stage("clean", func() {
		feature.Impute(merged)
		feature.CapOutliers(merged)
	})

	var manifest *feature.Manifest
	var matrix [][]float64
	p.stage("schema", func() {
		manifest = feature.SelectSchema(merged)
		matrix = feature.BuildMatrix(merged, manifest)
	})
	res.FeatureCount = manifest.Width()

	clf := model.NewLogistic(manifest.FeatureNames())
	var fitErr error
	p.stage("fit", func() {
		fitErr = clf.Fit(matrix, binarize(labels), model.FitOptions{})
	})
	if fitErr != nil {
		return res, fmt.Errorf("training classifier: %w", fitErr)
	}

	if err := os.MkdirAll(p.cfg.ArtifactDir, 0o755); err != nil {
		return res, fmt.Errorf("creating artifact dir: %w", err)
	}
	if err := manifest.Save(p.cfg.ManifestPath); err != nil {
		return res, err
	}
	if err := clf.Save(p.cfg.ModelPath); err != nil {
		return res, err
	}
	res.ManifestPath = p.cfg.ManifestPath
	res.ModelPath = p.cfg.ModelPath

	p.metrics.PipelineRuns.Inc()
	p.logger.Info("pipeline run complete",
		slog.Int("accident_rows", res.AccidentRows),
		slog.Int("weather_rows", res.WeatherRows),
		slog.Int("features", res.FeatureCount),
		slog.String("target", targetName),
		slog.String("manifest_version", manifest.Version))
	return res, nil
}

// load reads and canonicalizes every CSV under the data directory.
func (p *Pipeline) load(ctx context.Context) (accidents, weather *dataset.Frame, err error) {
	paths, err := filepath.Glob(filepath.Join(p.cfg.DataDir, "*.csv"))
	if err != nil {
		return nil, nil, fmt.Errorf("scanning data dir: %w", err)
	}

	var accidentSources, weatherSources []*dataset.Frame
	p.stage("load", func() {
		for _, path := range paths {
			if ctx.Err() != nil {
				return
			}
			name := filepath.Base(path)
			kind := classifySource(name)

			// Daily measurement exports ship semicolon-separated;
			// every other source uses plain commas.
			sep := ','
			if kind == sourceRainfallDaily {
				sep = ';'
			}
			raw, readErr := dataset.ReadCSV(path, sep)
			if readErr != nil {
				p.logger.Warn("skipping unreadable source", slog.String("path", path), slog.Any("error", readErr))
				continue
			}
			p.metrics.RowsIngested.WithLabelValues(name).Add(float64(raw.Len()))

			switch kind {
			case sourceAccidentDetailed:
				accidentSources = append(accidentSources, dataset.CanonicalizeDetailed(raw))
			case sourceAccidentCombined:
				accidentSources = append(accidentSources, dataset.CanonicalizeCombined(raw))
			case sourceRainfallDaily:
				weatherSources = append(weatherSources, dataset.AggregateDailyRainfall(raw))
			case sourceRainfallNormals:
				weatherSources = append(weatherSources, dataset.ExpandRainfallNormals(raw))
			default:
				p.logger.Warn("skipping unrecognized source", slog.String("path", path))
			}
		}
	})
	if ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	var combineErr error
	p.stage("canonicalize", func() {
		accidents, combineErr = dataset.CombineAccidentSources(accidentSources...)
		weather = dataset.CombineWeatherSources(weatherSources...)
	})
	if combineErr != nil {
		return nil, nil, fmt.Errorf("combining accident sources: %w", combineErr)
	}

	rawAccidentRows := 0
	for _, src := range accidentSources {
		rawAccidentRows += src.Len()
	}
	if dropped := rawAccidentRows - accidents.Len(); dropped > 0 {
		p.metrics.RowsDropped.WithLabelValues("duplicate").Add(float64(dropped))
	}
	return accidents, weather, nil
}

type sourceKind int

const (
	sourceUnknown sourceKind = iota
	sourceAccidentDetailed
	sourceAccidentCombined
	sourceRainfallDaily
	sourceRainfallNormals
)

// classifySource routes a raw CSV to its canonicalizer by filename.
func classifySource(name string) sourceKind {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "normal"):
		return sourceRainfallNormals
	case strings.Contains(n, "rainfall") || strings.Contains(n, "weather"):
		return sourceRainfallDaily
	case strings.Contains(n, "combined"):
		return sourceAccidentCombined
	case strings.Contains(n, "accident"):
		return sourceAccidentDetailed
	default:
		return sourceUnknown
	}
}

func (p *Pipeline) stage(name string, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	p.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	p.logger.Debug("stage complete", slog.String("stage", name), slog.Duration("elapsed", elapsed))
}

// binarize folds multi-class labels into the binary target the logistic
// model trains on: class 0 stays 0, everything above becomes 1.
func binarize(labels []float64) []float64 {
	out := make([]float64, len(labels))
	for i, v := range labels {
		if v > 0 {
			out[i] = 1
		}
	}
	return out
}
