package serving

import (
	"context"
	"time"

	"github.com/marrowdrift/road-risk-service/internal/domain"
)

// MaxRoutePoints bounds a single route request.
const MaxRoutePoints = 50

// ScoreRoute scores each waypoint independently at the shared timestamp
// and summarizes the result. Point order is preserved.
func (s *Scorer) ScoreRoute(ctx context.Context, points []domain.Location, at time.Time) ([]domain.RiskPrediction, domain.RouteSummary) {
	preds := make([]domain.RiskPrediction, len(points))
	for i, p := range points {
		preds[i] = s.ScorePoint(ctx, p, at)
	}
	return preds, SummarizeRoute(preds)
}

// SummarizeRoute aggregates predictions into a route-level view: mean
// risk, the riskiest waypoint, and the most common level across
// waypoints (ties go to the more severe level).
func SummarizeRoute(preds []domain.RiskPrediction) domain.RouteSummary {
	if len(preds) == 0 {
		return domain.RouteSummary{DominantLevel: domain.RiskLow}
	}
	var sum float64
	maxIdx := 0
	counts := make(map[domain.RiskLevel]int, 3)
	for i, p := range preds {
		sum += p.RiskScore
		counts[p.RiskLevel]++
		if p.RiskScore > preds[maxIdx].RiskScore {
			maxIdx = i
		}
	}
	dominant := domain.RiskLow
	best := 0
	for _, lvl := range []domain.RiskLevel{domain.RiskHigh, domain.RiskModerate, domain.RiskLow} {
		if counts[lvl] > best {
			best = counts[lvl]
			dominant = lvl
		}
	}
	return domain.RouteSummary{
		AverageRisk:   sum / float64(len(preds)),
		MaxRiskIndex:  maxIdx,
		MaxRiskScore:  preds[maxIdx].RiskScore,
		DominantLevel: dominant,
	}
}
