package sentiment

import (
	"context"
	"log/slog"
	"math"

	"github.com/spacesedan/sentifi/internal/models"
)

// breakdownTextLimit caps how much of each signal text is echoed back in the
// per-item breakdown.
const breakdownTextLimit = 80

// Analyzer combines per-item classifications into one bounded aggregate.
// Classifier failures never escape it: anything that goes wrong downgrades
// to the neutral default, the same shape an empty input produces.
type Analyzer struct {
	classifier Classifier
}

func NewAnalyzer(classifier Classifier) *Analyzer {
	return &Analyzer{classifier: classifier}
}

// Analyze returns only the aggregate score.
func (a *Analyzer) Analyze(ctx context.Context, texts []string) float64 {
	return a.AnalyzeDetailed(ctx, texts).Score
}

// AnalyzeDetailed classifies every text and folds the results into a score in
// [-1, +1] with confidence, label counts, and a per-item breakdown in input
// order.
func (a *Analyzer) AnalyzeDetailed(ctx context.Context, texts []string) models.AggregateSentiment {
	if len(texts) == 0 {
		return a.neutral()
	}

	results, err := a.classifier.ClassifyBatch(ctx, texts)
	if err != nil {
		slog.Error("[SentimentAnalyzer] Classification failed, returning neutral result",
			slog.String("error", err.Error()))
		return a.neutral()
	}
	if len(results) != len(texts) {
		slog.Error("[SentimentAnalyzer] Result count mismatch, returning neutral result",
			slog.Int("texts", len(texts)),
			slog.Int("results", len(results)))
		return a.neutral()
	}

	var totalScore, totalConfidence float64
	var bullish, bearish int
	breakdown := make([]models.BreakdownItem, 0, len(texts))

	for i, result := range results {
		contribution := result.Confidence
		if result.Label == models.LabelPositive {
			bullish++
		} else {
			bearish++
			contribution = -contribution
		}

		totalScore += contribution
		totalConfidence += result.Confidence

		breakdown = append(breakdown, models.BreakdownItem{
			Text:         truncateDisplay(texts[i]),
			Label:        result.Label,
			Confidence:   round4(result.Confidence),
			Contribution: round4(contribution),
		})
	}

	n := float64(len(results))
	score := clamp(totalScore/n, -1.0, 1.0)

	return models.AggregateSentiment{
		Score:        round6(score),
		Confidence:   round4(totalConfidence / n),
		BullishCount: bullish,
		BearishCount: bearish,
		Model:        a.classifier.ModelID(),
		Breakdown:    breakdown,
	}
}

// neutral is the canonical no-signal result.
func (a *Analyzer) neutral() models.AggregateSentiment {
	return models.AggregateSentiment{
		Model:     a.classifier.ModelID(),
		Breakdown: []models.BreakdownItem{},
	}
}

func truncateDisplay(text string) string {
	r := []rune(text)
	if len(r) <= breakdownTextLimit {
		return text
	}
	return string(r[:breakdownTextLimit]) + "..."
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
