package sentiment

import (
	"context"
	"math"
	"sync"

	"github.com/jonreiter/govader"

	"github.com/spacesedan/sentifi/internal/models"
)

// VaderClassifier scores text with the VADER lexicon. No model download, no
// network, which makes it the offline backend.
type VaderClassifier struct {
	once     sync.Once
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderClassifier() *VaderClassifier { return &VaderClassifier{} }

func (c *VaderClassifier) ModelID() string { return "govader-lexicon" }

// ClassifyBatch maps each compound score onto the binary label contract:
// non-negative compounds read POSITIVE, the magnitude serves as confidence.
func (c *VaderClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]models.Classification, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	c.once.Do(func() {
		c.analyzer = govader.NewSentimentIntensityAnalyzer()
	})

	results := make([]models.Classification, 0, len(texts))
	for _, text := range prepareBatch(texts) {
		scores := c.analyzer.PolarityScores(text)

		label := models.LabelPositive
		if scores.Compound < 0 {
			label = models.LabelNegative
		}
		confidence := math.Abs(scores.Compound)
		if confidence > 1 {
			confidence = 1
		}

		results = append(results, models.Classification{
			Label:      label,
			Confidence: confidence,
		})
	}
	return results, nil
}
