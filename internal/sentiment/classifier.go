// Package sentiment holds the classifier adapter and the aggregator that
// turns per-item classifications into one bounded score.
package sentiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/spacesedan/sentifi/internal/models"
)

// maxInputChars caps what is submitted to a backend. The stored record text
// is never altered, only the copy sent for inference.
const maxInputChars = 512

// Classifier labels a batch of texts, one result per input, in input order.
// Implementations are expensive to initialize and must defer that work until
// the first non-empty batch.
type Classifier interface {
	ModelID() string
	ClassifyBatch(ctx context.Context, texts []string) ([]models.Classification, error)
}

// NewClassifier selects a backend by name: "hugot" (local transformer, the
// default), "vader" (lexicon, no model download), or "openai" (remote).
func NewClassifier(backend string) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "hugot":
		return NewHugotClassifier(), nil
	case "vader":
		return NewVaderClassifier(), nil
	case "openai":
		return NewOpenAIClassifier()
	default:
		return nil, fmt.Errorf("[Sentiment] unknown classifier backend %q", backend)
	}
}

// prepareBatch normalizes and truncates every text for submission.
func prepareBatch(texts []string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = truncateForModel(Normalize(text))
	}
	return out
}

func truncateForModel(text string) string {
	r := []rune(text)
	if len(r) <= maxInputChars {
		return text
	}
	return string(r[:maxInputChars])
}
