package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/spacesedan/sentifi/internal/models"
)

const (
	hugotModelRepo = "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"
	hugotModelID   = "distilbert-base-uncased-finetuned-sst-2-english"
)

// HugotClassifier runs the SST-2 DistilBERT pipeline in-process. Session
// creation and the model download are expensive, so both happen once, on the
// first non-empty batch, and the handle is reused for the process lifetime.
type HugotClassifier struct {
	modelDir string

	once     sync.Once
	initErr  error
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewHugotClassifier() *HugotClassifier {
	dir := os.Getenv("SENTIMENT_MODEL_DIR")
	if dir == "" {
		dir = "./models"
	}
	return &HugotClassifier{modelDir: dir}
}

func (c *HugotClassifier) ModelID() string { return hugotModelID }

func (c *HugotClassifier) init() {
	slog.Info("[HugotClassifier] Loading model", slog.String("repo", hugotModelRepo))
	start := time.Now()

	session, err := hugot.NewGoSession()
	if err != nil {
		c.initErr = fmt.Errorf("[HugotClassifier] failed to create session: %w", err)
		return
	}

	modelPath, err := hugot.DownloadModel(hugotModelRepo, c.modelDir, hugot.NewDownloadOptions())
	if err != nil {
		session.Destroy()
		c.initErr = fmt.Errorf("[HugotClassifier] failed to download model: %w", err)
		return
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "sentifi-sentiment",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		c.initErr = fmt.Errorf("[HugotClassifier] failed to create pipeline: %w", err)
		return
	}

	c.session = session
	c.pipeline = pipeline
	slog.Info("[HugotClassifier] Model ready", slog.Duration("elapsed", time.Since(start)))
}

func (c *HugotClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]models.Classification, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	c.once.Do(c.init)
	if c.initErr != nil {
		return nil, c.initErr
	}

	output, err := c.pipeline.RunPipeline(prepareBatch(texts))
	if err != nil {
		return nil, fmt.Errorf("[HugotClassifier] inference failed: %w", err)
	}

	results := make([]models.Classification, 0, len(texts))
	for _, scores := range output.ClassificationOutputs {
		if len(scores) == 0 {
			return nil, fmt.Errorf("[HugotClassifier] empty classification output")
		}
		best := scores[0]
		for _, s := range scores[1:] {
			if s.Score > best.Score {
				best = s
			}
		}
		results = append(results, models.Classification{
			Label:      best.Label,
			Confidence: float64(best.Score),
		})
	}

	if len(results) != len(texts) {
		return nil, fmt.Errorf("[HugotClassifier] got %d results for %d inputs", len(results), len(texts))
	}
	return results, nil
}

// Close releases the backing session. Safe to call before first use.
func (c *HugotClassifier) Close() error {
	if c.session == nil {
		return nil
	}
	return c.session.Destroy()
}
