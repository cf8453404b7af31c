package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/sentifi/internal/models"
)

const (
	openaiModel         = openai.GPT4oMini
	openaiRetryAttempts = 3
	openaiTimeout       = 60 * time.Second
)

const openaiSystemPrompt = `You are a sentiment classifier for crypto market signals.
For every input item return exactly one result with the same "id", a "label" that is
either "POSITIVE" or "NEGATIVE", and a "confidence" between 0 and 1.
Respond with a JSON object: {"results":[{"id":0,"label":"POSITIVE","confidence":0.93}]}`

// OpenAIClassifier labels batches with a JSON-mode chat completion. Remote
// and paid, so it is opt-in via SENTIMENT_BACKEND=openai.
type OpenAIClassifier struct {
	client *openai.Client
}

func NewOpenAIClassifier() (*OpenAIClassifier, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("[OpenAIClassifier] Missing OPENAI_API_KEY in environment variables")
	}

	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{Timeout: openaiTimeout}

	return &OpenAIClassifier{client: openai.NewClientWithConfig(config)}, nil
}

func (c *OpenAIClassifier) ModelID() string { return "openai/" + openaiModel }

type openaiItem struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type openaiResult struct {
	ID         int     `json:"id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type openaiResponse struct {
	Results []openaiResult `json:"results"`
}

func (c *OpenAIClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]models.Classification, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	items := make([]openaiItem, len(texts))
	for i, text := range prepareBatch(texts) {
		items[i] = openaiItem{ID: i, Text: text}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("[OpenAIClassifier] failed to marshal batch: %w", err)
	}

	var resp openai.ChatCompletionResponse
	var completionErr error
	for attempt := 1; attempt <= openaiRetryAttempts; attempt++ {
		resp, completionErr = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: openaiModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: string(payload)},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if completionErr == nil {
			break
		}
		slog.Warn("[OpenAIClassifier] Completion failed, retrying...",
			slog.Int("attempt", attempt),
			slog.String("error", completionErr.Error()))
	}
	if completionErr != nil {
		return nil, fmt.Errorf("[OpenAIClassifier] completion failed after %d attempts: %w", openaiRetryAttempts, completionErr)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("[OpenAIClassifier] completion returned no choices")
	}

	var parsed openaiResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("[OpenAIClassifier] failed to unmarshal response: %w", err)
	}
	if len(parsed.Results) != len(texts) {
		return nil, fmt.Errorf("[OpenAIClassifier] got %d results for %d inputs", len(parsed.Results), len(texts))
	}

	results := make([]models.Classification, len(texts))
	for _, r := range parsed.Results {
		if r.ID < 0 || r.ID >= len(texts) {
			return nil, fmt.Errorf("[OpenAIClassifier] result id %d out of range", r.ID)
		}
		label := r.Label
		if label != models.LabelPositive && label != models.LabelNegative {
			return nil, fmt.Errorf("[OpenAIClassifier] unexpected label %q", label)
		}
		confidence := r.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		results[r.ID] = models.Classification{Label: label, Confidence: confidence}
	}
	return results, nil
}
