package models

const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
)

// Classification is one classifier verdict for one input text.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// BreakdownItem explains how a single signal moved the aggregate score.
type BreakdownItem struct {
	Text         string  `json:"text"`
	Label        string  `json:"label"`
	Confidence   float64 `json:"confidence"`
	Contribution float64 `json:"contribution"`
}

// AggregateSentiment is the final output of a sentiment analysis run.
// Score stays within [-1.0, +1.0]; Breakdown preserves input order.
type AggregateSentiment struct {
	Score        float64         `json:"score"`
	Confidence   float64         `json:"confidence"`
	BullishCount int             `json:"bullish_count"`
	BearishCount int             `json:"bearish_count"`
	Model        string          `json:"model"`
	Breakdown    []BreakdownItem `json:"breakdown"`
}
