package models

import "time"

// SentimentSnapshot is one persisted analysis run: what was asked, what the
// aggregate said, and the onchain transaction hash once the score is pushed.
type SentimentSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey" dynamodbav:"-"`
	Token        string    `json:"token" gorm:"index" dynamodbav:"token"`
	Query        string    `json:"query,omitempty" dynamodbav:"query,omitempty"`
	Score        float64   `json:"score" dynamodbav:"score"`
	Confidence   float64   `json:"confidence" dynamodbav:"confidence"`
	BullishCount int       `json:"bullish_count" dynamodbav:"bullish_count"`
	BearishCount int       `json:"bearish_count" dynamodbav:"bearish_count"`
	Total        int       `json:"total" dynamodbav:"total"`
	Model        string    `json:"model" dynamodbav:"model"`
	TxHash       string    `json:"tx_hash,omitempty" dynamodbav:"tx_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at,unixtime"`
}
