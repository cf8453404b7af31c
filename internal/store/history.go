package store

import (
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spacesedan/sentifi/internal/models"
)

const DEFAULT_HISTORY_DB = "sentifi.db"

var db *gorm.DB

// InitHistory opens the local snapshot database and runs migrations.
func InitHistory() error {
	path := os.Getenv("HISTORY_DB_PATH")
	if path == "" {
		path = DEFAULT_HISTORY_DB
	}

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("[Store] failed to open history db: %w", err)
	}

	if err := conn.AutoMigrate(&models.SentimentSnapshot{}); err != nil {
		return fmt.Errorf("[Store] failed to migrate history db: %w", err)
	}

	db = conn
	return nil
}

func SaveSnapshot(snapshot *models.SentimentSnapshot) error {
	if db == nil {
		return fmt.Errorf("[Store] history db not initialized")
	}
	if err := db.Create(snapshot).Error; err != nil {
		return fmt.Errorf("[Store] failed to save snapshot: %w", err)
	}
	return nil
}

// RecentSnapshots returns the latest snapshots, newest first. An empty
// token returns snapshots across all tokens.
func RecentSnapshots(token string, limit int) ([]models.SentimentSnapshot, error) {
	if db == nil {
		return nil, fmt.Errorf("[Store] history db not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := db.Order("created_at DESC").Limit(limit)
	if token != "" {
		query = query.Where("token = ?", token)
	}

	var snapshots []models.SentimentSnapshot
	if err := query.Find(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("[Store] failed to load snapshots: %w", err)
	}
	return snapshots, nil
}

// SetTxHash records the onchain transaction hash for a stored snapshot.
func SetTxHash(id uint, txHash string) error {
	if db == nil {
		return fmt.Errorf("[Store] history db not initialized")
	}
	result := db.Model(&models.SentimentSnapshot{}).Where("id = ?", id).Update("tx_hash", txHash)
	if result.Error != nil {
		return fmt.Errorf("[Store] failed to update snapshot %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("[Store] snapshot %d not found", id)
	}
	return nil
}
