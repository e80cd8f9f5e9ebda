package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/reportdeck/backend/internal/infrastructure/logging"
)

// preferenceRow is the gorm model for one stored entry.
type preferenceRow struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    string         `gorm:"column:user_id;size:128;not null;uniqueIndex:idx_prefs_user_key"`
	Key       string         `gorm:"column:key;size:256;not null;uniqueIndex:idx_prefs_user_key"`
	Value     datatypes.JSON `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (preferenceRow) TableName() string {
	return "preferences"
}

// SQLite persists entries in a single-file database via gorm.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite opens (creating if needed) the database at path and migrates the
// preferences table.
func NewSQLite(path string, logger *logging.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite prefs: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite prefs: create dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite prefs: open: %w", err)
	}

	if err := db.AutoMigrate(&preferenceRow{}); err != nil {
		return nil, fmt.Errorf("sqlite prefs: migrate: %w", err)
	}

	if logger != nil {
		logger.Info("sqlite preference store ready")
	}
	return &SQLite{db: db}, nil
}

// Get returns the stored value and whether the key was present.
func (s *SQLite) Get(ctx context.Context, userID, key string) ([]byte, bool, error) {
	var row preferenceRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sqlite prefs: get: %w", err)
	}
	return []byte(row.Value), true, nil
}

// Set stores the value, upserting on the (user_id, key) index.
func (s *SQLite) Set(ctx context.Context, userID, key string, value []byte) error {
	row := preferenceRow{
		UserID:    userID,
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("sqlite prefs: set: %w", err)
	}
	return nil
}

// Delete removes the entry if present.
func (s *SQLite) Delete(ctx context.Context, userID, key string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		Delete(&preferenceRow{}).Error
	if err != nil {
		return fmt.Errorf("sqlite prefs: delete: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
