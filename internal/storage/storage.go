package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

// Storage sqlite хранилище: кэш графика по месяцам и подписчики бота.
type Storage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// StorageOpts параметры хранилища.
type StorageOpts struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
}

// NewStorage открывает (или создаёт) базу и выполняет миграции.
func NewStorage(opts StorageOpts, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(opts.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("failed to create db dir", "dir", dir, "error", err)
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(opts.DBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("failed to open sqlite db", "path", opts.DBPath, "error", err)
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&models.ShiftRecord{}, &models.Chat{}); err != nil {
		logger.Error("failed to auto-migrate models", "error", err)
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("sqlite storage initialized", "path", opts.DBPath)

	return &Storage{db: db, logger: logger}, nil
}

// Close закрывает соединение с базой.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}
