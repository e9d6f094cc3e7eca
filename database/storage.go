package database

import (
	"fmt"
	"option-explorer/interfaces"
	"option-explorer/models"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LocalStorage implements the LookupRecorder interface using SQLite
type LocalStorage struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewLocalStorage creates a new local storage service
func NewLocalStorage(dbPath string, log *logrus.Logger) (*LocalStorage, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.DBLookup{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &LocalStorage{
		db:     db,
		logger: log,
	}, nil
}

// SaveLookup saves a dashboard lookup to the database
func (s *LocalStorage) SaveLookup(record *interfaces.LookupRecord) error {
	dbLookup := &models.DBLookup{
		RequestID:        record.RequestID,
		Ticker:           strings.ToUpper(record.Ticker),
		PlotParameter:    record.PlotParameter,
		Period:           record.Period,
		Page:             record.Page,
		SelectedContract: record.SelectedContract,
		ContractCount:    record.ContractCount,
		CurrentPrice:     record.CurrentPrice,
		Errors:           record.Errors,
		DurationMs:       record.Duration.Milliseconds(),
	}
	if !record.ExpirationDate.IsZero() {
		expiration := record.ExpirationDate
		dbLookup.ExpirationDate = &expiration
	}

	result := s.db.Create(dbLookup)
	if result.Error != nil {
		return fmt.Errorf("failed to save lookup: %w", result.Error)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": record.RequestID,
		"ticker":     dbLookup.Ticker,
	}).Debug("Lookup saved")
	return nil
}

// GetLookups retrieves the most recent lookups, optionally filtered by ticker.
// A limit <= 0 returns every match.
func (s *LocalStorage) GetLookups(ticker string, limit int) ([]*interfaces.LookupRecord, error) {
	var dbLookups []*models.DBLookup

	query := s.db.Model(&models.DBLookup{})
	if ticker != "" {
		query = query.Where("ticker = ?", strings.ToUpper(ticker))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	result := query.Order("created_at DESC").Order("id DESC").Find(&dbLookups)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get lookups: %w", result.Error)
	}

	records := make([]*interfaces.LookupRecord, len(dbLookups))
	for i, dbLookup := range dbLookups {
		record := &interfaces.LookupRecord{
			RequestID:        dbLookup.RequestID,
			Ticker:           dbLookup.Ticker,
			PlotParameter:    dbLookup.PlotParameter,
			Period:           dbLookup.Period,
			Page:             dbLookup.Page,
			SelectedContract: dbLookup.SelectedContract,
			ContractCount:    dbLookup.ContractCount,
			CurrentPrice:     dbLookup.CurrentPrice,
			Duration:         time.Duration(dbLookup.DurationMs) * time.Millisecond,
			CreatedAt:        dbLookup.CreatedAt,
		}
		if dbLookup.ExpirationDate != nil {
			record.ExpirationDate = *dbLookup.ExpirationDate
		}
		if len(dbLookup.Errors) > 0 {
			record.Errors = dbLookup.Errors
		}
		records[i] = record
	}

	return records, nil
}

// CleanupOldData removes lookups older than the specified time
func (s *LocalStorage) CleanupOldData(before time.Time) (int64, error) {
	s.logger.WithField("before", before).Info("Cleaning up old lookups")

	result := s.db.Unscoped().Where("created_at < ?", before).Delete(&models.DBLookup{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old lookups: %w", result.Error)
	}

	s.logger.WithField("deleted", result.RowsAffected).Info("Old lookups cleaned up")
	return result.RowsAffected, nil
}

// Close closes the database connection
func (s *LocalStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
