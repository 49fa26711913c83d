package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/next-trace/scg-report/report"
)

// StoredReport is one persisted report.
type StoredReport struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	EventTime    string    `gorm:"not null;size:32;index" json:"eventTime"`
	Service      string    `gorm:"not null;size:255;index" json:"service"`
	Version      string    `gorm:"size:255" json:"version"`
	Message      string    `gorm:"type:text" json:"message"`
	StatusCode   int       `json:"responseStatusCode"`
	FilePath     string    `gorm:"size:1024" json:"filePath"`
	LineNumber   int       `json:"lineNumber"`
	FunctionName string    `gorm:"size:1024" json:"functionName"`
	Payload      string    `gorm:"type:text;not null" json:"payload"`
	StackTrace   string    `gorm:"type:text" json:"stackTrace"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

func (StoredReport) TableName() string { return "error_reports" }

// StoreConfig configures the SQLite sink.
type StoreConfig struct {
	Path          string // database file; ":memory:" for a private in-memory database
	BusyTimeoutMS int    // default 5000
}

// Store persists reports to SQLite so they survive an unreachable collector
// and can be inspected locally.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (and migrates) the SQLite database at cfg.Path.
func OpenStore(cfg StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store transport: path is required")
	}

	if cfg.BusyTimeoutMS <= 0 {
		cfg.BusyTimeoutMS = 5000
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("store transport: create directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(buildDSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store transport: open %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store transport: underlying db: %w", err)
	}

	// One connection: SQLite has a single writer and ":memory:" is per connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&StoredReport{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store transport: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func buildDSN(cfg StoreConfig) string {
	base, rawQuery, _ := strings.Cut(cfg.Path, "?")

	query, _ := url.ParseQuery(rawQuery)
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeoutMS))

	if base != ":memory:" {
		query.Add("_pragma", "journal_mode(WAL)")
	}

	return base + "?" + query.Encode()
}

// SendError inserts r.
func (s *Store) SendError(ctx context.Context, r *report.Report) error {
	if r == nil {
		return ErrNilReport
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store transport: encode report: %w", err)
	}

	row := StoredReport{
		ID:           uuid.NewString(),
		EventTime:    r.EventTime(),
		Service:      r.Service(),
		Version:      r.Version(),
		Message:      r.Message(),
		StatusCode:   r.ResponseStatusCode(),
		FilePath:     r.FilePath(),
		LineNumber:   r.LineNumber(),
		FunctionName: r.FunctionName(),
		Payload:      string(payload),
		StackTrace:   r.StackTrace(),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("store transport: insert: %w", err)
	}

	return nil
}

// Recent returns up to limit reports, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]StoredReport, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []StoredReport

	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("event_time DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store transport: list: %w", err)
	}

	return rows, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
