// Package store archives battle debriefs in a local SQLite database.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/talonworks/sortie/pkg/report"
)

// DebriefRecord is one archived debrief row. The full debrief rides along
// as a JSON payload so the schema never has to chase the report format.
type DebriefRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Scenario  string    `json:"scenario" gorm:"size:127;index"`
	Victory   bool      `json:"victory"`
	Duration  float64   `json:"duration"`
	Credits   int       `json:"credits"`
	Salvage   int       `json:"salvage"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	Payload   []byte    `json:"-"`
}

// Store is the debrief archive.
type Store struct {
	db *gorm.DB
}

// DefaultPath returns the archive location under the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sortie-debriefs.db"
	}
	return filepath.Join(home, ".sortie", "debriefs.db")
}

// Open opens the archive at path, creating the file and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}

	if err := db.AutoMigrate(&DebriefRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveDebrief archives one debrief.
func (s *Store) SaveDebrief(d *report.Debrief) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode debrief: %w", err)
	}

	record := DebriefRecord{
		ID:        d.ID,
		Scenario:  d.Scenario,
		Victory:   d.Victory,
		Duration:  d.DurationSeconds,
		Credits:   d.Results.Credits,
		Salvage:   d.Results.Salvage,
		CreatedAt: d.GeneratedAt,
		Payload:   payload,
	}

	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to archive debrief: %w", err)
	}
	return nil
}

// ListDebriefs returns the newest records without their payloads. A
// non-positive limit returns everything.
func (s *Store) ListDebriefs(limit int) ([]DebriefRecord, error) {
	var records []DebriefRecord
	q := s.db.Omit("payload").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list debriefs: %w", err)
	}
	return records, nil
}

// LoadDebrief returns the full debrief for an archived ID. A unique ID
// prefix works too, so the short IDs printed by listings resolve.
func (s *Store) LoadDebrief(id string) (*report.Debrief, error) {
	var record DebriefRecord
	if err := s.db.Where("id LIKE ?", id+"%").First(&record).Error; err != nil {
		return nil, fmt.Errorf("debrief %s not found: %w", id, err)
	}

	var d report.Debrief
	if err := json.Unmarshal(record.Payload, &d); err != nil {
		return nil, fmt.Errorf("failed to decode debrief %s: %w", id, err)
	}
	return &d, nil
}

// Purge deletes every archived debrief and returns how many were removed.
func (s *Store) Purge() (int64, error) {
	res := s.db.Where("1 = 1").Delete(&DebriefRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge archive: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
