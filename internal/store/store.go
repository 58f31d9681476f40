package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Sammers21/owl-esports/internal/engine"
	"github.com/Sammers21/owl-esports/internal/room"
	pubtypes "github.com/Sammers21/owl-esports/pkg/types"
)

const heroSeparator = ","

// Draft is one accepted pick line of a tracker.
type Draft struct {
	ID        uint      `gorm:"primaryKey"`
	TrackerID string    `gorm:"size:32;not null;index:idx_drafts_tracker_created,priority:1"`
	Version   int       `gorm:"not null"`
	Match     string    `gorm:"size:255"`
	Line      string    `gorm:"size:1024;not null"`
	Radiant   string    `gorm:"size:512;not null"`
	Dire      string    `gorm:"size:512;not null"`
	CreatedAt time.Time `gorm:"index:idx_drafts_tracker_created,priority:2,sort:desc"`
}

type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(db, logger)
}

// New wraps an existing connection; any gorm dialector works.
func New(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&Draft{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Record implements room.Recorder.
func (s *Store) Record(ctx context.Context, r room.Record) error {
	d := fromRecord(r)
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return fmt.Errorf("failed to record draft of %s: %w", r.TrackerID, err)
	}
	s.logger.Debug("draft recorded", zap.String("tracker", r.TrackerID), zap.Int("version", r.Version))
	return nil
}

// History returns up to limit drafts of trackerID, newest first.
func (s *Store) History(ctx context.Context, trackerID string, limit int) ([]pubtypes.HistoryEntry, error) {
	var drafts []Draft
	err := s.db.WithContext(ctx).
		Where("tracker_id = ?", trackerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&drafts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history of %s: %w", trackerID, err)
	}

	entries := make([]pubtypes.HistoryEntry, 0, len(drafts))
	for _, d := range drafts {
		entries = append(entries, d.Entry())
	}
	return entries, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fromRecord(r room.Record) Draft {
	return Draft{
		TrackerID: r.TrackerID,
		Version:   r.Version,
		Match:     r.State.Match,
		Line:      r.State.Line,
		Radiant:   strings.Join(r.State.Picks[engine.TeamRadiant], heroSeparator),
		Dire:      strings.Join(r.State.Picks[engine.TeamDire], heroSeparator),
	}
}

func (d Draft) Entry() pubtypes.HistoryEntry {
	return pubtypes.HistoryEntry{
		Version:  d.Version,
		Match:    d.Match,
		Line:     d.Line,
		Radiant:  splitHeroes(d.Radiant),
		Dire:     splitHeroes(d.Dire),
		Recorded: d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func splitHeroes(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, heroSeparator)
}
