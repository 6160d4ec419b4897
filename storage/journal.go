// Package storage keeps a journal of matches, kills and hits in a SQL
// database through gorm.
package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/automoto/hitscan-mp/config"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoMatch is returned when a record is written before StartMatch.
var ErrNoMatch = errors.New("no match started")

// Journal writes combat records. Safe for concurrent use; the server writes
// from a buffered event handler goroutine.
type Journal struct {
	db     *gorm.DB
	logger zerolog.Logger

	mu    sync.Mutex
	match uint
}

// Open connects with the configured driver and migrates the schema.
func Open(cfg config.StorageConfig, log zerolog.Logger) (*Journal, error) {
	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "postgres":
		db, err = openPostgres(cfg.DSN)
	case "sqlite", "":
		db, err = openSqlite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s journal: %w", cfg.Driver, err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info().Str("driver", db.Dialector.Name()).Msg("Journal ready")
	return &Journal{db: db, logger: log}, nil
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// openSqlite opens path, or a private in-memory database when path is empty.
func openSqlite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writes.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	return db, nil
}

// StartMatch opens a new match that later records belong to.
func (j *Journal) StartMatch(serverName, level string) (uint, error) {
	m := Match{ServerName: serverName, Level: level, StartedAt: time.Now()}
	if err := j.db.Create(&m).Error; err != nil {
		return 0, fmt.Errorf("create match: %w", err)
	}
	j.mu.Lock()
	j.match = m.ID
	j.mu.Unlock()
	j.logger.Debug().Uint("match", m.ID).Str("level", level).Msg("Match started")
	return m.ID, nil
}

// EndMatch stamps the current match as finished.
func (j *Journal) EndMatch() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.match == 0 {
		return ErrNoMatch
	}
	now := time.Now()
	err := j.db.Model(&Match{}).Where("id = ?", j.match).Update("ended_at", now).Error
	if err != nil {
		return fmt.Errorf("end match %d: %w", j.match, err)
	}
	j.match = 0
	return nil
}

// RecordKill stores one kill under match. The match may already have
// ended.
func (j *Journal) RecordKill(match uint, rec KillRecord) error {
	if match == 0 {
		return ErrNoMatch
	}
	rec.MatchID = match
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	if err := j.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("record kill: %w", err)
	}
	return nil
}

// RecordHit stores one hit under match. The match may already have
// ended.
func (j *Journal) RecordHit(match uint, rec HitRecord) error {
	if match == 0 {
		return ErrNoMatch
	}
	rec.MatchID = match
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	if err := j.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	return nil
}

// CurrentMatch returns the open match id, zero when none.
func (j *Journal) CurrentMatch() uint { return j.currentMatch() }

func (j *Journal) currentMatch() uint {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.match
}

// KillCount is one row of a match leaderboard.
type KillCount struct {
	Killer uint32
	Kills  int64
}

// Leaderboard returns kill counts for a match, most kills first.
// Environment kills are left out.
func (j *Journal) Leaderboard(matchID uint) ([]KillCount, error) {
	var rows []KillCount
	err := j.db.Model(&KillRecord{}).
		Select("killer, count(*) as kills").
		Where("match_id = ? AND killer <> 0", matchID).
		Group("killer").
		Order("kills desc, killer asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return rows, nil
}

// Hits returns every hit recorded for a match in insertion order.
func (j *Journal) Hits(matchID uint) ([]HitRecord, error) {
	var hits []HitRecord
	if err := j.db.Where("match_id = ?", matchID).Order("id").Find(&hits).Error; err != nil {
		return nil, fmt.Errorf("hits: %w", err)
	}
	return hits, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
