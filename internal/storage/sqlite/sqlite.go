// Package sqlitestorage implements the storage.Backend interface on SQLite
// through GORM. An empty path keeps the database in memory.
package sqlitestorage

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cxd309/strike-engine/internal/model"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	Path string
}

// Backend writes runs and solve records through GORM.
type Backend struct {
	cfg Config
	db  *gorm.DB
}

func New(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

// memoryDSN names a private in-memory database. The shared cache lets the
// pool's connections see one database; the unique name keeps backends apart.
func memoryDSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

// open returns a connection to a SQLite database. If path is empty, uses an
// in-memory database of its own.
func open(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = memoryDSN()
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// Init opens the database and migrates the schema.
func (b *Backend) Init() error {
	db, err := open(b.cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to open SQLite DB: %w", err)
	}
	if err := db.AutoMigrate(&model.Run{}, &model.SolveRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.db = db
	return nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	b.db = nil
	return sqlDB.Close()
}

func (b *Backend) StartRun(r *model.Run) error {
	if b.db == nil {
		return errors.New("sqlite backend not initialised")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if err := b.db.Create(r).Error; err != nil {
		return fmt.Errorf("inserting run %s: %w", r.ID, err)
	}
	return nil
}

func (b *Backend) RecordSolve(s *model.SolveRecord) error {
	if b.db == nil {
		return errors.New("sqlite backend not initialised")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if err := b.db.Omit("Run").Create(s).Error; err != nil {
		return fmt.Errorf("inserting solve record: %w", err)
	}
	return nil
}

func (b *Backend) Solves(runID string) ([]model.SolveRecord, error) {
	if b.db == nil {
		return nil, errors.New("sqlite backend not initialised")
	}
	var out []model.SolveRecord
	err := b.db.Where("run_id = ?", runID).Order("time, created_at").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("querying solves of run %s: %w", runID, err)
	}
	return out, nil
}
