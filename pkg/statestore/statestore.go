// Package statestore persists named JSON snapshots to a local sqlite file.
// Every write replaces the whole snapshot, which keeps the durable copy
// consistent with the last applied in-memory state. Collections are small
// (tens of items), so full rewrites are cheap.
package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound reports a missing snapshot. Callers treat it as "no prior
// state", never as a failure.
var ErrNotFound = errors.New("statestore: snapshot not found")

type snapshot struct {
	Name      string `gorm:"primaryKey;size:64"`
	Payload   []byte
	UpdatedAt time.Time
}

// Store wraps the sqlite-backed snapshot table.
type Store struct {
	conn *gorm.DB
}

// Open creates or opens the snapshot database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("state path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if err := conn.AutoMigrate(&snapshot{}); err != nil {
		return nil, fmt.Errorf("migrating state db: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Save serializes v and replaces the named snapshot in full.
func (s *Store) Save(ctx context.Context, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding snapshot %q: %w", name, err)
	}

	row := snapshot{Name: name, Payload: payload, UpdatedAt: time.Now().UTC()}
	if err := s.conn.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("writing snapshot %q: %w", name, err)
	}
	return nil
}

// Load decodes the named snapshot into out. Returns ErrNotFound when no
// snapshot exists; a corrupt payload is also reported as ErrNotFound so
// callers fall back to empty state rather than failing startup.
func (s *Store) Load(ctx context.Context, name string, out any) error {
	var row snapshot
	err := s.conn.WithContext(ctx).First(&row, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("reading snapshot %q: %w", name, err)
	}

	if err := json.Unmarshal(row.Payload, out); err != nil {
		return ErrNotFound
	}
	return nil
}

// Delete removes the named snapshot. Deleting a missing snapshot is a no-op.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.conn.WithContext(ctx).Delete(&snapshot{}, "name = ?", name).Error; err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", name, err)
	}
	return nil
}

// Ping verifies the sqlite handle is still usable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying sqlite handle.
func (s *Store) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
