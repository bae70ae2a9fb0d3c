package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite wraps a process-local database file.
type SQLite struct {
	DB *sql.DB
}

// OpenSQLite opens (creating if needed) the database file and applies migrations.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; the stores above serialize mutations anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := runSQLiteMigrations(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("opened sqlite store", zap.String("path", cleanPath))
	return &SQLite{DB: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// SQLiteKV stores blobs in the kv_blobs table of a SQLite file.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV builds a KeyValue on top of an opened SQLite database.
func NewSQLiteKV(db *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

func (k *SQLiteKV) Save(ctx context.Context, key string, blob []byte) error {
	if k.db == nil {
		return ErrBackendUnavailable
	}
	const query = `
        INSERT INTO kv_blobs (key, blob, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`
	_, err := k.db.ExecContext(ctx, query, key, blob, time.Now().UTC().UnixMilli())
	return err
}

func (k *SQLiteKV) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if k.db == nil {
		return nil, false, ErrBackendUnavailable
	}
	var blob []byte
	err := k.db.QueryRowContext(ctx, `SELECT blob FROM kv_blobs WHERE key = ?`, key).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return blob, true, nil
}

func (k *SQLiteKV) Ping(ctx context.Context) error {
	if k.db == nil {
		return ErrBackendUnavailable
	}
	return k.db.PingContext(ctx)
}

func (k *SQLiteKV) Name() string { return "sqlite" }
