package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"stock-dashboard-backend/internal/cache"
	"stock-dashboard-backend/internal/model"
)

const DefaultDBFileName = "dashboard.db"

// SQLiteStore keeps prediction history and a small key-value table in one
// SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// ResolvePath turns a directory into a database file path.
func ResolvePath(p string) string {
	if p == "" {
		return DefaultDBFileName
	}
	if filepath.Ext(p) == "" {
		return filepath.Join(p, DefaultDBFileName)
	}
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return filepath.Join(p, DefaultDBFileName)
	}
	return p
}

// OpenSQLite opens (or creates) the database and migrates it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	path = ResolvePath(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("path", path).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id          TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			prediction  REAL NOT NULL,
			confidence  INTEGER NOT NULL,
			timeframe   TEXT NOT NULL,
			trend       TEXT NOT NULL,
			factors     TEXT NOT NULL,
			fallback    INTEGER NOT NULL,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_symbol_ts ON predictions(symbol, created_at)`,
		`CREATE TABLE IF NOT EXISTS kv (
			key         TEXT PRIMARY KEY,
			value       BLOB NOT NULL,
			updated_at  INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordPrediction inserts p.
func (s *SQLiteStore) RecordPrediction(ctx context.Context, p model.Prediction) error {
	factors, err := json.Marshal(p.Factors)
	if err != nil {
		return err
	}
	fallback := 0
	if p.Fallback {
		fallback = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, symbol, prediction, confidence, timeframe, trend, factors, fallback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Symbol, p.Value, p.Confidence, string(p.Timeframe), string(p.Trend), string(factors), fallback, p.LastUpdated.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// Recent returns up to limit predictions for symbol, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, symbol string, limit int) ([]model.Prediction, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, prediction, confidence, timeframe, trend, factors, fallback, created_at
		 FROM predictions WHERE symbol = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := []model.Prediction{}
	for rows.Next() {
		var (
			p         model.Prediction
			timeframe string
			trend     string
			factors   string
			fallback  int
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Value, &p.Confidence, &timeframe, &trend, &factors, &fallback, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal([]byte(factors), &p.Factors); err != nil {
			return nil, fmt.Errorf("decode factors: %w", err)
		}
		p.Timeframe = model.Horizon(timeframe)
		p.Trend = model.Trend(trend)
		p.Fallback = fallback == 1
		p.LastUpdated = time.UnixMilli(createdAt).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetBytes returns the value stored under key, or cache.ErrMiss.
func (s *SQLiteStore) GetBytes(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read kv %s: %w", key, err)
	}
	return val, nil
}

// SetBytes upserts key.
func (s *SQLiteStore) SetBytes(ctx context.Context, key string, val []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, val, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("write kv %s: %w", key, err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
