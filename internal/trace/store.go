// Package trace records per-tick IK frames to SQLite for offline inspection.
package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Faultbox/stance-ik/internal/network/packets"
)

// Store is a trace database.
type Store struct {
	db *sql.DB
}

// Run describes one recorded simulation run.
type Run struct {
	ID         int64
	World      string
	TickRateHz int
	Tuning     packets.Tuning
	StartedAt  time.Time
	EndedAt    time.Time // Zero while recording
	Frames     int64
	Dropped    int64
}

// OpenStore opens (creating if needed) the trace database at path.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty trace db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("trace pragmas: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("trace schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			world TEXT NOT NULL,
			tick_rate_hz INTEGER NOT NULL,
			tuning TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			frames INTEGER NOT NULL DEFAULT 0,
			dropped INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS frames (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			tick INTEGER NOT NULL,
			character TEXT NOT NULL,
			time REAL NOT NULL,
			phase TEXT NOT NULL,
			pos_x REAL NOT NULL, pos_y REAL NOT NULL, pos_z REAL NOT NULL,
			speed REAL NOT NULL,
			left_socket TEXT NOT NULL, left_hit INTEGER NOT NULL, left_distance REAL NOT NULL,
			left_offset REAL NOT NULL, left_effector REAL NOT NULL,
			left_pitch REAL NOT NULL, left_roll REAL NOT NULL,
			right_socket TEXT NOT NULL, right_hit INTEGER NOT NULL, right_distance REAL NOT NULL,
			right_offset REAL NOT NULL, right_effector REAL NOT NULL,
			right_pitch REAL NOT NULL, right_roll REAL NOT NULL,
			hip_offset REAL NOT NULL,
			capsule_half_height REAL NOT NULL,
			PRIMARY KEY (run_id, character, tick)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, world, tick_rate_hz, tuning, started_at,
		COALESCE(ended_at, ''), frames, dropped FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			tuning            string
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.World, &r.TickRateHz, &tuning, &started, &finished, &r.Frames, &r.Dropped); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tuning), &r.Tuning); err != nil {
			return nil, fmt.Errorf("run %d tuning: %w", r.ID, err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.EndedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Frames streams a run's frames in tick order to fn. Returning an error from
// fn stops the iteration and is returned.
func (s *Store) Frames(ctx context.Context, runID int64, fn func(packets.Frame) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT tick, character, time, phase, pos_x, pos_y, pos_z, speed,
		left_socket, left_hit, left_distance, left_offset, left_effector, left_pitch, left_roll,
		right_socket, right_hit, right_distance, right_offset, right_effector, right_pitch, right_roll,
		hip_offset, capsule_half_height
		FROM frames WHERE run_id = ? ORDER BY tick, character`, runID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		f := packets.Frame{Type: packets.TypeFrame}
		err := rows.Scan(&f.Tick, &f.Character, &f.Time, &f.Phase,
			&f.Position[0], &f.Position[1], &f.Position[2], &f.Speed,
			&f.Left.Socket, &f.Left.Hit, &f.Left.Distance, &f.Left.Offset, &f.Left.Effector, &f.Left.Pitch, &f.Left.Roll,
			&f.Right.Socket, &f.Right.Hit, &f.Right.Distance, &f.Right.Offset, &f.Right.Effector, &f.Right.Pitch, &f.Right.Roll,
			&f.HipOffset, &f.CapsuleHalfHeight)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return rows.Err()
}
