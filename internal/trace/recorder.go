package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/stance-ik/internal/network/packets"
)

const (
	batchSize     = 512
	flushInterval = 250 * time.Millisecond
	queueSize     = 16384
)

// RunMeta identifies a run when it starts recording.
type RunMeta struct {
	World      string
	TickRateHz int
	Tuning     packets.Tuning
}

// Recorder appends one run's frames to a Store from a background writer,
// so the simulation never waits on disk.
type Recorder struct {
	store *Store
	runID int64
	log   *zap.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan packets.Frame
	wg     sync.WaitGroup

	written atomic.Int64
	dropped atomic.Int64
}

// StartRun registers a new run and starts its writer. A nil logger discards output.
func (s *Store) StartRun(ctx context.Context, meta RunMeta, log *zap.Logger) (*Recorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tuning, err := json.Marshal(meta.Tuning)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (world, tick_rate_hz, tuning, started_at) VALUES (?, ?, ?, ?)`,
		meta.World, meta.TickRateHz, string(tuning), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		store: s,
		runID: id,
		log:   log.With(zap.Int64("run", id)),
		ch:    make(chan packets.Frame, queueSize),
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.loop()
	}()
	return r, nil
}

// RunID returns the id of the run being recorded.
func (r *Recorder) RunID() int64 {
	return r.runID
}

// Publish queues a frame. Frames are dropped when the queue is full or the
// recorder is closed.
func (r *Recorder) Publish(f packets.Frame) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}
	select {
	case r.ch <- f:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many frames were not recorded.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close flushes queued frames and finalizes the run row. It does not close the Store.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()

	r.wg.Wait()

	_, err := r.store.db.Exec(`UPDATE runs SET ended_at = ?, frames = ?, dropped = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), r.written.Load(), r.dropped.Load(), r.runID)
	if err != nil {
		return fmt.Errorf("finalize run %d: %w", r.runID, err)
	}
	r.log.Info("trace run closed",
		zap.Int64("frames", r.written.Load()),
		zap.Int64("dropped", r.dropped.Load()))
	return nil
}

func (r *Recorder) loop() {
	batch := make([]packets.Frame, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.insert(batch); err != nil {
			r.log.Warn("trace write failed", zap.Int("frames", len(batch)), zap.Error(err))
			r.dropped.Add(int64(len(batch)))
		} else {
			r.written.Add(int64(len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case f, ok := <-r.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, f)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (r *Recorder) insert(frames []packets.Frame) error {
	tx, err := r.store.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO frames (run_id, tick, character, time, phase,
		pos_x, pos_y, pos_z, speed,
		left_socket, left_hit, left_distance, left_offset, left_effector, left_pitch, left_roll,
		right_socket, right_hit, right_distance, right_offset, right_effector, right_pitch, right_roll,
		hip_offset, capsule_half_height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, f := range frames {
		_, err := stmt.Exec(r.runID, int64(f.Tick), f.Character, f.Time, f.Phase,
			f.Position[0], f.Position[1], f.Position[2], f.Speed,
			f.Left.Socket, boolInt(f.Left.Hit), f.Left.Distance, f.Left.Offset, f.Left.Effector, f.Left.Pitch, f.Left.Roll,
			f.Right.Socket, boolInt(f.Right.Hit), f.Right.Distance, f.Right.Offset, f.Right.Effector, f.Right.Pitch, f.Right.Roll,
			f.HipOffset, f.CapsuleHalfHeight)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
