// Package repository implements the persistence layer: an in-memory store
// that is authoritative for the running process, mirrored best-effort to a
// SQL database (sqlite3 by default, postgres via lib/pq).
//
// Mutations update memory synchronously and enqueue a mirror write; mirror
// failures are logged and never surfaced to the caller. Resume offsets are
// high-frequency, so their mirroring is coalesced and flushed on a timer.
// Corrupt rows found at load time are skipped so a damaged database can
// never keep the application from starting.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cliploop/internal/entity"
)

const (
	timeLayout          = time.RFC3339Nano
	mirrorQueueLen      = 256
	resumeFlushInterval = 2 * time.Second
)

type writeOp struct {
	desc string
	fn   func(*sql.DB) error
	ack  chan struct{}
}

// Store holds the three persisted collections plus resume offsets.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	driver string
	logger *logrus.Logger

	videos     map[string]*entity.Video
	videoOrder []string
	videoSeq   int64

	playlists     map[string]*entity.Playlist
	playlistOrder []string // newest first
	playlistSeq   int64

	collections     map[string]*entity.Collection
	collectionOrder []string
	collectionSeq   int64

	resume map[string]*entity.ResumePoint

	writes      chan writeOp
	resumeMu    sync.Mutex
	resumeDirty map[string]*entity.ResumePoint
	done        chan struct{}
	wg          sync.WaitGroup
}

// Open ensures the schema, loads every collection into memory and starts the
// mirror writer. The returned cleanup flushes pending writes and stops the
// writer.
func Open(ctx context.Context, db *sql.DB, driver string, logger *logrus.Logger) (*Store, func(), error) {
	s := &Store{
		db:          db,
		driver:      driver,
		logger:      logger,
		videos:      make(map[string]*entity.Video),
		playlists:   make(map[string]*entity.Playlist),
		collections: make(map[string]*entity.Collection),
		resume:      make(map[string]*entity.ResumePoint),
		writes:      make(chan writeOp, mirrorQueueLen),
		resumeDirty: make(map[string]*entity.ResumePoint),
		done:        make(chan struct{}),
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	s.loadCollections(ctx)
	s.loadVideos(ctx)
	s.loadPlaylists(ctx)
	s.loadResume(ctx)

	s.wg.Add(1)
	go s.mirrorLoop()

	return s, s.Close, nil
}

// EnsureSchema creates the storage tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return EnsureSchema(ctx, s.db)
}

// EnsureSchema applies the storage schema to db. Exposed separately so the
// db-init command can run it without loading the store.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS videos (
			id TEXT PRIMARY KEY,
			collection_id TEXT NOT NULL,
			filename TEXT NOT NULL DEFAULT '',
			media_type TEXT NOT NULL DEFAULT '',
			mime_type TEXT NOT NULL DEFAULT '',
			size_bytes INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			review_count INTEGER NOT NULL DEFAULT 0,
			date_added TEXT NOT NULL,
			first_play_date TEXT,
			next_review_date TEXT,
			position INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			type TEXT NOT NULL,
			extra INTEGER NOT NULL DEFAULT 0,
			items TEXT NOT NULL DEFAULT '[]',
			last_played_index INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS collections (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS resume_points (
			video_id TEXT PRIMARY KEY,
			pos_seconds REAL NOT NULL DEFAULT 0,
			duration_seconds REAL NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes pending mirror writes and stops the writer goroutine.
func (s *Store) Close() {
	close(s.done)
	s.wg.Wait()
}

// Flush blocks until every mirror write enqueued so far (including coalesced
// resume offsets) has been applied. Used by shutdown paths and tests.
func (s *Store) Flush() {
	s.flushResume()
	ack := make(chan struct{})
	select {
	case s.writes <- writeOp{desc: "flush", ack: ack}:
		<-ack
	case <-s.done:
	}
}

// q rewrites ? placeholders to $n for postgres.
func (s *Store) q(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// enqueue hands a mirror write to the writer goroutine. The in-memory state
// is already updated by the time this runs; a failed mirror write only costs
// durability, not correctness, so it is logged and dropped.
func (s *Store) enqueue(desc string, fn func(*sql.DB) error) {
	select {
	case s.writes <- writeOp{desc: desc, fn: fn}:
	case <-s.done:
	}
}

func (s *Store) apply(op writeOp) {
	if op.fn != nil {
		if err := op.fn(s.db); err != nil {
			s.logger.WithError(err).WithField("op", op.desc).Warn("mirror write failed")
		}
	}
	if op.ack != nil {
		close(op.ack)
	}
}

func (s *Store) mirrorLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(resumeFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case op := <-s.writes:
			s.apply(op)
		case <-ticker.C:
			s.flushResume()
		case <-s.done:
			for {
				select {
				case op := <-s.writes:
					s.apply(op)
				default:
					s.flushResume()
					return
				}
			}
		}
	}
}

// markResumeDirty records a coalesced resume-offset write; only the latest
// value per clip reaches the database.
func (s *Store) markResumeDirty(point *entity.ResumePoint) {
	s.resumeMu.Lock()
	s.resumeDirty[point.VideoID] = point.Clone()
	s.resumeMu.Unlock()
}

func (s *Store) flushResume() {
	s.resumeMu.Lock()
	if len(s.resumeDirty) == 0 {
		s.resumeMu.Unlock()
		return
	}
	dirty := s.resumeDirty
	s.resumeDirty = make(map[string]*entity.ResumePoint)
	s.resumeMu.Unlock()

	for _, point := range dirty {
		if err := s.writeResume(point); err != nil {
			s.logger.WithError(err).WithField("video_id", point.VideoID).Warn("mirror resume offset failed")
		}
	}
}

func (s *Store) writeResume(point *entity.ResumePoint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	if _, err := tx.Exec(s.q(`DELETE FROM resume_points WHERE video_id = ?`), point.VideoID); err != nil {
		return err
	}
	_, err = tx.Exec(
		s.q(`INSERT INTO resume_points (video_id, pos_seconds, duration_seconds, updated_at) VALUES (?, ?, ?, ?)`),
		point.VideoID, point.Position, point.Duration, fmtTime(point.UpdatedAt),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func fmtTime(t time.Time) string {
	return t.Format(timeLayout)
}

func fmtTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(time.Local), nil
}

func parseTimePtr(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
