package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rcliao/core-memory/internal/codec"
	"github.com/rcliao/core-memory/internal/metrics"
	"github.com/rcliao/core-memory/internal/model"
)

// DefaultLockTimeout bounds how long an operation waits for the store lock.
const DefaultLockTimeout = 5 * time.Second

// Options configures a FileStore.
type Options struct {
	Path        string
	LockTimeout time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

// FileStore implements Store over a single JSON document on disk.
type FileStore struct {
	path        string
	lockTimeout time.Duration
	lock        chan struct{}
	logger      *slog.Logger
	now         func() time.Time
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store for the document at opts.Path. It does not touch
// the filesystem; call Initialize to create the document.
func NewFileStore(opts Options) (*FileStore, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	s := &FileStore{
		path:        opts.Path,
		lockTimeout: opts.LockTimeout,
		lock:        make(chan struct{}, 1),
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if s.lockTimeout <= 0 {
		s.lockTimeout = DefaultLockTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Path returns the document path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) acquire(ctx context.Context) error {
	select {
	case s.lock <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case s.lock <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrLockTimeout, s.lockTimeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
	}
}

func (s *FileStore) release() {
	<-s.lock
}

func (s *FileStore) Initialize(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create store dir: %w", ErrIO, err)
	}
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %w", ErrIO, s.path, err)
	}
	if err := s.persist(model.NewDocument()); err != nil {
		return err
	}
	s.logger.Info("core memory initialized", "path", s.path)
	return nil
}

func (s *FileStore) Upsert(ctx context.Context, slot model.Slot, entry, reason string) (Result, error) {
	if !slot.Valid() {
		metrics.Upserts.WithLabelValues("invalid", "error").Inc()
		return 0, fmt.Errorf("upsert: %w %q", ErrInvalidSlot, slot)
	}
	res, err := s.upsert(ctx, slot, entry, reason)
	if err != nil {
		metrics.Upserts.WithLabelValues(string(slot), "error").Inc()
		return 0, err
	}
	metrics.Upserts.WithLabelValues(string(slot), res.String()).Inc()
	return res, nil
}

func (s *FileStore) upsert(ctx context.Context, slot model.Slot, entry, reason string) (Result, error) {
	if err := s.acquire(ctx); err != nil {
		return 0, err
	}
	defer s.release()

	entry, reason = model.CleanText(entry), model.CleanText(reason)

	doc, err := s.read()
	if errors.Is(err, ErrNotInitialized) {
		doc = model.NewDocument()
	} else if err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}

	if doc.Has(slot, model.Fingerprint(entry)) {
		return Duplicate, nil
	}
	doc.Append(slot, model.NewEntry(entry, reason, s.now()))
	if err := s.persist(doc); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	s.logger.Debug("core memory entry stored", "slot", slot, "entries", len(doc[slot]))
	return Inserted, nil
}

func (s *FileStore) Snapshot(ctx context.Context) Snapshot {
	if err := s.acquire(ctx); err != nil {
		s.logger.Warn("core memory snapshot degraded to empty", "path", s.path, "err", err)
		metrics.Snapshots.WithLabelValues("degraded").Inc()
		return EmptySnapshot()
	}
	defer s.release()

	doc, err := s.read()
	if err != nil {
		if errors.Is(err, ErrNotInitialized) {
			s.logger.Debug("core memory not initialized, using empty snapshot", "path", s.path)
		} else {
			s.logger.Warn("core memory snapshot degraded to empty", "path", s.path, "err", err)
		}
		metrics.Snapshots.WithLabelValues("degraded").Inc()
		return EmptySnapshot()
	}
	metrics.Snapshots.WithLabelValues("ok").Inc()
	return project(doc)
}

// Load returns the full document. Unlike Snapshot it reports why a document
// could not be read: ErrNotInitialized, ErrCorruptDocument or ErrIO.
func (s *FileStore) Load(ctx context.Context) (model.Document, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()
	return s.read()
}

// read loads and decodes the document. Caller must hold the lock.
func (s *FileStore) read() (model.Document, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}
	doc, err := codec.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc, nil
}

// persist encodes doc and atomically replaces the document. Caller must hold the lock.
func (s *FileStore) persist(doc model.Document) error {
	start := time.Now()
	b, err := codec.Encode(doc)
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path, b); err != nil {
		return err
	}
	metrics.PersistDuration.Observe(time.Since(start).Seconds())
	return nil
}

// writeAtomic writes data to a temp file beside path and renames it over path,
// so readers see either the old or the new file, never a partial one.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrIO, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write temp file: %w", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: sync temp file: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %w", ErrIO, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: chmod temp file: %w", ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: atomic rename %s: %w", ErrIO, path, err)
	}

	// Best effort: make the rename itself durable.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}
