// Package store provides the core memory store interface and its file-backed implementation.
//
// All operations on a FileStore are serialized by one in-process lock. That lock does
// not protect against a second process opening the same path: writes still replace the
// file atomically, so the document never becomes structurally invalid, but two processes
// whose load/decide windows overlap can each append the same entry.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/core-memory/internal/codec"
	"github.com/rcliao/core-memory/internal/model"
)

var (
	// ErrCorruptDocument is returned when the document on disk cannot be decoded.
	ErrCorruptDocument = codec.ErrCorruptDocument

	// ErrInvalidSlot is returned for a slot outside the six fixed categories.
	ErrInvalidSlot = model.ErrInvalidSlot

	// ErrIO is returned when the backing file cannot be read or written.
	ErrIO = errors.New("io failure")

	// ErrNotInitialized is returned by Load when no document exists yet.
	ErrNotInitialized = errors.New("document not initialized")

	// ErrLockTimeout is returned when the store lock is not acquired in time.
	ErrLockTimeout = errors.New("store lock timeout")
)

// Result reports what an upsert did.
type Result int

const (
	Inserted Result = iota + 1
	Duplicate
)

func (r Result) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Store defines the core memory interface.
type Store interface {
	// Initialize writes the empty document if none exists. Safe to call repeatedly.
	Initialize(ctx context.Context) error

	// Upsert appends entry to slot unless the slot already holds the same text.
	Upsert(ctx context.Context, slot model.Slot, entry, reason string) (Result, error)

	// Snapshot returns the entry text of every slot. It never fails; on any
	// load error it returns the empty snapshot.
	Snapshot(ctx context.Context) Snapshot

	// Load returns the full document including metadata.
	Load(ctx context.Context) (model.Document, error)
}
