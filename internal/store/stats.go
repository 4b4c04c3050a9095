package store

import (
	"context"
	"os"
	"time"

	"github.com/rcliao/core-memory/internal/model"
)

// Stats holds document statistics.
type Stats struct {
	Path        string      `json:"path"`
	SizeBytes   int64       `json:"size_bytes"`
	Total       int         `json:"total_entries"`
	Slots       []SlotStats `json:"slots"`
	LastCreated *time.Time  `json:"last_created,omitempty"`
}

// SlotStats holds per-slot counts.
type SlotStats struct {
	Slot  model.Slot `json:"slot"`
	Count int        `json:"count"`
}

// Stats returns document statistics. Slots are listed in canonical order.
func (s *FileStore) Stats(ctx context.Context) (*Stats, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	st := &Stats{Path: s.path, Total: doc.Len()}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	for _, slot := range model.Slots {
		st.Slots = append(st.Slots, SlotStats{Slot: slot, Count: len(doc[slot])})
		for _, e := range doc[slot] {
			if st.LastCreated == nil || e.Created.After(*st.LastCreated) {
				c := e.Created
				st.LastCreated = &c
			}
		}
	}
	return st, nil
}
