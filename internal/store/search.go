package store

import (
	"context"
	"strings"

	"github.com/rcliao/core-memory/internal/model"
)

// SearchParams holds parameters for searching entries.
type SearchParams struct {
	Query string
	Slot  model.Slot // empty means all slots
	Limit int
}

// SearchResult is a matching entry together with its slot.
type SearchResult struct {
	Slot model.Slot `json:"slot"`
	model.Entry
}

// Search finds entries whose text or reason contains the query, case-insensitively.
// Results follow document order.
func (s *FileStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	if p.Slot != "" && !p.Slot.Valid() {
		return nil, ErrInvalidSlot
	}

	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(p.Query)
	var results []SearchResult
	for _, slot := range model.Slots {
		if p.Slot != "" && slot != p.Slot {
			continue
		}
		for _, e := range doc[slot] {
			if !strings.Contains(strings.ToLower(e.Entry), q) && !strings.Contains(strings.ToLower(e.Reason), q) {
				continue
			}
			results = append(results, SearchResult{Slot: slot, Entry: e})
			if len(results) == limit {
				return results, nil
			}
		}
	}
	return results, nil
}
