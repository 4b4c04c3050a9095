package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcliao/core-memory/internal/model"
)

// ImportResult counts what an import did.
type ImportResult struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
}

// Import merges doc into the stored document under the usual per-slot dedup.
// Imported entries keep their reason and created time; ids are recomputed from
// the entry text. The document is written once, and only if something was added.
func (s *FileStore) Import(ctx context.Context, doc model.Document) (ImportResult, error) {
	var res ImportResult
	for slot := range doc {
		if !slot.Valid() {
			return res, fmt.Errorf("import: %w %q", ErrInvalidSlot, slot)
		}
	}

	if err := s.acquire(ctx); err != nil {
		return res, err
	}
	defer s.release()

	cur, err := s.read()
	if errors.Is(err, ErrNotInitialized) {
		cur = model.NewDocument()
	} else if err != nil {
		return res, fmt.Errorf("import: %w", err)
	}

	for _, slot := range model.Slots {
		for _, e := range doc[slot] {
			e.Entry, e.Reason = model.CleanText(e.Entry), model.CleanText(e.Reason)
			e.ID = model.Fingerprint(e.Entry)
			if cur.Has(slot, e.ID) {
				res.Duplicates++
				continue
			}
			if e.Created.IsZero() {
				e.Created = s.now()
			}
			e.Created = e.Created.UTC()
			cur.Append(slot, e)
			res.Inserted++
		}
	}

	if res.Inserted == 0 {
		return res, nil
	}
	if err := s.persist(cur); err != nil {
		return ImportResult{}, fmt.Errorf("import: %w", err)
	}
	s.logger.Info("core memory import", "inserted", res.Inserted, "duplicates", res.Duplicates)
	return res, nil
}
