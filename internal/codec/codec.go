// Package codec translates a core memory document to and from its on-disk JSON form.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/rcliao/core-memory/internal/model"
)

// ErrCorruptDocument is returned when bytes do not decode to a structurally valid document.
var ErrCorruptDocument = errors.New("corrupt document")

type wireEntry struct {
	ID      string `json:"id"`
	Entry   string `json:"entry"`
	Reason  string `json:"reason"`
	Created string `json:"created"`
}

// wireDocument fixes the slot order of the encoded form.
type wireDocument struct {
	Identity    []wireEntry `json:"identity"`
	Preferences []wireEntry `json:"preferences"`
	Ethics      []wireEntry `json:"ethics"`
	Values      []wireEntry `json:"values"`
	Ideology    []wireEntry `json:"ideology"`
	Boundaries  []wireEntry `json:"boundaries"`
}

func (w *wireDocument) slot(s model.Slot) *[]wireEntry {
	switch s {
	case model.SlotIdentity:
		return &w.Identity
	case model.SlotPreferences:
		return &w.Preferences
	case model.SlotEthics:
		return &w.Ethics
	case model.SlotValues:
		return &w.Values
	case model.SlotIdeology:
		return &w.Ideology
	case model.SlotBoundaries:
		return &w.Boundaries
	}
	return nil
}

// Empty returns the canonical empty document.
func Empty() []byte {
	b, _ := Encode(model.NewDocument())
	return b
}

// Encode renders doc as indented JSON with slots in canonical order.
func Encode(doc model.Document) ([]byte, error) {
	var w wireDocument
	for _, s := range model.Slots {
		*w.slot(s) = []wireEntry{}
	}
	for s, entries := range doc {
		dst := w.slot(s)
		if dst == nil {
			return nil, fmt.Errorf("encode: %w %q", model.ErrInvalidSlot, s)
		}
		for _, e := range entries {
			*dst = append(*dst, wireEntry{
				ID:      e.ID,
				Entry:   e.Entry,
				Reason:  e.Reason,
				Created: e.Created.UTC().Format(model.TimeLayout),
			})
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&w); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses b into a document. Missing or unknown slot keys are an error;
// defaults are never filled in, so a partial write is caught here.
func Decode(b []byte) (model.Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: top level is not an object", ErrCorruptDocument)
	}
	for key := range raw {
		if !model.Slot(key).Valid() {
			return nil, fmt.Errorf("%w: unknown slot %q", ErrCorruptDocument, key)
		}
	}

	doc := make(model.Document, len(model.Slots))
	for _, s := range model.Slots {
		msg, ok := raw[string(s)]
		if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			return nil, fmt.Errorf("%w: missing slot %q", ErrCorruptDocument, s)
		}
		var wire []wireEntry
		if err := json.Unmarshal(msg, &wire); err != nil {
			return nil, fmt.Errorf("%w: slot %q: %v", ErrCorruptDocument, s, err)
		}
		entries := make([]model.Entry, 0, len(wire))
		seen := make(map[string]bool, len(wire))
		for i, w := range wire {
			if w.ID == "" {
				return nil, fmt.Errorf("%w: slot %q entry %d: missing id", ErrCorruptDocument, s, i)
			}
			if seen[w.ID] {
				return nil, fmt.Errorf("%w: slot %q entry %d: repeated id %s", ErrCorruptDocument, s, i, w.ID)
			}
			seen[w.ID] = true
			created, err := time.Parse(time.RFC3339, w.Created)
			if err != nil {
				return nil, fmt.Errorf("%w: slot %q entry %d: created: %v", ErrCorruptDocument, s, i, err)
			}
			entries = append(entries, model.Entry{
				ID:      w.ID,
				Entry:   w.Entry,
				Reason:  w.Reason,
				Created: created.UTC().Truncate(time.Second),
			})
		}
		doc[s] = entries
	}
	return doc, nil
}
