package store

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rcliao/core-memory/internal/model"
)

// Snapshot is the text-only projection of the document used for prompt embedding.
// It always holds all six slots.
type Snapshot map[model.Slot][]string

// EmptySnapshot returns a snapshot with every slot present and empty.
func EmptySnapshot() Snapshot {
	s := make(Snapshot, len(model.Slots))
	for _, slot := range model.Slots {
		s[slot] = []string{}
	}
	return s
}

func project(doc model.Document) Snapshot {
	s := EmptySnapshot()
	for _, slot := range model.Slots {
		for _, e := range doc[slot] {
			s[slot] = append(s[slot], e.Entry)
		}
	}
	return s
}

type snapshotWire struct {
	Identity    []string `json:"identity"`
	Preferences []string `json:"preferences"`
	Ethics      []string `json:"ethics"`
	Values      []string `json:"values"`
	Ideology    []string `json:"ideology"`
	Boundaries  []string `json:"boundaries"`
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// emptySnapshotJSON is what JSON returns if encoding ever fails.
const emptySnapshotJSON = `{"identity":[],"preferences":[],"ethics":[],"values":[],"ideology":[],"boundaries":[]}`

// MarshalJSON encodes the snapshot compactly with slots in canonical order and
// markup left unescaped.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(snapshotWire{
		Identity:    orEmpty(s[model.SlotIdentity]),
		Preferences: orEmpty(s[model.SlotPreferences]),
		Ethics:      orEmpty(s[model.SlotEthics]),
		Values:      orEmpty(s[model.SlotValues]),
		Ideology:    orEmpty(s[model.SlotIdeology]),
		Boundaries:  orEmpty(s[model.SlotBoundaries]),
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// JSON renders the snapshot for prompt embedding. It falls back to six empty
// slots if the snapshot cannot be encoded, matching how reads degrade.
func (s Snapshot) JSON() string {
	b, err := s.MarshalJSON()
	if err != nil {
		return emptySnapshotJSON
	}
	return string(b)
}
