// Package model defines the core memory data types.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidSlot is returned for a slot outside the six fixed categories.
var ErrInvalidSlot = errors.New("invalid slot")

// Slot is one of the fixed categories that partition core memory.
type Slot string

const (
	SlotIdentity    Slot = "identity"
	SlotPreferences Slot = "preferences"
	SlotEthics      Slot = "ethics"
	SlotValues      Slot = "values"
	SlotIdeology    Slot = "ideology"
	SlotBoundaries  Slot = "boundaries"
)

// Slots lists every slot in canonical document order.
var Slots = []Slot{
	SlotIdentity,
	SlotPreferences,
	SlotEthics,
	SlotValues,
	SlotIdeology,
	SlotBoundaries,
}

// ValidSlots are the allowed slot names.
var ValidSlots = map[Slot]bool{
	SlotIdentity:    true,
	SlotPreferences: true,
	SlotEthics:      true,
	SlotValues:      true,
	SlotIdeology:    true,
	SlotBoundaries:  true,
}

// Valid reports whether s is one of the six slots.
func (s Slot) Valid() bool { return ValidSlots[s] }

// ParseSlot converts a raw string into a Slot.
func ParseSlot(raw string) (Slot, error) {
	s := Slot(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w %q (valid: identity, preferences, ethics, values, ideology, boundaries)", ErrInvalidSlot, raw)
	}
	return s, nil
}

// TimeLayout is the on-disk layout of Entry.Created.
const TimeLayout = "2006-01-02T15:04:05Z"

// Entry is one remembered fact within a slot.
type Entry struct {
	ID      string    `json:"id"`
	Entry   string    `json:"entry"`
	Reason  string    `json:"reason"`
	Created time.Time `json:"created"`
}

// NewEntry builds an entry stamped at now, truncated to UTC seconds.
func NewEntry(text, reason string, now time.Time) Entry {
	return Entry{
		ID:      Fingerprint(text),
		Entry:   text,
		Reason:  reason,
		Created: now.UTC().Truncate(time.Second),
	}
}

// CleanText replaces invalid UTF-8 with U+FFFD, the same substitution the JSON
// encoder makes on write. Text must be cleaned before it is fingerprinted.
func CleanText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// Fingerprint is the dedup key of an entry: hex SHA-256 of its text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Document maps every slot to its append-only list of entries.
type Document map[Slot][]Entry

// NewDocument returns a document with all six slots present and empty.
func NewDocument() Document {
	d := make(Document, len(Slots))
	for _, s := range Slots {
		d[s] = []Entry{}
	}
	return d
}

// Has reports whether slot already holds an entry with the given id.
func (d Document) Has(slot Slot, id string) bool {
	for _, e := range d[slot] {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Append adds e to the end of slot.
func (d Document) Append(slot Slot, e Entry) {
	d[slot] = append(d[slot], e)
}

// Len returns the total number of entries across all slots.
func (d Document) Len() int {
	n := 0
	for _, entries := range d {
		n += len(entries)
	}
	return n
}
