// Package classifier decides which lines of conversation become core memory.
//
// A Profiler asks a Generator whether a line deserves to be remembered and, if so,
// upserts the proposed (slot, entry, reason) into the store. A Worker runs the
// profiler out of band so conversational turns never wait on classification.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rcliao/core-memory/internal/metrics"
	"github.com/rcliao/core-memory/internal/model"
	"github.com/rcliao/core-memory/internal/store"
)

// Generator produces a text completion for a system prompt and a user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Upserter is the write side of the core memory store.
type Upserter interface {
	Upsert(ctx context.Context, slot model.Slot, entry, reason string) (store.Result, error)
}

// Proposal is a candidate memory entry.
type Proposal struct {
	Slot   model.Slot `json:"slot"`
	Entry  string     `json:"entry"`
	Reason string     `json:"reason"`
}

// Outcome reports what Process did with a line.
type Outcome string

const (
	OutcomeStored    Outcome = "stored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeError     Outcome = "error"
	OutcomeDropped   Outcome = "dropped"
)

// Prompt returns the classification instructions.
func Prompt() string {
	slots := make([]string, len(model.Slots))
	for i, s := range model.Slots {
		slots[i] = string(s)
	}
	return `You are Profiler. Decide whether the user's line should become lasting core memory.
Record a memory only if it is important and relevant to identity, preferences, ethics, values, ideology, or boundaries.

Respond ONLY with JSON in this format:
{
  "slot": "<one of ` + strings.Join(slots, ", ") + ` or null>",
  "entry": "<concise memory, or empty>",
  "reason": "<why>"
}`
}

type rawProposal struct {
	Slot   *string `json:"slot"`
	Entry  string  `json:"entry"`
	Reason string  `json:"reason"`
}

// ParseProposal extracts a proposal from a model response. It returns false when
// the response says nothing should be stored.
func ParseProposal(text string) (Proposal, bool, error) {
	body := stripFence(strings.TrimSpace(text))
	if body == "" {
		return Proposal{}, false, errors.New("empty response")
	}

	var raw rawProposal
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Proposal{}, false, fmt.Errorf("parse response: %w", err)
	}

	if raw.Slot == nil || *raw.Slot == "" || *raw.Slot == "null" {
		return Proposal{}, false, nil
	}
	entry := strings.TrimSpace(raw.Entry)
	reason := strings.TrimSpace(raw.Reason)
	if entry == "" || reason == "" {
		return Proposal{}, false, nil
	}
	slot, err := model.ParseSlot(strings.ToLower(strings.TrimSpace(*raw.Slot)))
	if err != nil {
		return Proposal{}, false, err
	}
	return Proposal{Slot: slot, Entry: entry, Reason: reason}, true, nil
}

// stripFence returns the contents of a ```json or ``` block if present.
func stripFence(s string) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return s
	}
	rest := s[start+3:]
	rest = strings.TrimPrefix(rest, "json")
	if end := strings.Index(rest, "```"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// Profiler classifies lines and stores the resulting proposals.
type Profiler struct {
	gen    Generator
	store  Upserter
	logger *slog.Logger
}

// NewProfiler creates a profiler.
func NewProfiler(gen Generator, st Upserter, logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiler{gen: gen, store: st, logger: logger}
}

// Classify asks the generator about line without storing anything.
func (p *Profiler) Classify(ctx context.Context, line string) (Proposal, bool, error) {
	resp, err := p.gen.Generate(ctx, Prompt(), "Line: "+line)
	if err != nil {
		return Proposal{}, false, fmt.Errorf("generate: %w", err)
	}
	return ParseProposal(resp)
}

// Process classifies line and upserts the proposal, if any. Store errors are
// returned so the caller can decide what to do with the lost proposal.
func (p *Profiler) Process(ctx context.Context, line string) (Outcome, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		metrics.Classifications.WithLabelValues(string(OutcomeSkipped)).Inc()
		return OutcomeSkipped, nil
	}

	prop, ok, err := p.Classify(ctx, line)
	if err != nil {
		metrics.Classifications.WithLabelValues(string(OutcomeError)).Inc()
		return OutcomeError, err
	}
	if !ok {
		p.logger.Debug("line not stored", "line", line)
		metrics.Classifications.WithLabelValues(string(OutcomeSkipped)).Inc()
		return OutcomeSkipped, nil
	}

	res, err := p.store.Upsert(ctx, prop.Slot, prop.Entry, prop.Reason)
	if err != nil {
		metrics.Classifications.WithLabelValues(string(OutcomeError)).Inc()
		return OutcomeError, fmt.Errorf("store proposal: %w", err)
	}

	outcome := OutcomeStored
	if res == store.Duplicate {
		outcome = OutcomeDuplicate
	}
	p.logger.Info("core memory proposal", "slot", prop.Slot, "entry", prop.Entry, "result", res)
	metrics.Classifications.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}
