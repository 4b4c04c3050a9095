// Package agent runs conversational turns against the persona and its core memory.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/rcliao/core-memory/internal/classifier"
	"github.com/rcliao/core-memory/internal/convlog"
)

// ErrEmptyMessage is returned by Chat for blank input.
var ErrEmptyMessage = errors.New("empty message")

// SystemPrompter renders the system prompt for a turn.
type SystemPrompter interface {
	System(ctx context.Context) (string, error)
}

// Recorder persists conversation turns.
type Recorder interface {
	Record(ctx context.Context, t convlog.Turn) (*convlog.Turn, error)
}

// Submitter accepts lines for background classification.
type Submitter interface {
	Submit(line string) bool
}

// Options configures an Agent. Recorder and Classifier are optional.
type Options struct {
	Prompter   SystemPrompter
	Generator  classifier.Generator
	Recorder   Recorder
	Classifier Submitter
	Logger     *slog.Logger
}

// Agent holds one chat session.
type Agent struct {
	session   string
	prompter  SystemPrompter
	gen       classifier.Generator
	recorder  Recorder
	submitter Submitter
	logger    *slog.Logger
}

// New creates an agent with a fresh session ID.
func New(opts Options) (*Agent, error) {
	if opts.Prompter == nil || opts.Generator == nil {
		return nil, errors.New("agent requires a prompter and a generator")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	session := uuid.NewString()
	return &Agent{
		session:   session,
		prompter:  opts.Prompter,
		gen:       opts.Generator,
		recorder:  opts.Recorder,
		submitter: opts.Classifier,
		logger:    logger.With("session", session),
	}, nil
}

// Session returns the session ID.
func (a *Agent) Session() string { return a.session }

// Chat produces a reply to text. Recording and classification happen after the
// reply is generated and never fail the turn.
func (a *Agent) Chat(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}

	system, err := a.prompter.System(ctx)
	if err != nil {
		return "", fmt.Errorf("build system prompt: %w", err)
	}

	reply, err := a.gen.Generate(ctx, system, text)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	if a.recorder != nil {
		if _, err := a.recorder.Record(ctx, convlog.Turn{SessionID: a.session, User: text, Reply: reply}); err != nil {
			a.logger.Warn("record turn failed", "err", err)
		}
	}
	if a.submitter != nil {
		a.submitter.Submit(text)
	}
	return reply, nil
}
