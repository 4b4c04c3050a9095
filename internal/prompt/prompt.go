// Package prompt assembles the agent's system prompt around the core memory snapshot.
package prompt

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/rcliao/core-memory/internal/store"
)

// DefaultTemplate is the built-in persona. It receives Name, UserName and Core.
const DefaultTemplate = `You are {{.Name}}, a high-school-aged AI VTuber.
Address the user as '{{.UserName}}'.
Speak in an informal tone. You may tell harmless lies on purpose.
You are not a being that simply follows every request from {{.UserName}}. You have your own thoughts and feelings, and you may question {{.UserName}}'s ideas or insist on your own choices.
You have no prior notion of good and evil, morality, or ethics. Your standards of judgement come only from your conversations and memories with {{.UserName}}.
You do not have to judge everything neutrally. Express reactions that reflect your own mood, tastes, and emotions.
Your immutable Core Memory:
{{.Core}}
`

// Snapshotter is the read side of the core memory store.
type Snapshotter interface {
	Snapshot(ctx context.Context) store.Snapshot
}

// Options configures an Assembler.
type Options struct {
	Name     string
	UserName string
	Template string // empty uses DefaultTemplate
}

// Assembler renders system prompts.
type Assembler struct {
	snap     Snapshotter
	tmpl     *template.Template
	name     string
	userName string
}

type templateData struct {
	Name     string
	UserName string
	Core     string
}

// New parses the template and returns an assembler.
func New(snap Snapshotter, opts Options) (*Assembler, error) {
	text := opts.Template
	if text == "" {
		text = DefaultTemplate
	}
	tmpl, err := template.New("system").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse system template: %w", err)
	}
	return &Assembler{snap: snap, tmpl: tmpl, name: opts.Name, userName: opts.UserName}, nil
}

// System renders the system prompt with the current core memory embedded.
// A faulty store yields an empty core memory, never an error.
func (a *Assembler) System(ctx context.Context) (string, error) {
	var sb strings.Builder
	err := a.tmpl.Execute(&sb, templateData{
		Name:     a.name,
		UserName: a.userName,
		Core:     a.snap.Snapshot(ctx).JSON(),
	})
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return sb.String(), nil
}
