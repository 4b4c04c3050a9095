package classifier

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/core-memory/internal/model"
	"github.com/rcliao/core-memory/internal/store"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, user)
	return f.reply, f.err
}

func newStore(t *testing.T) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(store.Options{Path: filepath.Join(t.TempDir(), "core_memory.json")})
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestPromptListsAllSlots(t *testing.T) {
	p := Prompt()
	for _, s := range model.Slots {
		assert.Contains(t, p, string(s))
	}
}

func TestParseProposal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Proposal
		ok      bool
		wantErr bool
	}{
		{
			name: "plain json",
			in:   `{"slot":"preferences","entry":"좋아하는 음식은 떡볶이","reason":"user stated a food preference"}`,
			want: Proposal{Slot: model.SlotPreferences, Entry: "좋아하는 음식은 떡볶이", Reason: "user stated a food preference"},
			ok:   true,
		},
		{
			name: "json fence",
			in:   "Sure!\n```json\n{\"slot\":\"ethics\",\"entry\":\"never mock Abu\",\"reason\":\"asked\"}\n```\n",
			want: Proposal{Slot: model.SlotEthics, Entry: "never mock Abu", Reason: "asked"},
			ok:   true,
		},
		{
			name: "bare fence",
			in:   "```\n{\"slot\":\"Values\",\"entry\":\"family first\",\"reason\":\"said so\"}\n```",
			want: Proposal{Slot: model.SlotValues, Entry: "family first", Reason: "said so"},
			ok:   true,
		},
		{
			name: "unterminated fence",
			in:   "```json\n{\"slot\":\"identity\",\"entry\":\"is a student\",\"reason\":\"intro\"}",
			want: Proposal{Slot: model.SlotIdentity, Entry: "is a student", Reason: "intro"},
			ok:   true,
		},
		{name: "null slot", in: `{"slot":null,"entry":"","reason":"small talk"}`},
		{name: "string null slot", in: `{"slot":"null","entry":"x","reason":"y"}`},
		{name: "empty entry", in: `{"slot":"identity","entry":"  ","reason":"y"}`},
		{name: "empty reason", in: `{"slot":"identity","entry":"x","reason":""}`},
		{name: "unknown slot", in: `{"slot":"hobbies","entry":"x","reason":"y"}`, wantErr: true},
		{name: "not json", in: `I think this should be stored`, wantErr: true},
		{name: "empty", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseProposal(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProposalUnknownSlotIsInvalidSlot(t *testing.T) {
	_, _, err := ParseProposal(`{"slot":"hobbies","entry":"x","reason":"y"}`)
	assert.ErrorIs(t, err, model.ErrInvalidSlot)
}

func TestProcessStoresProposal(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	gen := &fakeGenerator{reply: `{"slot":"preferences","entry":"likes tteokbokki","reason":"food preference"}`}
	p := NewProfiler(gen, s, nil)

	outcome, err := p.Process(ctx, "I love tteokbokki")
	require.NoError(t, err)
	assert.Equal(t, OutcomeStored, outcome)
	assert.Equal(t, []string{"Line: I love tteokbokki"}, gen.prompts)

	outcome, err = p.Process(ctx, "Tteokbokki is the best")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	assert.Equal(t, []string{"likes tteokbokki"}, s.Snapshot(ctx)[model.SlotPreferences])
}

func TestProcessSkips(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	gen := &fakeGenerator{reply: `{"slot":null,"entry":"","reason":"greeting"}`}
	p := NewProfiler(gen, s, nil)

	outcome, err := p.Process(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	outcome, err = p.Process(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Len(t, gen.prompts, 1, "blank lines never reach the generator")
}

func TestProcessGeneratorError(t *testing.T) {
	p := NewProfiler(&fakeGenerator{err: errors.New("rate limited")}, newStore(t), nil)
	outcome, err := p.Process(context.Background(), "hello")
	assert.Error(t, err)
	assert.Equal(t, OutcomeError, outcome)
}

type failingStore struct{ err error }

func (f failingStore) Upsert(context.Context, model.Slot, string, string) (store.Result, error) {
	return 0, f.err
}

func TestProcessPropagatesStoreError(t *testing.T) {
	gen := &fakeGenerator{reply: `{"slot":"identity","entry":"x","reason":"y"}`}
	p := NewProfiler(gen, failingStore{err: store.ErrCorruptDocument}, nil)

	outcome, err := p.Process(context.Background(), "I am x")
	assert.ErrorIs(t, err, store.ErrCorruptDocument)
	assert.Equal(t, OutcomeError, outcome)
}
