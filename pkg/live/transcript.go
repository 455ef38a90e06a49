package live

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/livemind/livemind/pkg/archive"
)

// Entry is one finalized transcript utterance. Immutable once created.
type Entry struct {
	ID        string
	Sender    archive.Sender
	Text      string
	CreatedAt time.Time
}

// Accumulator merges streamed partial transcription fragments into per-turn
// utterances. Fragments are concatenated in arrival order; a turn boundary
// finalizes the non-empty buffers and clears both.
type Accumulator struct {
	mu     sync.Mutex
	input  strings.Builder
	output strings.Builder
}

// AddInput appends a fragment of the user's transcription.
func (a *Accumulator) AddInput(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.input.WriteString(text)
}

// AddOutput appends a fragment of the model's transcription.
func (a *Accumulator) AddOutput(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.output.WriteString(text)
}

// Partial returns the live, not yet finalized buffer contents. For display
// only; partial text is never persisted.
func (a *Accumulator) Partial() (input, output string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.input.String(), a.output.String()
}

// CompleteTurn finalizes the current turn. Each non-empty buffer yields one
// Entry, user before model, and both buffers end up empty. A turn with both
// buffers empty yields nothing.
func (a *Accumulator) CompleteTurn() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	var entries []Entry
	now := time.Now()
	if text := a.input.String(); text != "" {
		entries = append(entries, Entry{
			ID:        uuid.NewString(),
			Sender:    archive.SenderUser,
			Text:      text,
			CreatedAt: now,
		})
	}
	if text := a.output.String(); text != "" {
		entries = append(entries, Entry{
			ID:        uuid.NewString(),
			Sender:    archive.SenderModel,
			Text:      text,
			CreatedAt: now,
		})
	}
	a.input.Reset()
	a.output.Reset()
	return entries
}

// Reset discards both buffers without finalizing.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.input.Reset()
	a.output.Reset()
}
