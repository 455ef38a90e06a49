package live

import (
	"context"
	"iter"

	"github.com/livemind/livemind/pkg/audio/pcm"
)

// Session is an open connection to the conversation service. Both the Gemini
// and the gateway WebSocket implementations satisfy this interface.
type Session interface {
	// Send pushes one outbound media chunk, audio or video. Sends are
	// fire-and-forget: delivery is not acknowledged and a failed send must
	// not stop the capture pumps.
	Send(chunk pcm.Payload) error

	// Events returns an iterator over inbound server events. The iterator
	// ends after a terminal error or Close. Intended to be consumed by a
	// single goroutine.
	Events() iter.Seq2[*ServerEvent, error]

	// Close closes the connection. Safe to call more than once.
	Close() error
}

// ConnectConfig configures one session at connect time.
type ConnectConfig struct {
	// Model is the conversation model. Empty means DefaultModel.
	Model string

	// VoiceName selects the prebuilt voice for audio responses.
	VoiceName string

	// SystemInstruction sets the conversational persona.
	SystemInstruction string
}

// Dialer opens sessions against the conversation service.
type Dialer interface {
	Connect(ctx context.Context, config *ConnectConfig) (Session, error)
}
