package live

// Server event types received over the transport.
const (
	// EventTypeInputTranscription carries a partial transcription fragment
	// of the user's speech.
	EventTypeInputTranscription = "input_transcription"

	// EventTypeOutputTranscription carries a partial transcription fragment
	// of the model's speech.
	EventTypeOutputTranscription = "output_transcription"

	// EventTypeAudio carries one encoded audio output chunk.
	EventTypeAudio = "audio"

	// EventTypeTurnComplete marks the end of one input/output exchange.
	EventTypeTurnComplete = "turn_complete"

	// EventTypeInterrupted signals that the model was interrupted and any
	// scheduled playback is stale.
	EventTypeInterrupted = "interrupted"

	// EventTypeError carries a transport runtime error.
	EventTypeError = "error"

	// EventTypeClosed signals a graceful transport close.
	EventTypeClosed = "closed"
)

// ServerEvent is one inbound event from the conversation service.
type ServerEvent struct {
	// Type is the event type, one of the EventType constants.
	Type string `json:"type"`

	// Text is the transcription fragment for transcription events.
	Text string `json:"text,omitempty"`

	// Data is the base64-encoded PCM payload for audio events.
	Data string `json:"data,omitempty"`

	// MIMEType describes Data for audio events.
	MIMEType string `json:"mimeType,omitempty"`

	// Message is the error text for error events.
	Message string `json:"message,omitempty"`
}
