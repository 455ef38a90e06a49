package live

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/gorilla/websocket"
	"google.golang.org/genai"

	"github.com/livemind/livemind/pkg/audio/pcm"
)

// GeminiDialer opens live sessions against the Gemini API.
type GeminiDialer struct {
	client *genai.Client
}

// NewGeminiDialer creates a dialer authenticated with the given API key.
func NewGeminiDialer(ctx context.Context, apiKey string) (*GeminiDialer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("live: create client: %w", err)
	}
	return &GeminiDialer{client: client}, nil
}

// Connect opens one live session.
func (d *GeminiDialer) Connect(ctx context.Context, config *ConnectConfig) (Session, error) {
	if config == nil {
		config = &ConnectConfig{}
	}
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.LiveConnectConfig{
		ResponseModalities:       []genai.Modality{genai.ModalityAudio},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if config.VoiceName != "" {
		cc.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: config.VoiceName},
			},
		}
	}
	if config.SystemInstruction != "" {
		cc.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: config.SystemInstruction}},
		}
	}

	raw, err := d.client.Live.Connect(ctx, model, cc)
	if err != nil {
		return nil, fmt.Errorf("live: connect: %w", err)
	}

	s := &geminiSession{
		raw:      raw,
		closeCh:  make(chan struct{}),
		eventsCh: make(chan eventOrError, 100),
	}
	go s.readLoop()
	return s, nil
}

type eventOrError struct {
	event *ServerEvent
	err   error
}

// geminiSession adapts a raw Gemini live session to the Session interface.
type geminiSession struct {
	raw       *genai.Session
	closeCh   chan struct{}
	eventsCh  chan eventOrError
	closeOnce sync.Once
}

// Send pushes one media chunk. The payload's base64 data is decoded here;
// the SDK re-encodes it on the wire.
func (s *geminiSession) Send(chunk pcm.Payload) error {
	data, err := base64.StdEncoding.DecodeString(chunk.Data)
	if err != nil {
		return fmt.Errorf("live: bad chunk data: %w", err)
	}
	return s.raw.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: data, MIMEType: chunk.MIMEType},
	})
}

// Events returns an iterator over server events. Once the session is locally
// closed nothing more is yielded, even if a buffered read error is still
// queued.
func (s *geminiSession) Events() iter.Seq2[*ServerEvent, error] {
	return func(yield func(*ServerEvent, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.eventsCh:
				if !ok {
					return
				}
				select {
				case <-s.closeCh:
					return
				default:
				}
				if !yield(item.event, item.err) {
					return
				}
				if item.err != nil {
					return
				}
			}
		}
	}
}

// Close closes the session.
func (s *geminiSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.raw.Close()
	})
	return err
}

func (s *geminiSession) readLoop() {
	defer close(s.eventsCh)
	for {
		msg, err := s.raw.Receive()
		if err != nil {
			item := eventOrError{err: err}
			if isNormalClose(err) {
				item = eventOrError{event: &ServerEvent{Type: EventTypeClosed}}
			}
			select {
			case s.eventsCh <- item:
			case <-s.closeCh:
			}
			return
		}
		for _, ev := range translateServerMessage(msg) {
			select {
			case s.eventsCh <- eventOrError{event: ev}:
			case <-s.closeCh:
				return
			}
		}
	}
}

// isNormalClose reports whether a Receive error is the server hanging up
// cleanly rather than a failure.
func isNormalClose(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway
	}
	return false
}

// translateServerMessage flattens one wire message into the discriminated
// event stream the controller consumes. A single message may carry several
// events; their relative order here is the processing order downstream.
func translateServerMessage(msg *genai.LiveServerMessage) []*ServerEvent {
	sc := msg.ServerContent
	if sc == nil {
		return nil
	}
	var events []*ServerEvent
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		events = append(events, &ServerEvent{
			Type: EventTypeInputTranscription,
			Text: sc.InputTranscription.Text,
		})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		events = append(events, &ServerEvent{
			Type: EventTypeOutputTranscription,
			Text: sc.OutputTranscription.Text,
		})
	}
	if sc.TurnComplete {
		events = append(events, &ServerEvent{Type: EventTypeTurnComplete})
	}
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			events = append(events, &ServerEvent{
				Type:     EventTypeAudio,
				Data:     base64.StdEncoding.EncodeToString(part.InlineData.Data),
				MIMEType: part.InlineData.MIMEType,
			})
		}
	}
	if sc.Interrupted {
		events = append(events, &ServerEvent{Type: EventTypeInterrupted})
	}
	return events
}
