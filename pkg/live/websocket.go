package live

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livemind/livemind/pkg/audio/pcm"
)

// WebSocketDialer opens live sessions against a self-hosted gateway speaking
// the JSON event protocol. It is the transport used when Gemini access is
// proxied through an intermediary instead of hit directly.
type WebSocketDialer struct {
	// URL is the gateway WebSocket endpoint, e.g. "wss://host/v1/live".
	URL string

	// APIKey is sent as a bearer token on the handshake.
	APIKey string

	// HandshakeTimeout bounds the dial. Zero means 15 seconds.
	HandshakeTimeout time.Duration
}

// helloFrame is the first client frame after the handshake.
type helloFrame struct {
	Type              string `json:"type"`
	Model             string `json:"model,omitempty"`
	VoiceName         string `json:"voiceName,omitempty"`
	SystemInstruction string `json:"systemInstruction,omitempty"`
}

// mediaFrame is one outbound media chunk.
type mediaFrame struct {
	Type     string `json:"type"`
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Connect dials the gateway and sends the session hello.
func (d *WebSocketDialer) Connect(ctx context.Context, config *ConnectConfig) (Session, error) {
	if config == nil {
		config = &ConnectConfig{}
	}

	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}

	headers := http.Header{}
	if d.APIKey != "" {
		headers.Set("Authorization", "Bearer "+d.APIKey)
	}

	conn, _, err := dialer.DialContext(ctx, d.URL, headers)
	if err != nil {
		return nil, fmt.Errorf("live: dial %s: %w", d.URL, err)
	}

	s := &wsSession{
		conn:     conn,
		closeCh:  make(chan struct{}),
		eventsCh: make(chan eventOrError, 100),
	}
	if err := s.sendJSON(helloFrame{
		Type:              "hello",
		Model:             config.Model,
		VoiceName:         config.VoiceName,
		SystemInstruction: config.SystemInstruction,
	}); err != nil {
		conn.Close()
		return nil, err
	}

	go s.readLoop()
	return s, nil
}

// wsSession is a WebSocket-based live session.
type wsSession struct {
	conn      *websocket.Conn
	closeCh   chan struct{}
	eventsCh  chan eventOrError
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// Send pushes one media chunk as a JSON frame.
func (s *wsSession) Send(chunk pcm.Payload) error {
	return s.sendJSON(mediaFrame{Type: "media", MIMEType: chunk.MIMEType, Data: chunk.Data})
}

// Events returns an iterator over server events.
func (s *wsSession) Events() iter.Seq2[*ServerEvent, error] {
	return func(yield func(*ServerEvent, error) bool) {
		for {
			select {
			case <-s.closeCh:
				return
			case item, ok := <-s.eventsCh:
				if !ok {
					return
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
func (s *wsSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.conn.Close()
	})
	return err
}

func (s *wsSession) sendJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	select {
	case <-s.closeCh:
		return fmt.Errorf("live: session closed")
	default:
	}
	return s.conn.WriteJSON(v)
}

func (s *wsSession) readLoop() {
	defer close(s.eventsCh)
	for {
		var ev ServerEvent
		if err := s.conn.ReadJSON(&ev); err != nil {
			var item eventOrError
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				item = eventOrError{event: &ServerEvent{Type: EventTypeClosed}}
			} else {
				item = eventOrError{err: err}
			}
			select {
			case s.eventsCh <- item:
			case <-s.closeCh:
			}
			return
		}
		select {
		case s.eventsCh <- eventOrError{event: &ev}:
		case <-s.closeCh:
			return
		}
	}
}
