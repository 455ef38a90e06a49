package live_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livemind/livemind/pkg/audio/pcm"
	"github.com/livemind/livemind/pkg/live"
)

type gatewayFrame struct {
	Type              string `json:"type"`
	Model             string `json:"model,omitempty"`
	VoiceName         string `json:"voiceName,omitempty"`
	SystemInstruction string `json:"systemInstruction,omitempty"`
	MIMEType          string `json:"mimeType,omitempty"`
	Data              string `json:"data,omitempty"`
}

// gatewayServer upgrades one connection and hands it to fn.
func gatewayServer(t *testing.T, fn func(conn *websocket.Conn, hello gatewayFrame)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var hello gatewayFrame
		if err := conn.ReadJSON(&hello); err != nil {
			t.Errorf("read hello: %v", err)
			return
		}
		fn(conn, hello)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketSessionEvents(t *testing.T) {
	srv := gatewayServer(t, func(conn *websocket.Conn, hello gatewayFrame) {
		if hello.Type != "hello" {
			t.Errorf("hello type = %q", hello.Type)
		}
		if hello.Model != "test-model" || hello.VoiceName != "Puck" {
			t.Errorf("hello = %+v", hello)
		}

		// One user fragment, then the client's media chunk, then turn end.
		conn.WriteJSON(live.ServerEvent{Type: live.EventTypeInputTranscription, Text: "hi there"})

		var media gatewayFrame
		if err := conn.ReadJSON(&media); err != nil {
			t.Errorf("read media: %v", err)
			return
		}
		if media.Type != "media" || media.MIMEType != "audio/pcm;rate=16000" {
			t.Errorf("media frame = %+v", media)
		}

		conn.WriteJSON(live.ServerEvent{Type: live.EventTypeTurnComplete})
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
	})

	dialer := &live.WebSocketDialer{URL: wsURL(srv), APIKey: "test-key"}
	session, err := dialer.Connect(t.Context(), &live.ConnectConfig{
		Model:     "test-model",
		VoiceName: "Puck",
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer session.Close()

	payload := pcm.L16Mono16K.Encode(make([]float32, 256))
	if err := session.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var got []string
	for ev, err := range session.Events() {
		if err != nil {
			t.Fatalf("Events: %v", err)
		}
		got = append(got, ev.Type)
		if ev.Type == live.EventTypeInputTranscription && ev.Text != "hi there" {
			t.Errorf("fragment = %q", ev.Text)
		}
		if ev.Type == live.EventTypeClosed {
			break
		}
	}
	want := []string{
		live.EventTypeInputTranscription,
		live.EventTypeTurnComplete,
		live.EventTypeClosed,
	}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWebSocketSessionSendAfterClose(t *testing.T) {
	srv := gatewayServer(t, func(conn *websocket.Conn, hello gatewayFrame) {
		// Hold the connection until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	dialer := &live.WebSocketDialer{URL: wsURL(srv), APIKey: "test-key"}
	session, err := dialer.Connect(t.Context(), nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := session.Send(pcm.Payload{MIMEType: "audio/pcm;rate=16000"}); err == nil {
		t.Fatal("Send after Close should fail")
	}
}
