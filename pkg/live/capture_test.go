package live_test

import (
	"context"
	"encoding/base64"
	"image"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/livemind/livemind/pkg/audio/pcm"
	"github.com/livemind/livemind/pkg/live"
)

func TestEncodeFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	payload, err := live.EncodeFrame(img)
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if payload.MIMEType != "image/jpeg" {
		t.Fatalf("mime = %q", payload.MIMEType)
	}
	raw, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		t.Fatalf("payload not base64: %v", err)
	}
	// JPEG SOI marker.
	if len(raw) < 2 || raw[0] != 0xFF || raw[1] != 0xD8 {
		t.Fatalf("payload is not a JPEG, starts with % x", raw[:2])
	}
}

// blockAudioSource produces a fixed number of full blocks, then EOF.
type blockAudioSource struct {
	mu     sync.Mutex
	blocks int
}

func (s *blockAudioSource) ReadBlock(ctx context.Context, buf []float32) (int, error) {
	s.mu.Lock()
	remaining := s.blocks
	s.blocks--
	s.mu.Unlock()
	if remaining <= 0 {
		<-ctx.Done()
		return 0, io.EOF
	}
	for i := range buf {
		buf[i] = 0.25
	}
	return len(buf), nil
}

func (s *blockAudioSource) Rate() int    { return 16000 }
func (s *blockAudioSource) Close() error { return nil }

type blockDevices struct {
	audio *blockAudioSource
}

func (d *blockDevices) OpenAudio(ctx context.Context) (live.AudioSource, error) {
	return d.audio, nil
}

func (d *blockDevices) OpenVideo(ctx context.Context) (live.VideoSource, error) {
	return fakeVideoSource{}, nil
}

func startWithBlocks(t *testing.T, settings live.Settings, blocks int) (*fakeSession, *live.Controller) {
	t.Helper()
	session := newFakeSession()
	ctl := live.NewController(
		live.Config{UserID: "alice"},
		&fakeDialer{session: session},
		&blockDevices{audio: &blockAudioSource{blocks: blocks}},
		&fakeOutput{},
		nil,
	)
	if err := ctl.Start(context.Background(), settings); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(ctl.Stop)
	return session, ctl
}

func audioPayloads(session *fakeSession) []pcm.Payload {
	session.mu.Lock()
	defer session.mu.Unlock()
	var out []pcm.Payload
	for _, p := range session.sent {
		if p.MIMEType != "image/jpeg" {
			out = append(out, p)
		}
	}
	return out
}

func TestAudioPumpSendsEncodedBlocks(t *testing.T) {
	settings := live.Settings{MicEnabled: true, VoiceName: "Zephyr"}
	session, _ := startWithBlocks(t, settings, 3)

	waitFor(t, func() bool { return len(audioPayloads(session)) == 3 })
	for _, p := range audioPayloads(session) {
		if p.MIMEType != "audio/pcm;rate=16000" {
			t.Fatalf("mime = %q", p.MIMEType)
		}
		samples, err := pcm.Decode(p.Data)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if len(samples) != live.AudioBlockSize {
			t.Fatalf("got %d samples, want %d", len(samples), live.AudioBlockSize)
		}
	}
}

func TestAudioPumpDropsBlocksWhenMicDisabled(t *testing.T) {
	settings := live.Settings{MicEnabled: false, VoiceName: "Zephyr"}
	session, ctl := startWithBlocks(t, settings, 3)

	waitFor(t, func() bool { return ctl.State() == live.StateActive })
	time.Sleep(100 * time.Millisecond)
	if got := audioPayloads(session); len(got) != 0 {
		t.Fatalf("disabled mic sent %d audio payloads, want 0", len(got))
	}
}

func TestVideoPumpSendsFrames(t *testing.T) {
	settings := live.Settings{CameraEnabled: true, MicEnabled: false, VoiceName: "Zephyr"}
	session := newFakeSession()
	ctl := live.NewController(
		live.Config{UserID: "alice", FrameRate: 20},
		&fakeDialer{session: session},
		&blockDevices{audio: &blockAudioSource{}},
		&fakeOutput{},
		nil,
	)
	if err := ctl.Start(context.Background(), settings); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer ctl.Stop()

	waitFor(t, func() bool {
		session.mu.Lock()
		defer session.mu.Unlock()
		for _, p := range session.sent {
			if p.MIMEType == "image/jpeg" {
				return true
			}
		}
		return false
	})
}
