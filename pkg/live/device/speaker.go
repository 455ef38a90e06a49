package device

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/livemind/livemind/pkg/live"
)

// Speaker plays PCM audio through an ffplay subprocess reading s16le from
// stdin. Sequential writes are played back to back, which is exactly what
// the scheduler's gapless ordering needs. It implements live.Output.
type Speaker struct {
	volume int

	mu    sync.Mutex
	rate  int
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// NewSpeaker creates a Speaker. volume is 0-100; zero means 80.
func NewSpeaker(volume int) *Speaker {
	if volume <= 0 {
		volume = 80
	}
	return &Speaker{volume: volume}
}

// Play writes one decoded chunk to the playback process, starting it on
// first use or when the sample rate changes.
func (s *Speaker) Play(samples []float32, rate int) (live.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdin == nil || s.rate != rate {
		if err := s.restartLocked(rate); err != nil {
			return nil, err
		}
	}

	raw := make([]byte, len(samples)*2)
	for i, f := range samples {
		v := int32(f * 32768.0)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		raw[i*2] = byte(v)
		raw[i*2+1] = byte(v >> 8)
	}
	if _, err := s.stdin.Write(raw); err != nil {
		return nil, fmt.Errorf("device: speaker write: %w", err)
	}
	return speakerHandle{s}, nil
}

// speakerHandle stops playback by restarting ffplay, dropping everything it
// has buffered. An interruption stops all chunks at once, so no per-chunk
// accounting is kept.
type speakerHandle struct {
	s *Speaker
}

func (h speakerHandle) Stop() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.s.stdin != nil {
		h.s.restartLocked(h.s.rate)
	}
}

func (s *Speaker) restartLocked(rate int) error {
	s.stopLocked()

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostats",
		"-nodisp",
		"-volume", fmt.Sprintf("%d", s.volume),
		"-f", "s16le",
		"-ch_layout", "mono",
		"-ar", fmt.Sprintf("%d", rate),
		"-i", "-",
	}
	cmd := exec.Command("ffplay", args...)
	if runtime.GOOS == "darwin" && os.Getenv("SDL_AUDIODRIVER") == "" {
		// SDL can pick a silent dummy backend on macOS; prefer CoreAudio.
		cmd.Env = append(os.Environ(), "SDL_AUDIODRIVER=coreaudio")
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	cmd.Stdout = io.Discard
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("device: start ffplay: %w", err)
	}
	s.cmd = cmd
	s.stdin = stdin
	s.rate = rate
	return nil
}

func (s *Speaker) stopLocked() {
	if s.stdin != nil {
		s.stdin.Close()
		s.stdin = nil
	}
	if s.cmd != nil {
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
		s.cmd = nil
	}
}

// Close stops the playback process.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return nil
}
