package device

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Microphone captures mono s16le audio from an ffmpeg subprocess and exposes
// it as float32 blocks.
type Microphone struct {
	rate   int
	cmd    *exec.Cmd
	stdout *bufio.Reader

	closeOnce sync.Once
	closeErr  error
}

func openMicrophone(ctx context.Context, devName string, rate int) (*Microphone, error) {
	format, defDev, err := captureFormat(false)
	if err != nil {
		return nil, err
	}
	if devName == "" {
		devName = defDev
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", format,
		"-i", devName,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", rate),
		"-f", "s16le",
		"-",
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("device: start microphone capture: %w", err)
	}

	return &Microphone{
		rate:   rate,
		cmd:    cmd,
		stdout: bufio.NewReaderSize(stdout, 64*1024),
	}, nil
}

// ReadBlock fills buf with captured samples.
func (m *Microphone) ReadBlock(ctx context.Context, buf []float32) (int, error) {
	raw := make([]byte, len(buf)*2)
	if _, err := io.ReadFull(m.stdout, raw); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, err
	}
	for i := range buf {
		s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		buf[i] = float32(s) / 32768.0
	}
	return len(buf), nil
}

// Rate returns the capture sample rate.
func (m *Microphone) Rate() int {
	return m.rate
}

// Close stops the capture process.
func (m *Microphone) Close() error {
	m.closeOnce.Do(func() {
		if m.cmd.Process != nil {
			m.cmd.Process.Kill()
		}
		m.closeErr = m.cmd.Wait()
	})
	return m.closeErr
}
