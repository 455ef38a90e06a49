package live

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"time"

	"github.com/livemind/livemind/pkg/audio/pcm"
	"github.com/livemind/livemind/pkg/audio/resampler"
)

// AudioSource is an open capture device producing mono float32 samples in
// [-1, 1] at Rate().
type AudioSource interface {
	// ReadBlock fills buf with captured samples, blocking until the block
	// is full or the source ends.
	ReadBlock(ctx context.Context, buf []float32) (int, error)

	// Rate returns the capture sample rate in Hz.
	Rate() int

	Close() error
}

// VideoSource is an open capture device producing frames on demand.
type VideoSource interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// Devices acquires capture hardware. Open errors mean the device is missing
// or permission was denied; no remote session is created in that case.
type Devices interface {
	OpenAudio(ctx context.Context) (AudioSource, error)
	OpenVideo(ctx context.Context) (VideoSource, error)
}

// DeviceError wraps a capture-device acquisition failure.
type DeviceError struct {
	Device string // "microphone" or "camera"
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("live: %s access failed: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// EncodeFrame compresses a captured frame to the wire's JPEG payload.
func EncodeFrame(img image.Image) (pcm.Payload, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return pcm.Payload{}, fmt.Errorf("live: encode frame: %w", err)
	}
	return pcm.Payload{
		MIMEType: "image/jpeg",
		Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// audioPump reads fixed-size blocks from src, converts them to the wire
// rate, and sends each immediately. Blocks are dropped when the microphone
// is disabled; nothing is buffered. Send failures are logged and skipped so
// a slow transport never blocks the next block.
func audioPump(ctx context.Context, src AudioSource, enabled bool, blockSize, wireRate int, send func(pcm.Payload)) error {
	conv, err := resampler.New(src.Rate(), wireRate)
	if err != nil {
		return err
	}
	format, ok := pcm.FormatForRate(wireRate)
	if !ok {
		return fmt.Errorf("live: unsupported wire rate %d", wireRate)
	}

	buf := make([]float32, blockSize)
	for {
		n, err := src.ReadBlock(ctx, buf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if n == 0 || !enabled {
			continue
		}
		samples, err := conv.Process(buf[:n])
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			continue
		}
		send(format.Encode(samples))
	}
}

// videoPump captures one frame per tick and sends it compressed. A tick that
// overlaps a still-running capture is simply skipped; only the most recent
// frame matters, so no queue is kept.
func videoPump(ctx context.Context, src VideoSource, frameRate int, send func(pcm.Payload)) {
	interval := time.Second / time.Duration(frameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	busy := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case busy <- struct{}{}:
			default:
				continue
			}
			go func() {
				defer func() { <-busy }()
				img, err := src.Frame(ctx)
				if err != nil {
					if ctx.Err() == nil {
						slog.Warn("frame capture failed", "error", err)
					}
					return
				}
				payload, err := EncodeFrame(img)
				if err != nil {
					slog.Warn("frame encode failed", "error", err)
					return
				}
				send(payload)
			}()
		}
	}
}
