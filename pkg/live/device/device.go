// Package device provides capture and playback devices backed by ffmpeg and
// ffplay subprocesses. It is the default hardware layer for terminal
// sessions; anything implementing the live package's interfaces can replace
// it.
package device

import (
	"context"
	"fmt"
	"runtime"

	"github.com/livemind/livemind/pkg/live"
)

// Config selects the capture devices.
type Config struct {
	// MicDevice is the ffmpeg input name for the microphone. Empty picks a
	// platform default.
	MicDevice string

	// CameraDevice is the ffmpeg input name for the camera. Empty picks a
	// platform default.
	CameraDevice string

	// MicRate is the microphone capture rate in Hz. Zero means the wire
	// input rate.
	MicRate int
}

// Set opens ffmpeg-backed devices. It implements live.Devices.
type Set struct {
	cfg Config
}

// New creates a device set.
func New(cfg Config) *Set {
	if cfg.MicRate <= 0 {
		cfg.MicRate = live.InputSampleRate
	}
	return &Set{cfg: cfg}
}

// OpenAudio starts the microphone capture process.
func (s *Set) OpenAudio(ctx context.Context) (live.AudioSource, error) {
	return openMicrophone(ctx, s.cfg.MicDevice, s.cfg.MicRate)
}

// OpenVideo opens the camera.
func (s *Set) OpenVideo(ctx context.Context) (live.VideoSource, error) {
	return openCamera(s.cfg.CameraDevice)
}

// captureFormat returns the ffmpeg demuxer and default device name for audio
// or video capture on this platform.
func captureFormat(video bool) (format, device string, err error) {
	switch runtime.GOOS {
	case "darwin":
		if video {
			return "avfoundation", "0:none", nil
		}
		return "avfoundation", "none:0", nil
	case "linux":
		if video {
			return "v4l2", "/dev/video0", nil
		}
		return "alsa", "default", nil
	}
	return "", "", fmt.Errorf("device: no capture support on %s", runtime.GOOS)
}
