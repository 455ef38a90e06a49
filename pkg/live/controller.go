package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/livemind/livemind/pkg/archive"
	"github.com/livemind/livemind/pkg/audio/pcm"
)

// State is the controller lifecycle state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateActive
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Recorder is the persistence gateway surface the controller drives. All
// calls are issued asynchronously and best-effort; failures are logged and
// never reach the media path. *archive.Client satisfies it.
type Recorder interface {
	CreateSession(ctx context.Context, meta archive.SessionMeta) (string, error)
	AppendMessage(ctx context.Context, sessionID string, sender archive.Sender, text string) (string, error)
	CloseSession(ctx context.Context, id string, status archive.Status, lastError string) error
}

// Controller owns one live conversation at a time: the session state
// machine, the capture pumps, playback scheduling, transcript accumulation
// and transcript persistence. Exactly one session may be active per
// Controller instance.
type Controller struct {
	cfg      Config
	dial     Dialer
	devices  Devices
	output   Output
	recorder Recorder

	// OnState, OnPartial, OnEntries and OnError are optional UI callbacks.
	// They are invoked from controller goroutines and must not block.
	OnState   func(State)
	OnPartial func(input, output string)
	OnEntries func([]Entry)
	OnError   func(*Error)

	mu              sync.Mutex
	state           State
	settings        Settings
	session         Session
	audioSrc        AudioSource
	videoSrc        VideoSource
	sched           *Scheduler
	acc             *Accumulator
	cancel          context.CancelFunc
	archiveID       string
	lastError       *Error
	needsCredential bool
}

// NewController creates a Controller. recorder may be nil to disable
// transcript persistence.
func NewController(cfg Config, dial Dialer, devices Devices, output Output, recorder Recorder) *Controller {
	cfg.setDefaults()
	return &Controller{
		cfg:      cfg,
		dial:     dial,
		devices:  devices,
		output:   output,
		recorder: recorder,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the most recent classified failure, or nil.
func (c *Controller) LastError() *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// NeedsCredential reports whether a credential or billing failure has
// disabled further start attempts.
func (c *Controller) NeedsCredential() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsCredential
}

// ResetCredential clears the credential hold after keys were reconfigured.
func (c *Controller) ResetCredential() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.needsCredential = false
}

// Partial returns the live transcription buffers for display. Empty when no
// session is active.
func (c *Controller) Partial() (input, output string) {
	c.mu.Lock()
	acc := c.acc
	c.mu.Unlock()
	if acc == nil {
		return "", ""
	}
	return acc.Partial()
}

// Start opens a session with the given settings. Valid only from idle.
// Device acquisition happens before anything touches the network: a denied
// microphone or camera aborts the start with no remote session created.
func (c *Controller) Start(ctx context.Context, settings Settings) error {
	outputFormat, ok := pcm.FormatForRate(c.cfg.OutputRate)
	if !ok {
		return fmt.Errorf("live: unsupported output rate %d", c.cfg.OutputRate)
	}

	c.mu.Lock()
	if c.needsCredential {
		c.mu.Unlock()
		return &Error{Kind: KindCredential, Message: "credentials need reconfiguring"}
	}
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("live: start from %s", state)
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.settings = settings
	c.lastError = nil
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	audioSrc, err := c.devices.OpenAudio(runCtx)
	if err != nil {
		return c.failStart(&DeviceError{Device: "microphone", Err: err}, nil, nil)
	}
	var videoSrc VideoSource
	if settings.CameraEnabled {
		videoSrc, err = c.devices.OpenVideo(runCtx)
		if err != nil {
			return c.failStart(&DeviceError{Device: "camera", Err: err}, audioSrc, nil)
		}
	}

	session, err := c.dial.Connect(runCtx, &ConnectConfig{
		Model:             c.cfg.Model,
		VoiceName:         settings.VoiceName,
		SystemInstruction: c.cfg.SystemInstruction,
	})
	if err != nil {
		return c.failStart(fmt.Errorf("live: open transport: %w", err), audioSrc, videoSrc)
	}

	c.mu.Lock()
	// Stop may have run while Connect was in flight. The run context is dead
	// then, and committing would resurrect the controller: release everything
	// and stay idle instead.
	if runCtx.Err() != nil || c.state != StateConnecting {
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		c.setStateLocked(StateIdle)
		c.mu.Unlock()
		session.Close()
		audioSrc.Close()
		if videoSrc != nil {
			videoSrc.Close()
		}
		return nil
	}
	c.session = session
	c.audioSrc = audioSrc
	c.videoSrc = videoSrc
	c.sched = NewScheduler(c.output, outputFormat)
	c.acc = &Accumulator{}
	c.setStateLocked(StateActive)
	c.mu.Unlock()

	c.createArchiveSession(settings)

	send := func(p pcm.Payload) {
		if err := session.Send(p); err != nil {
			slog.Debug("media send failed", "mime", p.MIMEType, "error", err)
		}
	}
	go func() {
		err := audioPump(runCtx, audioSrc, settings.MicEnabled, c.cfg.BlockSize, c.cfg.InputRate, send)
		if err != nil && runCtx.Err() == nil {
			slog.Warn("audio pump stopped", "error", err)
		}
	}()
	if videoSrc != nil {
		go videoPump(runCtx, videoSrc, c.cfg.FrameRate, send)
	}
	go c.eventLoop(session)

	return nil
}

// failStart aborts a start attempt: release whatever was acquired, return to
// idle, and report the error. No persistence call is made because no remote
// session exists yet.
func (c *Controller) failStart(err error, audioSrc AudioSource, videoSrc VideoSource) error {
	if audioSrc != nil {
		audioSrc.Close()
	}
	if videoSrc != nil {
		videoSrc.Close()
	}
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		c.lastError = &Error{Kind: KindDevice, Message: devErr.Error()}
	}
	c.setStateLocked(StateIdle)
	c.mu.Unlock()
	return err
}

// createArchiveSession issues the best-effort session-create call. The
// archive id lands on the controller whenever the call returns; teardown
// reads it by value, so a late id after stop is simply never closed.
func (c *Controller) createArchiveSession(settings Settings) {
	if c.recorder == nil {
		return
	}
	meta := archive.SessionMeta{
		ModelName:        c.cfg.Model,
		UserID:           c.cfg.UserID,
		ClientIdentifier: c.cfg.ClientIdentifier,
		Latitude:         c.cfg.Latitude,
		Longitude:        c.cfg.Longitude,
		DeviceType:       c.cfg.DeviceType,
		ScreenRes:        c.cfg.ScreenRes,
		VoiceName:        settings.VoiceName,
		CameraEnabled:    settings.CameraEnabled,
		MicEnabled:       settings.MicEnabled,
	}
	go func() {
		id, err := c.recorder.CreateSession(context.Background(), meta)
		if err != nil {
			slog.Warn("archive session create failed", "error", err)
			return
		}
		c.mu.Lock()
		c.archiveID = id
		c.mu.Unlock()
	}()
}

// eventLoop is the single consumer of inbound transport events. All
// transcript and playback mutation happens here, in arrival order.
func (c *Controller) eventLoop(session Session) {
	c.mu.Lock()
	sched, acc := c.sched, c.acc
	c.mu.Unlock()

	for ev, err := range session.Events() {
		if err != nil {
			c.fail(Classify(err.Error()))
			return
		}
		switch ev.Type {
		case EventTypeInputTranscription:
			acc.AddInput(ev.Text)
			c.notifyPartial(acc)
		case EventTypeOutputTranscription:
			acc.AddOutput(ev.Text)
			c.notifyPartial(acc)
		case EventTypeTurnComplete:
			entries := acc.CompleteTurn()
			if len(entries) > 0 {
				c.persistEntries(entries)
				if c.OnEntries != nil {
					c.OnEntries(entries)
				}
			}
			c.notifyPartial(acc)
		case EventTypeAudio:
			if _, err := sched.Schedule(ev.Data); err != nil {
				slog.Warn("audio chunk dropped", "error", err)
			}
		case EventTypeInterrupted:
			sched.Interrupt()
		case EventTypeError:
			c.fail(Classify(ev.Message))
			return
		case EventTypeClosed:
			// Graceful server close: back to idle, no persistence calls.
			c.teardown(false)
			return
		default:
			slog.Debug("unknown server event", "type", ev.Type)
		}
	}
}

func (c *Controller) notifyPartial(acc *Accumulator) {
	if c.OnPartial == nil {
		return
	}
	input, output := acc.Partial()
	c.OnPartial(input, output)
}

// persistEntries appends finalized entries to the archive, fire-and-forget.
// The session id is captured by value so a call racing stop still targets
// the right session.
func (c *Controller) persistEntries(entries []Entry) {
	if c.recorder == nil {
		return
	}
	c.mu.Lock()
	id := c.archiveID
	c.mu.Unlock()
	if id == "" {
		return
	}
	// One goroutine per turn keeps the user-before-model append order.
	go func() {
		for _, e := range entries {
			if _, err := c.recorder.AppendMessage(context.Background(), id, e.Sender, e.Text); err != nil {
				slog.Warn("transcript append failed", "error", err)
			}
		}
	}()
}

// fail handles a transport runtime error: classify it, latch the credential
// hold if needed, mark the archive session failed, then force a stop.
func (c *Controller) fail(classified *Error) {
	c.mu.Lock()
	c.lastError = classified
	if classified.Kind == KindCredential {
		c.needsCredential = true
	}
	id := c.archiveID
	c.setStateLocked(StateError)
	c.mu.Unlock()

	if c.OnError != nil {
		c.OnError(classified)
	}
	if c.recorder != nil && id != "" {
		go func() {
			if err := c.recorder.CloseSession(context.Background(), id, archive.StatusError, classified.Message); err != nil {
				slog.Warn("archive session error close failed", "error", err)
			}
		}()
	}
	c.teardown(false)
}

// Stop ends the session. Safe to call at any time and idempotent: repeat
// calls are no-ops and produce no extra persistence calls.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.lastError = nil
	c.mu.Unlock()
	c.teardown(true)
}

// teardown cancels the pumps, releases devices, closes the transport and
// resets to idle. When persist is true and a remote session id exists, one
// close call with status completed is issued.
func (c *Controller) teardown(persist bool) {
	c.mu.Lock()
	if c.state == StateIdle && c.session == nil {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	session := c.session
	audioSrc, videoSrc := c.audioSrc, c.videoSrc
	sched, acc := c.sched, c.acc
	id := c.archiveID
	c.session = nil
	c.audioSrc = nil
	c.videoSrc = nil
	c.sched = nil
	c.acc = nil
	c.archiveID = ""
	c.setStateLocked(StateIdle)
	c.mu.Unlock()

	// Close errors are swallowed; teardown always completes.
	if session != nil {
		session.Close()
	}
	if audioSrc != nil {
		audioSrc.Close()
	}
	if videoSrc != nil {
		videoSrc.Close()
	}
	if sched != nil {
		sched.Interrupt()
	}
	if acc != nil {
		acc.Reset()
	}

	if persist && c.recorder != nil && id != "" {
		go func() {
			if err := c.recorder.CloseSession(context.Background(), id, archive.StatusCompleted, ""); err != nil {
				slog.Warn("archive session close failed", "error", err)
			}
		}()
	}
}

// setStateLocked updates the state and fires OnState. Caller holds mu, so
// the callback must not call back into the controller.
func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.OnState != nil {
		c.OnState(s)
	}
}
