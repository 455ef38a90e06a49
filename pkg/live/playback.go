package live

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/livemind/livemind/pkg/audio/pcm"
)

// Handle is one started playback that can be stopped early.
type Handle interface {
	Stop()
}

// Output plays decoded audio. Play starts immediately and returns a Handle;
// the sink owns pacing from there.
type Output interface {
	Play(samples []float32, rate int) (Handle, error)
}

// Scheduler reconstructs a continuous utterance from discrete audio chunks
// arriving with arbitrary jitter. It keeps a monotonically advancing cursor:
// each chunk starts at max(cursor, now) and advances the cursor by its
// duration, so chunks play back to back with no gap and no overlap.
type Scheduler struct {
	out    Output
	format pcm.Format
	now    func() time.Time

	mu       sync.Mutex
	cursor   time.Time
	inflight map[int]*playbackItem
	nextID   int
}

type playbackItem struct {
	timer  *time.Timer
	handle Handle
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock overrides the scheduler's clock.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates a Scheduler playing through out in the given output
// format.
func NewScheduler(out Output, format pcm.Format, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		out:      out,
		format:   format,
		now:      time.Now,
		inflight: make(map[int]*playbackItem),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule decodes one base64 chunk and queues it after everything already
// scheduled. It returns the chunk's start time.
func (s *Scheduler) Schedule(data string) (time.Time, error) {
	samples, err := pcm.Decode(data)
	if err != nil {
		return time.Time{}, fmt.Errorf("live: decode audio chunk: %w", err)
	}
	return s.scheduleSamples(samples), nil
}

func (s *Scheduler) scheduleSamples(samples []float32) time.Time {
	duration := s.format.Duration(int64(len(samples) * 2))

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	start := s.cursor
	if now.After(start) {
		start = now
	}
	s.cursor = start.Add(duration)

	id := s.nextID
	s.nextID++
	item := &playbackItem{}
	s.inflight[id] = item
	item.timer = time.AfterFunc(start.Sub(now), func() {
		s.play(id, item, samples, duration)
	})
	return start
}

func (s *Scheduler) play(id int, item *playbackItem, samples []float32, duration time.Duration) {
	handle, err := s.out.Play(samples, s.format.SampleRate())
	if err != nil {
		slog.Error("audio playback failed", "error", err)
		s.remove(id)
		return
	}

	s.mu.Lock()
	if _, ok := s.inflight[id]; !ok {
		// Interrupted between timer fire and Play return.
		s.mu.Unlock()
		handle.Stop()
		return
	}
	item.handle = handle
	s.mu.Unlock()

	time.AfterFunc(duration, func() {
		s.remove(id)
	})
}

func (s *Scheduler) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

// Interrupt stops every in-flight playback, clears the set, and resets the
// cursor so the next chunk starts immediately instead of honoring stale
// scheduling.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	items := s.inflight
	s.inflight = make(map[int]*playbackItem)
	s.cursor = time.Time{}
	s.mu.Unlock()

	for _, item := range items {
		item.timer.Stop()
		if item.handle != nil {
			item.handle.Stop()
		}
	}
}

// InFlight returns the number of chunks scheduled or playing.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Cursor returns the next available start time. Zero after an interruption
// or before any chunk was scheduled.
func (s *Scheduler) Cursor() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}
