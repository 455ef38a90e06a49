package live_test

import (
	"sync"
	"testing"
	"time"

	"github.com/livemind/livemind/pkg/audio/pcm"
	"github.com/livemind/livemind/pkg/live"
)

type fakeHandle struct {
	mu      *sync.Mutex
	stopped *int
}

func (h fakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.stopped++
}

type fakeOutput struct {
	mu      sync.Mutex
	played  int
	stopped int
}

func (o *fakeOutput) Play(samples []float32, rate int) (live.Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.played++
	return fakeHandle{mu: &o.mu, stopped: &o.stopped}, nil
}

func (o *fakeOutput) counts() (played, stopped int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.played, o.stopped
}

// chunk returns an encoded chunk of the given duration at 24 kHz.
func chunk(d time.Duration) string {
	n := int(d * 24000 / time.Second)
	return pcm.L16Mono24K.Encode(make([]float32, n)).Data
}

func TestSchedulerGapless(t *testing.T) {
	base := time.Now()
	out := &fakeOutput{}
	s := live.NewScheduler(out, pcm.L16Mono24K, live.WithClock(func() time.Time { return base }))

	durations := []time.Duration{500 * time.Millisecond, 300 * time.Millisecond, 700 * time.Millisecond}
	var starts []time.Time
	for _, d := range durations {
		start, err := s.Schedule(chunk(d))
		if err != nil {
			t.Fatalf("Schedule: %v", err)
		}
		starts = append(starts, start)
	}

	// Back to back: each chunk starts exactly where the previous one ends.
	if !starts[0].Equal(base) {
		t.Fatalf("first start = %v, want %v", starts[0], base)
	}
	elapsed := time.Duration(0)
	for i, d := range durations {
		if want := base.Add(elapsed); !starts[i].Equal(want) {
			t.Fatalf("chunk %d starts at %v, want %v", i, starts[i], want)
		}
		elapsed += d
	}
	if want := base.Add(elapsed); !s.Cursor().Equal(want) {
		t.Fatalf("cursor = %v, want %v", s.Cursor(), want)
	}
	if s.InFlight() != 3 {
		t.Fatalf("in flight = %d, want 3", s.InFlight())
	}
}

func TestSchedulerLateChunkStartsNow(t *testing.T) {
	clock := time.Now()
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	out := &fakeOutput{}
	s := live.NewScheduler(out, pcm.L16Mono24K, live.WithClock(now))

	first, err := s.Schedule(chunk(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	// The next chunk arrives after the first finished playing; it must
	// start at the clock, not at the stale cursor.
	mu.Lock()
	clock = clock.Add(time.Second)
	late := clock
	mu.Unlock()

	second, err := s.Schedule(chunk(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !second.Equal(late) {
		t.Fatalf("late chunk starts at %v, want %v", second, late)
	}
	if second.Before(first.Add(100 * time.Millisecond)) {
		t.Fatal("chunks overlap")
	}
}

func TestSchedulerInterrupt(t *testing.T) {
	base := time.Now()
	out := &fakeOutput{}
	s := live.NewScheduler(out, pcm.L16Mono24K, live.WithClock(func() time.Time { return base }))

	for range 3 {
		if _, err := s.Schedule(chunk(500 * time.Millisecond)); err != nil {
			t.Fatalf("Schedule: %v", err)
		}
	}
	if want := base.Add(1500 * time.Millisecond); !s.Cursor().Equal(want) {
		t.Fatalf("cursor = %v, want %v", s.Cursor(), want)
	}

	// Let the first chunk actually start playing.
	time.Sleep(50 * time.Millisecond)
	if played, _ := out.counts(); played != 1 {
		t.Fatalf("played = %d, want 1", played)
	}

	s.Interrupt()

	if s.InFlight() != 0 {
		t.Fatalf("in flight = %d after interrupt, want 0", s.InFlight())
	}
	if !s.Cursor().IsZero() {
		t.Fatalf("cursor = %v after interrupt, want zero", s.Cursor())
	}
	played, stopped := out.counts()
	if played != 1 || stopped != 1 {
		t.Fatalf("played/stopped = %d/%d, want 1/1", played, stopped)
	}

	// The next chunk schedules at the current clock, not at 1.5s.
	start, err := s.Schedule(chunk(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !start.Equal(base) {
		t.Fatalf("post-interrupt start = %v, want %v", start, base)
	}
}

func TestSchedulerRejectsBadData(t *testing.T) {
	s := live.NewScheduler(&fakeOutput{}, pcm.L16Mono24K)
	if _, err := s.Schedule("*** not base64 ***"); err == nil {
		t.Fatal("expected decode error")
	}
}
