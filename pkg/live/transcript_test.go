package live_test

import (
	"testing"

	"github.com/livemind/livemind/pkg/archive"
	"github.com/livemind/livemind/pkg/live"
)

func TestAccumulatorConcatenatesFragments(t *testing.T) {
	var acc live.Accumulator
	acc.AddInput("turn ")
	acc.AddInput("left")
	acc.AddOutput("Turning ")
	acc.AddOutput("left ")
	acc.AddOutput("now.")

	input, output := acc.Partial()
	if input != "turn left" {
		t.Fatalf("input = %q", input)
	}
	if output != "Turning left now." {
		t.Fatalf("output = %q", output)
	}

	entries := acc.CompleteTurn()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Sender != archive.SenderUser || entries[0].Text != "turn left" {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if entries[1].Sender != archive.SenderModel || entries[1].Text != "Turning left now." {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Fatal("entries need distinct non-empty ids")
	}

	input, output = acc.Partial()
	if input != "" || output != "" {
		t.Fatalf("buffers not cleared: %q %q", input, output)
	}
}

func TestAccumulatorEmptyTurn(t *testing.T) {
	var acc live.Accumulator
	if entries := acc.CompleteTurn(); len(entries) != 0 {
		t.Fatalf("got %d entries, want 0", len(entries))
	}
}

func TestAccumulatorSingleSidedTurn(t *testing.T) {
	var acc live.Accumulator
	acc.AddOutput("Hello!")

	entries := acc.CompleteTurn()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Sender != archive.SenderModel {
		t.Fatalf("sender = %q", entries[0].Sender)
	}
}

func TestAccumulatorReset(t *testing.T) {
	var acc live.Accumulator
	acc.AddInput("half a sen")
	acc.Reset()
	if entries := acc.CompleteTurn(); len(entries) != 0 {
		t.Fatalf("got %d entries after reset, want 0", len(entries))
	}
}
