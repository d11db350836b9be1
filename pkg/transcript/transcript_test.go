package transcript

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestAggregatorFinalizesTurn(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	a := NewAggregator(clock)

	a.AddDelta("Hello ", SourceOutput)
	a.AddDelta("world", SourceOutput)
	added := a.CompleteTurn()

	if len(added) != 1 {
		t.Fatalf("added %d turns, want 1", len(added))
	}
	turn := added[0]
	if turn.Text != "Hello world" {
		t.Errorf("text=%q, want %q", turn.Text, "Hello world")
	}
	if turn.Role != RoleModel {
		t.Errorf("role=%q, want model", turn.Role)
	}
	if turn.ID == "" {
		t.Error("turn has empty id")
	}
	if !turn.Time.Equal(clock.now) {
		t.Errorf("time=%v, want %v", turn.Time, clock.now)
	}
	if a.Pending() != "" {
		t.Errorf("pending=%q after completion, want empty", a.Pending())
	}
	if a.Len() != 1 {
		t.Errorf("len=%d, want 1", a.Len())
	}
}

func TestAggregatorEmptyTurn(t *testing.T) {
	for _, pending := range []string{"", "   ", "\n\t "} {
		a := NewAggregator(nil)
		a.AddDelta(pending, SourceOutput)
		if added := a.CompleteTurn(); len(added) != 0 {
			t.Errorf("pending=%q: added %d turns, want 0", pending, len(added))
		}
		if a.Pending() != "" {
			t.Errorf("pending=%q not reset", pending)
		}
	}
}

func TestAggregatorInputTurn(t *testing.T) {
	a := NewAggregator(nil)

	a.AddDelta("How do I ", SourceInput)
	a.AddDelta("sign thank you?", SourceInput)
	a.AddDelta("Like this: ", SourceOutput)
	a.AddDelta("flat hand from the chin.", SourceOutput)
	added := a.CompleteTurn()

	if len(added) != 2 {
		t.Fatalf("added %d turns, want 2", len(added))
	}
	if added[0].Role != RoleUser || added[0].Text != "How do I sign thank you?" {
		t.Errorf("first turn %q/%q, want user question", added[0].Role, added[0].Text)
	}
	if added[1].Role != RoleModel {
		t.Errorf("second turn role=%q, want model", added[1].Role)
	}
}

func TestAggregatorClearPending(t *testing.T) {
	a := NewAggregator(nil)
	a.AddDelta("finished", SourceOutput)
	a.CompleteTurn()

	a.AddDelta("half a sen", SourceOutput)
	a.ClearPending()

	if a.Pending() != "" {
		t.Errorf("pending=%q after clear", a.Pending())
	}
	// The finalized turn survives.
	if a.Len() != 1 {
		t.Errorf("len=%d after clear, want 1", a.Len())
	}
	if added := a.CompleteTurn(); len(added) != 0 {
		t.Errorf("cleared buffer finalized into %d turns", len(added))
	}
}

func TestAggregatorTurnsIsCopy(t *testing.T) {
	a := NewAggregator(nil)
	a.AddDelta("one", SourceOutput)
	a.CompleteTurn()

	turns := a.Turns()
	turns[0].Text = "mutated"
	if a.Turns()[0].Text != "one" {
		t.Error("Turns() exposed internal slice")
	}
}
