package transcript

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Source identifies which direction a streamed fragment belongs to.
type Source int

const (
	// SourceOutput is the model's spoken response transcript.
	SourceOutput Source = iota
	// SourceInput is the transcript of the user's own speech.
	SourceInput
)

// Turn is one finalized, immutable entry in the conversation.
type Turn struct {
	ID   string    `json:"id"`
	Role Role      `json:"role"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Aggregator accumulates streamed fragments into turns. It is not safe
// for concurrent use; the session controller calls it from its single
// dispatch goroutine.
type Aggregator struct {
	clock Clock

	turns   []Turn
	pending strings.Builder // model output being streamed
	input   strings.Builder // user speech being streamed
}

// NewAggregator creates an empty aggregator. A nil clock selects the
// system clock.
func NewAggregator(clock Clock) *Aggregator {
	if clock == nil {
		clock = systemClock{}
	}
	return &Aggregator{clock: clock}
}

// AddDelta appends a streamed fragment to the buffer for its source.
func (a *Aggregator) AddDelta(text string, source Source) {
	switch source {
	case SourceInput:
		a.input.WriteString(text)
	default:
		a.pending.WriteString(text)
	}
}

// CompleteTurn finalizes the pending buffers. A non-empty (after
// trimming) input buffer becomes a user turn, then a non-empty pending
// buffer becomes a model turn; the user turn is appended first so the
// transcript reads question-then-answer. Both buffers are always reset.
func (a *Aggregator) CompleteTurn() []Turn {
	var added []Turn
	if text := strings.TrimSpace(a.input.String()); text != "" {
		added = append(added, a.append(RoleUser, text))
	}
	if text := strings.TrimSpace(a.pending.String()); text != "" {
		added = append(added, a.append(RoleModel, text))
	}
	a.input.Reset()
	a.pending.Reset()
	return added
}

// AddSystem appends a system turn directly, bypassing the buffers.
// Used for session-level notices that belong in the record.
func (a *Aggregator) AddSystem(text string) Turn {
	return a.append(RoleSystem, text)
}

func (a *Aggregator) append(role Role, text string) Turn {
	turn := Turn{
		ID:   uuid.NewString(),
		Role: role,
		Text: text,
		Time: a.clock.Now(),
	}
	a.turns = append(a.turns, turn)
	return turn
}

// Pending returns the model text currently being streamed, used as the
// live preview.
func (a *Aggregator) Pending() string {
	return a.pending.String()
}

// ClearPending resets both streaming buffers without finalizing them.
// Called on stop; finalized turns survive.
func (a *Aggregator) ClearPending() {
	a.pending.Reset()
	a.input.Reset()
}

// Turns returns a copy of the finalized transcript in order.
func (a *Aggregator) Turns() []Turn {
	out := make([]Turn, len(a.turns))
	copy(out, a.turns)
	return out
}

// Len returns the number of finalized turns.
func (a *Aggregator) Len() int {
	return len(a.turns)
}
