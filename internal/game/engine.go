// internal/game/engine.go
//
// Round state machine and sequence validation.
// Responsibilities:
//   - Start rounds from a generated path (phase: displaying).
//   - Unlock input once the path has been shown (Reveal).
//   - Validate clicks against the next expected cell (Submit).
//   - Track state transitions: awaiting_input → success/failed.
//
// Notes:
//   - Nothing here schedules work; the caller decides when Reveal happens.
//   - Paths come from the path package; this package only compares.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"slices"
	"time"
)

// NewRound starts a round showing path. The path is copied.
func NewRound(id string, path []int, now time.Time) Round {
	if id == "" {
		id = randomID()
	}
	return Round{
		ID:        id,
		Path:      slices.Clone(path),
		Progress:  []int{},
		Phase:     PhaseDisplaying,
		WrongCell: -1,
		StartedAt: now,
	}
}

// Reveal ends the display period and accepts input.
// Rounds in any phase other than displaying are returned unchanged.
func (r Round) Reveal() Round {
	if r.Phase != PhaseDisplaying {
		return r
	}
	r.Phase = PhaseAwaiting
	return r
}

// Submit checks cell against the next expected cell and returns the outcome
// along with the resulting round.
//
// Rules:
//   - Ignored unless the round is awaiting input with a path.
//   - Match: progress grows; the last match completes the round.
//   - Mismatch: the round fails and its path is cleared, so every later
//     submission is ignored until a new round starts.
func (r Round) Submit(cell int) (Outcome, Round) {
	if r.Phase != PhaseAwaiting || len(r.Path) == 0 {
		return OutcomeIgnored, r
	}

	expected := r.Path[len(r.Progress)]
	if cell != expected {
		r.Phase = PhaseFailed
		r.Path = nil
		r.WrongCell = cell
		return OutcomeWrong, r
	}

	// Clip forces append to allocate, so the receiver's slice is untouched.
	r.Progress = append(slices.Clip(r.Progress), cell)
	if len(r.Progress) == len(r.Path) {
		r.Phase = PhaseSuccess
		return OutcomeComplete, r
	}
	return OutcomeCorrect, r
}

// Locked reports whether the path is still on display.
func (r Round) Locked() bool { return r.Phase == PhaseDisplaying }

// Active reports whether the round still has a path to play against.
func (r Round) Active() bool {
	return len(r.Path) > 0 && (r.Phase == PhaseDisplaying || r.Phase == PhaseAwaiting)
}

// Remaining is the number of cells still to be clicked.
func (r Round) Remaining() int {
	if !r.Active() {
		return 0
	}
	return len(r.Path) - len(r.Progress)
}

// Status is the player-facing status line for the round's phase.
func (r Round) Status() string {
	switch r.Phase {
	case PhaseDisplaying:
		return "Memorize the path!"
	case PhaseAwaiting:
		return "Your turn! Replicate the sequence."
	case PhaseSuccess:
		return "Success! Path completed."
	case PhaseFailed:
		return "Incorrect sequence. Try again!"
	default:
		return "Press start to play."
	}
}

// CurrentPhase returns the phase, treating the zero Round as idle.
func (r Round) CurrentPhase() Phase {
	if r.Phase == "" {
		return PhaseIdle
	}
	return r.Phase
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
