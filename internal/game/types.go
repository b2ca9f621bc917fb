// internal/game/types.go
//
// Core type definitions for the path memory game.
// Defines:
//   - Phase: where a round sits in its lifecycle.
//   - Outcome: the result of submitting one clicked cell.
//   - Round: the full state of one round, handled as a value.

package game

import "time"

// Phase is the lifecycle position of a round.
//
//	idle → displaying → awaiting_input → success | failed
//
// Only NewRound moves a round (back) into displaying.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDisplaying Phase = "displaying"
	PhaseAwaiting   Phase = "awaiting_input"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// Outcome is the result of a single submission.
//   - "ignored":  the round was locked, finished or never started.
//   - "correct":  the cell matched and more cells are expected.
//   - "wrong":    the cell did not match; the round is over.
//   - "complete": the cell matched and finished the path.
type Outcome string

const (
	OutcomeIgnored  Outcome = "ignored"
	OutcomeCorrect  Outcome = "correct"
	OutcomeWrong    Outcome = "wrong"
	OutcomeComplete Outcome = "complete"
)

// Round holds the state of one round. Methods take and return values; a
// Round is never changed in place, so copies can be shared freely.
type Round struct {
	ID        string    // Unique round identifier (random hex string).
	Path      []int     // Target cells in order; cleared when the round fails.
	Progress  []int     // Cells clicked correctly so far.
	Phase     Phase     // Lifecycle position.
	WrongCell int       // Cell of the failing click, -1 otherwise.
	StartedAt time.Time // When the round was generated.
}
