package client

import (
	"errors"

	"github.com/google/uuid"
)

// MutationState tracks where an optimistic mutation is in its lifecycle.
type MutationState string

const (
	// StatePredicted means the UI is showing a locally computed guess
	// and the server has not answered yet.
	StatePredicted MutationState = "predicted"

	// StateConfirmed means the server's authoritative payload has
	// replaced the prediction.
	StateConfirmed MutationState = "confirmed"

	// StateRolledBack means the mutation failed and the view reverted
	// to the pre-mutation snapshot.
	StateRolledBack MutationState = "rolled_back"
)

// ErrMutationSettled is returned when Confirm or Fail is called on a
// mutation that already left the predicted state.
var ErrMutationSettled = errors.New("mutation already settled")

// Mutation is one optimistic update. The caller snapshots the current
// view, predicts the post-mutation view, renders the prediction, then
// settles the mutation with the server's answer.
//
// A mutation whose request timed out must NOT be retried blindly:
// toggle semantics mean a retry of a request that actually landed flips
// the state a second time. Leave the mutation predicted and call the
// corresponding read operation (thread, summary, attendance) to learn
// the authoritative state, then Confirm with it.
type Mutation[T any] struct {
	token     string
	state     MutationState
	baseline  T
	predicted T
	confirmed T
}

// Begin starts an optimistic mutation from the current view and the
// locally predicted outcome.
func Begin[T any](current, predicted T) *Mutation[T] {
	return &Mutation[T]{
		token:     uuid.NewString(),
		state:     StatePredicted,
		baseline:  current,
		predicted: predicted,
	}
}

// Token identifies this mutation attempt, e.g. for logging.
func (m *Mutation[T]) Token() string { return m.token }

// State returns the mutation's current lifecycle state.
func (m *Mutation[T]) State() MutationState { return m.state }

// View returns what the UI should render right now: the prediction
// while pending, the server's payload once confirmed, the pre-mutation
// snapshot after a rollback.
func (m *Mutation[T]) View() T {
	switch m.state {
	case StateConfirmed:
		return m.confirmed
	case StateRolledBack:
		return m.baseline
	default:
		return m.predicted
	}
}

// Confirm settles the mutation with the server's authoritative payload.
// The payload replaces the prediction wholesale; predicted fields are
// never merged in.
func (m *Mutation[T]) Confirm(authoritative T) error {
	if m.state != StatePredicted {
		return ErrMutationSettled
	}
	m.confirmed = authoritative
	m.state = StateConfirmed
	return nil
}

// Fail rolls the mutation back to the pre-mutation snapshot.
func (m *Mutation[T]) Fail() error {
	if m.state != StatePredicted {
		return ErrMutationSettled
	}
	m.state = StateRolledBack
	return nil
}
