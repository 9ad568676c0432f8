package pipeline

import (
	"fmt"

	"go-pdf-fixtures/internal/logger"
	"go-pdf-fixtures/internal/model"
)

// IsTerminal reports whether the run state is final
func IsTerminal(s model.RunState) bool {
	return s == model.StateDone || s == model.StateFailed
}

// transition moves the tracker from one state to the next. The caller
// supplies the expected prior state so an out-of-order move is observable.
func (t *RunTracker) transition(from, to model.RunState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.summary.State
	if cur != from {
		return fmt.Errorf("invalid transition: expected %s, got %s", from, cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	t.summary.State = to
	logger.Debug("run state changed", "run", t.summary.RunID, "from", from, "to", to)
	return nil
}

func isAllowedTransition(from, to model.RunState) bool {
	switch from {
	case model.StateInit:
		return to == model.StateValidating
	case model.StateValidating:
		return to == model.StateFetching || to == model.StateFailed
	case model.StateFetching:
		// a storage error while reading rows aborts the run before any row is processed
		return to == model.StatePerRowLoop || to == model.StateFailed
	case model.StatePerRowLoop:
		return to == model.StateSummarizing
	case model.StateSummarizing:
		return to == model.StateDone
	default:
		return false
	}
}
