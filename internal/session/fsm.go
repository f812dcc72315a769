// Package session drives a guided cooking session: a pure transition
// table plus an event-loop controller that runs each state's entry
// actions.
package session

import (
	"fmt"

	"github.com/hammamikhairi/celestialwok/internal/domain"
)

// Event is an input to the session state machine.
type Event string

const (
	EventDetailsLoaded Event = "details_loaded"
	EventDetailsFailed Event = "details_failed"
	EventAdvance       Event = "advance"
	EventRetreat       Event = "retreat"
	EventSubmitPhoto   Event = "submit_photo"
	EventGraded        Event = "graded"
	EventGradeFailed   Event = "grade_failed"
	EventExit          Event = "exit"

	// EventReplay re-issues the current narration. It never changes state
	// and is handled by the controller, not the table.
	EventReplay Event = "replay"
)

// Transition returns the state and step index that follow event. steps is
// the number of cooking steps in the loaded recipe. On an invalid event
// the current position is returned with an error.
func Transition(current domain.SessionState, index, steps int, event Event) (domain.SessionState, int, error) {
	if current.Terminal() {
		return current, index, invalidTransition(current, event)
	}
	if event == EventExit {
		return domain.StateClosed, 0, nil
	}

	switch current {
	case domain.StateLoadingDetails:
		switch event {
		case EventDetailsLoaded:
			return domain.StateIntro, 0, nil
		case EventDetailsFailed:
			return domain.StateFailed, 0, nil
		}
	case domain.StateIntro:
		if event == EventAdvance {
			return domain.StateIngredients, 0, nil
		}
	case domain.StateIngredients:
		if event == EventAdvance {
			return domain.StateCooking, 0, nil
		}
	case domain.StateCooking:
		switch event {
		case EventAdvance:
			if index < steps-1 {
				return domain.StateCooking, index + 1, nil
			}
			return domain.StateFinished, index, nil
		case EventRetreat:
			if index == 0 {
				return domain.StateIngredients, 0, nil
			}
			return domain.StateCooking, index - 1, nil
		}
	case domain.StateFinished:
		if event == EventSubmitPhoto {
			return domain.StateGrading, index, nil
		}
	case domain.StateGrading:
		switch event {
		case EventGraded:
			return domain.StateGradingResult, index, nil
		case EventGradeFailed:
			return domain.StateFinished, index, nil
		}
	case domain.StateGradingResult:
		// Only EventExit, handled above.
	default:
		return current, index, fmt.Errorf("unknown state %q", current)
	}

	return current, index, invalidTransition(current, event)
}

func invalidTransition(state domain.SessionState, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
