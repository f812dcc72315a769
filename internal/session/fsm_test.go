package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/celestialwok/internal/domain"
)

func TestTransitionHappyPath(t *testing.T) {
	const steps = 3
	s, i := domain.StateLoadingDetails, 0

	walk := []struct {
		event Event
		state domain.SessionState
		index int
	}{
		{EventDetailsLoaded, domain.StateIntro, 0},
		{EventAdvance, domain.StateIngredients, 0},
		{EventAdvance, domain.StateCooking, 0},
		{EventAdvance, domain.StateCooking, 1},
		{EventAdvance, domain.StateCooking, 2},
		{EventAdvance, domain.StateFinished, 2},
		{EventSubmitPhoto, domain.StateGrading, 2},
		{EventGraded, domain.StateGradingResult, 2},
		{EventExit, domain.StateClosed, 0},
	}

	for _, w := range walk {
		var err error
		s, i, err = Transition(s, i, steps, w.event)
		require.NoError(t, err, "event %s", w.event)
		require.Equal(t, w.state, s, "event %s", w.event)
		require.Equal(t, w.index, i, "event %s", w.event)
	}
}

func TestTransitionCookingEdges(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		steps     int
		event     Event
		wantState domain.SessionState
		wantIndex int
	}{
		{"retreat at first step returns to ingredients", 0, 3, EventRetreat, domain.StateIngredients, 0},
		{"retreat mid recipe", 2, 3, EventRetreat, domain.StateCooking, 1},
		{"advance at last step finishes", 2, 3, EventAdvance, domain.StateFinished, 2},
		{"single step recipe finishes", 0, 1, EventAdvance, domain.StateFinished, 0},
		{"advance mid recipe", 0, 3, EventAdvance, domain.StateCooking, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, i, err := Transition(domain.StateCooking, tc.index, tc.steps, tc.event)
			require.NoError(t, err)
			require.Equal(t, tc.wantState, s)
			require.Equal(t, tc.wantIndex, i)
		})
	}
}

func TestTransitionGradingFailureReturnsToFinished(t *testing.T) {
	s, _, err := Transition(domain.StateGrading, 4, 5, EventGradeFailed)
	require.NoError(t, err)
	require.Equal(t, domain.StateFinished, s)
}

func TestTransitionExitFromAnyNonTerminal(t *testing.T) {
	states := []domain.SessionState{
		domain.StateLoadingDetails, domain.StateIntro, domain.StateIngredients,
		domain.StateCooking, domain.StateFinished, domain.StateGrading, domain.StateGradingResult,
	}
	for _, state := range states {
		next, _, err := Transition(state, 0, 2, EventExit)
		require.NoError(t, err)
		require.Equal(t, domain.StateClosed, next, "from %s", state)
	}
}

func TestTransitionInvalid(t *testing.T) {
	tests := []struct {
		name  string
		state domain.SessionState
		event Event
	}{
		{"intro retreat", domain.StateIntro, EventRetreat},
		{"ingredients retreat", domain.StateIngredients, EventRetreat},
		{"loading advance", domain.StateLoadingDetails, EventAdvance},
		{"cooking photo", domain.StateCooking, EventSubmitPhoto},
		{"finished advance", domain.StateFinished, EventAdvance},
		{"grading advance", domain.StateGrading, EventAdvance},
		{"result advance", domain.StateGradingResult, EventAdvance},
		{"intro graded", domain.StateIntro, EventGraded},
		{"closed exit", domain.StateClosed, EventExit},
		{"failed advance", domain.StateFailed, EventAdvance},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, idx, err := Transition(tc.state, 1, 3, tc.event)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid transition")
			require.Equal(t, tc.state, next)
			require.Equal(t, 1, idx)
		})
	}
}
