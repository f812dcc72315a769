package domain

import "time"

// SessionState is the single active stage of a cooking session.
type SessionState int

const (
	StateLoadingDetails SessionState = iota
	StateIntro
	StateIngredients
	StateCooking
	StateFinished
	StateGrading
	StateGradingResult
	// StateFailed is terminal: the recipe detail could not be loaded.
	StateFailed
	// StateClosed is terminal: the user left the session.
	StateClosed
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateLoadingDetails:
		return "loading_details"
	case StateIntro:
		return "intro"
	case StateIngredients:
		return "ingredients"
	case StateCooking:
		return "cooking"
	case StateFinished:
		return "finished"
	case StateGrading:
		return "grading"
	case StateGradingResult:
		return "grading_result"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s SessionState) Terminal() bool {
	return s == StateFailed || s == StateClosed
}

// Snapshot is a read-only view of a session, published after every
// transition.
type Snapshot struct {
	ID         string
	RecipeName string
	State      SessionState
	StepIndex  int
	StepCount  int
	Detail     *RecipeDetail  // nil until loaded
	Result     *GradingResult // set only in StateGradingResult
	Err        error          // set only in StateFailed
	StartedAt  time.Time
	UpdatedAt  time.Time

	// Visuals maps image prompts to resolved references. An empty
	// reference marks a placeholder.
	Visuals map[string]string
}

// CurrentStep returns the active step while cooking.
func (s *Snapshot) CurrentStep() (CookingStep, bool) {
	if s.State != StateCooking || s.Detail == nil {
		return CookingStep{}, false
	}
	if s.StepIndex < 0 || s.StepIndex >= len(s.Detail.Steps) {
		return CookingStep{}, false
	}
	return s.Detail.Steps[s.StepIndex], true
}
