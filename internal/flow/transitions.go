package flow

// validTransitions lists the forward transitions of the ordering flow. A
// transition back to StepAwaitingCategory is always allowed: that is the
// cancellation path, a session reset rather than a separate state.
var validTransitions = map[Step][]Step{
	StepAwaitingCategory: {
		StepSelectingItems,
	},
	StepSelectingItems: {
		StepSelectingDates,
	},
	StepSelectingDates: {
		StepAwaitingConfirmation,
	},
	StepAwaitingConfirmation: {
		StepAwaitingEmail,
	},
	StepAwaitingEmail: {
		StepCompleted,
	},
}

// IsTransitionAllowed reports whether moving from one step to another is valid.
func IsTransitionAllowed(from, to Step) bool {
	if to == StepAwaitingCategory {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, step := range allowed {
		if step == to {
			return true
		}
	}

	return false
}

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe step
// transitions, e.g. for metrics.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}
