package flow

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name    string
		from    Step
		to      Step
		allowed bool
	}{
		{"category to items", StepAwaitingCategory, StepSelectingItems, true},
		{"items to dates", StepSelectingItems, StepSelectingDates, true},
		{"dates to confirmation", StepSelectingDates, StepAwaitingConfirmation, true},
		{"confirmation to email", StepAwaitingConfirmation, StepAwaitingEmail, true},
		{"email to completed", StepAwaitingEmail, StepCompleted, true},
		{"skip items", StepAwaitingCategory, StepSelectingDates, false},
		{"skip to completed", StepSelectingItems, StepCompleted, false},
		{"backwards", StepAwaitingEmail, StepSelectingDates, false},
		{"completed is terminal", StepCompleted, StepAwaitingEmail, false},
		{"cancel from items", StepSelectingItems, StepAwaitingCategory, true},
		{"cancel from email", StepAwaitingEmail, StepAwaitingCategory, true},
		{"cancel from completed", StepCompleted, StepAwaitingCategory, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransitionAllowed(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("IsTransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestRegisterTransitionRecorder(t *testing.T) {
	defer RegisterTransitionRecorder(nil)

	var recorded [][2]string
	RegisterTransitionRecorder(func(from, to string) {
		recorded = append(recorded, [2]string{from, to})
	})

	transitionRecorder(string(StepAwaitingCategory), string(StepSelectingItems))

	if len(recorded) != 1 {
		t.Fatalf("expected 1 recorded transition, got %d", len(recorded))
	}
	if recorded[0][0] != "awaiting_category" || recorded[0][1] != "selecting_items" {
		t.Fatalf("unexpected transition recorded: %v", recorded[0])
	}
}
