// Package flow implements the order conversation state machine: per-user
// sessions, the step transition table, and event handling.
package flow

import "time"

// Step is the session's position in the ordering conversation.
type Step string

const (
	// StepAwaitingCategory indicates the user has not picked a catalog category yet.
	StepAwaitingCategory Step = "awaiting_category"
	// StepSelectingItems indicates the user is adding items from the chosen category.
	StepSelectingItems Step = "selecting_items"
	// StepSelectingDates indicates the user is picking delivery dates.
	StepSelectingDates Step = "selecting_dates"
	// StepAwaitingConfirmation indicates totals are computed and the user must confirm or cancel.
	StepAwaitingConfirmation Step = "awaiting_confirmation"
	// StepAwaitingEmail indicates the order is confirmed and an email address is expected.
	StepAwaitingEmail Step = "awaiting_email"
	// StepCompleted indicates the order has been persisted.
	StepCompleted Step = "completed"
)

// SelectedItem is one picked catalog position. Re-selecting an item adds
// another entry, so the slice keeps selection order and duplicates.
type SelectedItem struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Session tracks one user's progress through the ordering flow. The store
// owns all sessions; the machine borrows one for the duration of a single
// event.
type Session struct {
	UserID     int64          `json:"user_id"`
	Step       Step           `json:"step"`
	Category   string         `json:"category,omitempty"`
	Items      []SelectedItem `json:"items,omitempty"`
	Dates      []string       `json:"dates,omitempty"`
	FinalTotal int64          `json:"final_total,omitempty"`
	Email      string         `json:"email,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewSession creates a pristine session at the start of the flow.
func NewSession(userID int64) *Session {
	return &Session{
		UserID: userID,
		Step:   StepAwaitingCategory,
	}
}

// Reset discards all selections and returns the session to its pristine
// state. The session itself survives so the user can restart without
// re-identification.
func (s *Session) Reset() {
	s.Step = StepAwaitingCategory
	s.Category = ""
	s.Items = nil
	s.Dates = nil
	s.FinalTotal = 0
	s.Email = ""
}

// DailyTotal is the sum of all selected item prices.
func (s *Session) DailyTotal() int64 {
	var total int64
	for _, item := range s.Items {
		total += item.Price
	}

	return total
}

// AddItem appends a selection. Duplicates are allowed.
func (s *Session) AddItem(name string, price int64) {
	s.Items = append(s.Items, SelectedItem{Name: name, Price: price})
}

// HasDate reports whether the delivery date is already selected.
func (s *Session) HasDate(date string) bool {
	for _, d := range s.Dates {
		if d == date {
			return true
		}
	}

	return false
}

// AddDate adds a delivery date, returning false when it is already present.
func (s *Session) AddDate(date string) bool {
	if s.HasDate(date) {
		return false
	}

	s.Dates = append(s.Dates, date)
	return true
}

// Clone returns a deep copy so stored sessions cannot be mutated through
// borrowed references.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	clone := *s

	if s.Items != nil {
		clone.Items = make([]SelectedItem, len(s.Items))
		copy(clone.Items, s.Items)
	}

	if s.Dates != nil {
		clone.Dates = make([]string, len(s.Dates))
		copy(clone.Dates, s.Dates)
	}

	return &clone
}
