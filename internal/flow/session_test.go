package flow

import "testing"

func TestSession_DailyTotal(t *testing.T) {
	s := NewSession(1)
	if s.DailyTotal() != 0 {
		t.Fatalf("empty session total should be 0, got %d", s.DailyTotal())
	}

	s.AddItem("Чай", 50)
	s.AddItem("Кофе", 120)
	s.AddItem("Чай", 50)

	if s.DailyTotal() != 220 {
		t.Fatalf("expected total 220, got %d", s.DailyTotal())
	}
	if len(s.Items) != 3 {
		t.Fatalf("re-selecting an item must add an entry, got %d items", len(s.Items))
	}
}

func TestSession_AddDate(t *testing.T) {
	s := NewSession(1)

	if !s.AddDate("16.03.2025") {
		t.Fatal("first add should succeed")
	}
	if s.AddDate("16.03.2025") {
		t.Fatal("duplicate date must be rejected")
	}
	if !s.AddDate("17.03.2025") {
		t.Fatal("distinct date should succeed")
	}
	if len(s.Dates) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(s.Dates))
	}
}

func TestSession_Reset(t *testing.T) {
	s := NewSession(7)
	s.Step = StepAwaitingEmail
	s.Category = "Напитки"
	s.AddItem("Чай", 50)
	s.AddDate("16.03.2025")
	s.FinalTotal = 100
	s.Email = "user@example.com"

	s.Reset()

	if s.Step != StepAwaitingCategory {
		t.Fatalf("expected pristine step, got %s", s.Step)
	}
	if s.Category != "" || s.Items != nil || s.Dates != nil || s.FinalTotal != 0 || s.Email != "" {
		t.Fatalf("reset left selections behind: %+v", s)
	}
	if s.UserID != 7 {
		t.Fatal("reset must not change the session owner")
	}
}

func TestSession_Clone(t *testing.T) {
	s := NewSession(1)
	s.AddItem("Чай", 50)
	s.AddDate("16.03.2025")

	clone := s.Clone()
	clone.Items[0].Name = "Кофе"
	clone.Dates[0] = "17.03.2025"

	if s.Items[0].Name != "Чай" || s.Dates[0] != "16.03.2025" {
		t.Fatal("mutating the clone must not affect the original")
	}
}
