package flow

import (
	"strings"
	"testing"
)

func TestItemToken(t *testing.T) {
	token, err := ItemToken("Чай")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "item:Чай" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestItemToken_TooLong(t *testing.T) {
	name := strings.Repeat("x", TokenLimitBytes)

	if _, err := ItemToken(name); err == nil {
		t.Fatal("expected error for oversized token")
	}
}

func TestParseToken(t *testing.T) {
	testCases := []struct {
		name    string
		token   string
		kind    string
		payload string
	}{
		{"item token", "item:Кофе", "item", "Кофе"},
		{"date token", "date:16.03.2025", "date", "16.03.2025"},
		{"plain token", "confirm_order", "confirm_order", ""},
		{"payload with separator", "item:a:b", "item", "a:b"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			kind, payload := ParseToken(tc.token)
			if kind != tc.kind || payload != tc.payload {
				t.Fatalf("ParseToken(%q) = (%q, %q), want (%q, %q)", tc.token, kind, payload, tc.kind, tc.payload)
			}
		})
	}
}
