package i18n

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMessages(t *testing.T, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeMessages(t, dir, "ru.yaml", "flow:\n  busy: \"Занято\"\n  step_hint:\n    awaiting_email: \"введите email\"\n")
	writeMessages(t, dir, "en.yaml", "flow:\n  busy: \"Busy\"\n")

	m, err := LoadFromDir(dir, "ru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr := m.Translator("ru")
	if got := tr.T("flow.busy"); got != "Занято" {
		t.Fatalf("expected Занято, got %q", got)
	}
	if got := tr.T("flow.step_hint.awaiting_email"); got != "введите email" {
		t.Fatalf("nested keys must flatten, got %q", got)
	}
}

func TestTranslator_Fallbacks(t *testing.T) {
	dir := t.TempDir()
	writeMessages(t, dir, "ru.yaml", "flow:\n  busy: \"Занято\"\n")
	writeMessages(t, dir, "en.yaml", "greeting: \"Hello\"\n")

	m, err := LoadFromDir(dir, "ru")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Missing key in the requested language falls back to the default.
	en := m.Translator("en")
	if got := en.T("flow.busy"); got != "Занято" {
		t.Fatalf("expected default-language fallback, got %q", got)
	}

	// Unknown language falls back to the default language entirely.
	de := m.Translator("de")
	if de.Lang() != "ru" {
		t.Fatalf("expected fallback to ru, got %s", de.Lang())
	}

	// A key absent everywhere stays visible as itself.
	if got := en.T("flow.missing"); got != "flow.missing" {
		t.Fatalf("missing key must return the key, got %q", got)
	}
}

func TestLoadFromDir_MissingDefaultLang(t *testing.T) {
	dir := t.TempDir()
	writeMessages(t, dir, "en.yaml", "greeting: \"Hello\"\n")

	if _, err := LoadFromDir(dir, "ru"); err == nil {
		t.Fatal("expected error when default language file is missing")
	}
}
