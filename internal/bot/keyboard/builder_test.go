package keyboard

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/altynbek07/cafe-order-bot/internal/flow"
)

type keyTranslator struct{}

func (keyTranslator) T(key string) string { return key }
func (keyTranslator) Lang() string        { return "ru" }

func testBuilder() *Builder {
	return NewBuilder(keyTranslator{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBuilder_Markup(t *testing.T) {
	b := testBuilder()

	markup := b.Markup([][]flow.Choice{
		{{Label: "Чай", Token: "item:Чай"}, {Label: "Кофе", Token: "item:Кофе"}},
		{{Label: "Далее", Token: flow.TokenNextStep}},
	})

	if markup == nil {
		t.Fatal("expected markup")
	}
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("expected 2 buttons in first row, got %d", len(markup.InlineKeyboard[0]))
	}

	btn := markup.InlineKeyboard[0][0]
	if btn.Text != "Чай" || btn.Data != "item:Чай" {
		t.Fatalf("unexpected button: %+v", btn)
	}
}

func TestBuilder_MarkupEmpty(t *testing.T) {
	b := testBuilder()

	if b.Markup(nil) != nil {
		t.Fatal("no choices must produce no markup")
	}
	if b.Markup([][]flow.Choice{{}}) != nil {
		t.Fatal("empty rows must produce no markup")
	}
}

func TestBuilder_MarkupLogsSkippedRows(t *testing.T) {
	var buf bytes.Buffer
	b := NewBuilder(keyTranslator{}, slog.New(slog.NewTextHandler(&buf, nil)))

	markup := b.Markup([][]flow.Choice{
		{},
		{{Label: "Чай", Token: "item:Чай"}},
	})

	if markup == nil || len(markup.InlineKeyboard) != 1 {
		t.Fatalf("expected only the non-empty row, got %+v", markup)
	}
	if !strings.Contains(buf.String(), "skipping empty keyboard row") {
		t.Fatalf("expected a warning about the skipped row, got %q", buf.String())
	}
}

func TestBuilder_StartMenu(t *testing.T) {
	markup := testBuilder().StartMenu()

	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(markup.InlineKeyboard))
	}
	if markup.InlineKeyboard[0][0].Data != flow.TokenContinue {
		t.Fatalf("first button must continue the flow, got %q", markup.InlineKeyboard[0][0].Data)
	}
	if markup.InlineKeyboard[1][0].Data != flow.TokenCancelOrder {
		t.Fatalf("second button must cancel, got %q", markup.InlineKeyboard[1][0].Data)
	}
}
