// Package keyboard renders flow choices into telebot inline keyboards.
package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/altynbek07/cafe-order-bot/internal/flow"
	"github.com/altynbek07/cafe-order-bot/internal/i18n"
)

// Builder creates inline keyboards from flow reply choices.
type Builder struct {
	tr  i18n.Translator
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(tr i18n.Translator, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}

	return &Builder{
		tr:  tr,
		log: log,
	}
}

// Markup converts flow choice rows into telebot inline markup. Returns nil
// when there are no choices, so callers can pass the result straight to Send.
func (b *Builder) Markup(choices [][]flow.Choice) *telebot.ReplyMarkup {
	if len(choices) == 0 {
		return nil
	}

	rows := make([][]telebot.InlineButton, 0, len(choices))
	for _, row := range choices {
		if len(row) == 0 {
			b.log.Warn("skipping empty keyboard row")
			continue
		}

		buttons := make([]telebot.InlineButton, 0, len(row))
		for _, choice := range row {
			buttons = append(buttons, telebot.InlineButton{
				Text: choice.Label,
				Data: choice.Token,
			})
		}
		rows = append(rows, buttons)
	}

	if len(rows) == 0 {
		return nil
	}

	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}

// StartMenu builds the entry keyboard shown after /start.
func (b *Builder) StartMenu() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{
		InlineKeyboard: [][]telebot.InlineButton{
			{
				{
					Text: b.tr.T("buttons.continue"),
					Data: flow.TokenContinue,
				},
			},
			{
				{
					Text: b.tr.T("buttons.cancel"),
					Data: flow.TokenCancelOrder,
				},
			},
		},
	}
}
