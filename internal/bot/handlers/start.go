package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/altynbek07/cafe-order-bot/internal/bot/keyboard"
	"github.com/altynbek07/cafe-order-bot/internal/i18n"
)

// NewStartHandler greets the user and offers the entry keyboard.
func NewStartHandler(tr i18n.Translator, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("start handler invoked without sender")
			return nil
		}

		return c.Send(tr.T("start.greeting"), kb.StartMenu())
	}
}
