package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/altynbek07/cafe-order-bot/internal/bot/keyboard"
	"github.com/altynbek07/cafe-order-bot/internal/flow"
	"github.com/altynbek07/cafe-order-bot/pkg/logger"
)

// Machine is the subset of the order flow controller the transport needs.
type Machine interface {
	Handle(ctx context.Context, userID int64, ev flow.Event) ([]flow.Reply, error)
}

// NewEventHandler adapts telebot updates into flow events: callbacks become
// button presses, plain messages become free text. Replies are sent back in
// order with their keyboards.
func NewEventHandler(machine Machine, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("event handler invoked without sender")
			return nil
		}

		var ev flow.Event
		if cb := c.Callback(); cb != nil {
			ev = flow.ButtonPress(callbackToken(cb))
		} else {
			ev = flow.FreeText(c.Text())
		}

		return dispatch(machine, kb, log, c, ev)
	}
}

// NewCancelHandler routes /cancel through the flow machine so cancellation
// behaves identically to the inline cancel button.
func NewCancelHandler(machine Machine, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			log.Warn("cancel handler invoked without sender")
			return nil
		}

		return dispatch(machine, kb, log, c, flow.ButtonPress(flow.TokenCancelOrder))
	}
}

func dispatch(machine Machine, kb *keyboard.Builder, log *slog.Logger, c telebot.Context, ev flow.Event) error {
	ctx := logger.WithCorrelationID(context.Background(), logger.NewCorrelationID())

	replies, err := machine.Handle(ctx, c.Sender().ID, ev)
	if err != nil {
		return err
	}

	if cb := c.Callback(); cb != nil {
		if respondErr := c.Respond(); respondErr != nil {
			log.Warn("failed to acknowledge callback", slog.Any("error", respondErr))
		}
	}

	for _, reply := range replies {
		if markup := kb.Markup(reply.Choices); markup != nil {
			if err := c.Send(reply.Text, markup); err != nil {
				return err
			}
			continue
		}

		if err := c.Send(reply.Text); err != nil {
			return err
		}
	}

	return nil
}

// callbackToken strips telebot's callback framing from the payload.
func callbackToken(cb *telebot.Callback) string {
	data := cb.Data
	if len(data) > 0 && data[0] == '\f' {
		data = data[1:]
	}

	return data
}
