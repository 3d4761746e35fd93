// Package bot wires the Telegram transport to the order flow machine.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/altynbek07/cafe-order-bot/internal/apperr"
	"github.com/altynbek07/cafe-order-bot/internal/bot/handlers"
	"github.com/altynbek07/cafe-order-bot/internal/bot/keyboard"
	"github.com/altynbek07/cafe-order-bot/internal/flow"
	"github.com/altynbek07/cafe-order-bot/internal/i18n"
	"github.com/altynbek07/cafe-order-bot/pkg/config"
)

const (
	CommandStart  = "/start"
	CommandCancel = "/cancel"
)

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot    *telebot.Bot
	log        *slog.Logger
	cfg        config.Config
	machine    handlers.Machine
	router     *Router
	keyboard   *keyboard.Builder
	errHandler *apperr.Handler
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	machine handlers.Machine,
	tr i18n.Translator,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: ":" + cfg.Server.Port,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: cfg.Bot.URL,
			},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(tr, log)
	router := NewRouter(log)
	errHandler := apperr.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:    tb,
		log:        log,
		cfg:        cfg,
		machine:    machine,
		router:     router,
		keyboard:   kb,
		errHandler: errHandler,
	}

	b.setupRouter(tr)
	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter(tr i18n.Translator) {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(MetricsMiddleware)

	eventHandler := handlers.NewEventHandler(b.machine, b.keyboard, b.log)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(tr, b.keyboard, b.log))
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(b.machine, b.keyboard, b.log))

	// Every order flow token routes into the machine; the keyboard only ever
	// emits tokens from this set.
	for _, prefix := range []string{
		flow.TokenContinue,
		flow.TokenNextStep,
		flow.TokenConfirmDates,
		flow.TokenConfirmOrder,
		flow.TokenCancelOrder,
		flow.TokenKindItem + flow.TokenSeparator,
		flow.TokenKindDate + flow.TokenSeparator,
	} {
		b.router.RegisterCallback(prefix, handlers.CallbackHandler(eventHandler))
	}

	// Free text is always interpreted by the current flow step.
	b.router.SetDefault(eventHandler)
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
