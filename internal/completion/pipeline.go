// Package completion runs the terminal side effects of a confirmed order:
// persist the client, persist per-date orders, render the receipt and email it.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/altynbek07/cafe-order-bot/internal/apperr"
	"github.com/altynbek07/cafe-order-bot/internal/flow"
	"github.com/altynbek07/cafe-order-bot/internal/i18n"
	"github.com/altynbek07/cafe-order-bot/internal/idempotency"
	"github.com/altynbek07/cafe-order-bot/internal/receipt"
	"github.com/altynbek07/cafe-order-bot/internal/repository"
)

const idempotencyTTL = 24 * time.Hour

// Completion outcome labels reported through the outcome recorder.
const (
	OutcomeSuccess           = "success"
	OutcomePersistenceFailed = "persistence_failed"
	OutcomeRenderFailed      = "render_failed"
	OutcomeDeliveryFailed    = "delivery_failed"
)

var outcomeRecorder = func(outcome string) {}

// RegisterOutcomeRecorder allows external packages to observe completion
// outcomes, e.g. for metrics. Cached replays are not reported, only real runs.
func RegisterOutcomeRecorder(recorder func(outcome string)) {
	if recorder == nil {
		outcomeRecorder = func(string) {}
		return
	}

	outcomeRecorder = recorder
}

// Renderer produces the receipt document for a completed order.
type Renderer interface {
	Render(data receipt.Data) ([]byte, error)
}

// Sender delivers the rendered receipt to the client's email.
type Sender interface {
	Send(ctx context.Context, email string, document []byte) error
}

// Pipeline implements flow.Completer. Persistence failures abort completion,
// rendering and delivery failures do not: by then the order is already
// recorded, so they only degrade the result.
type Pipeline struct {
	clients  repository.ClientRepository
	orders   repository.OrderRepository
	renderer Renderer
	sender   Sender
	idem     idempotency.Manager
	tr       i18n.Translator
	log      *slog.Logger
}

// NewPipeline creates the completion pipeline. The idempotency manager is
// optional; pass nil to run every completion unconditionally.
func NewPipeline(
	clients repository.ClientRepository,
	orders repository.OrderRepository,
	renderer Renderer,
	sender Sender,
	idem idempotency.Manager,
	tr i18n.Translator,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		clients:  clients,
		orders:   orders,
		renderer: renderer,
		sender:   sender,
		idem:     idem,
		tr:       tr,
		log:      log,
	}
}

// Complete runs the pipeline for the session. Duplicate submissions of the
// same order replay the recorded result instead of inserting twice.
func (p *Pipeline) Complete(ctx context.Context, session *flow.Session) (*flow.CompletionResult, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	if p.idem == nil {
		return p.run(ctx, session)
	}

	key := idempotency.CompletionKey(session.UserID, session.Email, session.FinalTotal, session.Dates)
	execution, err := p.idem.Execute(ctx, key, idempotencyTTL, func(ctx context.Context) (interface{}, error) {
		return p.run(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	var result flow.CompletionResult
	if err := json.Unmarshal(execution.Response, &result); err != nil {
		return nil, fmt.Errorf("decode completion result: %w", err)
	}

	if execution.FromCache {
		p.log.Info("completion replayed from idempotency cache",
			slog.Int64("user_id", session.UserID),
			slog.String("key", key))
	}

	return &result, nil
}

func (p *Pipeline) run(ctx context.Context, session *flow.Session) (*flow.CompletionResult, error) {
	clientID, err := p.clients.Upsert(ctx, session.Email)
	if err != nil {
		outcomeRecorder(OutcomePersistenceFailed)
		return nil, apperr.NewPersistence(p.tr.T("completion.persistence_failed"), err)
	}

	orders, err := buildOrders(clientID, session)
	if err != nil {
		outcomeRecorder(OutcomePersistenceFailed)
		return nil, apperr.NewPersistence(p.tr.T("completion.persistence_failed"), err)
	}

	if err := p.orders.InsertBatch(ctx, orders); err != nil {
		outcomeRecorder(OutcomePersistenceFailed)
		return nil, apperr.NewPersistence(p.tr.T("completion.persistence_failed"), err)
	}

	result := &flow.CompletionResult{
		ClientID: clientID,
		Orders:   len(orders),
	}

	document, err := p.renderer.Render(receipt.Data{
		Items:      session.Items,
		DailyTotal: session.DailyTotal(),
		DateCount:  len(session.Dates),
		FinalTotal: session.FinalTotal,
		Dates:      session.Dates,
	})
	if err != nil {
		// The order is recorded, only the receipt is missing. Surface it
		// to operators and let the session complete.
		renderErr := apperr.NewRendering(p.tr.T("completion.render_failed"), err)
		p.log.Error("receipt rendering failed",
			slog.Int64("user_id", session.UserID),
			slog.Int64("client_id", clientID),
			slog.Any("error", renderErr))
		outcomeRecorder(OutcomeRenderFailed)
		return result, nil
	}
	result.ReceiptRendered = true

	sendErr := apperr.WithRetry(ctx, func() error {
		if err := p.sender.Send(ctx, session.Email, document); err != nil {
			return apperr.NewDelivery(p.tr.T("completion.delivery_failed"), err)
		}
		return nil
	})
	if sendErr != nil {
		p.log.Error("receipt delivery failed",
			slog.Int64("user_id", session.UserID),
			slog.Int64("client_id", clientID),
			slog.String("email", session.Email),
			slog.Any("error", sendErr))
		outcomeRecorder(OutcomeDeliveryFailed)
		return result, nil
	}
	result.ReceiptDelivered = true

	outcomeRecorder(OutcomeSuccess)

	return result, nil
}

// buildOrders splits the final total across delivery dates. Integer division
// leaves a remainder, which goes to the first date so the per-date totals sum
// exactly to the final total.
func buildOrders(clientID int64, session *flow.Session) ([]repository.Order, error) {
	if len(session.Dates) == 0 {
		return nil, fmt.Errorf("session has no delivery dates")
	}

	base := session.FinalTotal / int64(len(session.Dates))
	remainder := session.FinalTotal % int64(len(session.Dates))

	orders := make([]repository.Order, 0, len(session.Dates))
	for i, d := range session.Dates {
		deliveryDate, err := time.ParseInLocation(flow.DateLayout, d, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse delivery date %q: %w", d, err)
		}

		price := base
		if i == 0 {
			price += remainder
		}

		orders = append(orders, repository.Order{
			ClientID:     clientID,
			DeliveryDate: deliveryDate,
			Items:        session.Items,
			TotalPrice:   price,
		})
	}

	return orders, nil
}
