package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/altynbek07/cafe-order-bot/internal/apperr"
	"github.com/altynbek07/cafe-order-bot/internal/catalog"
	"github.com/altynbek07/cafe-order-bot/internal/i18n"
)

const (
	sessionLockKeyPattern = "order:lock:%d"
	lockTTL               = 5 * time.Second
)

// ErrSessionLocked indicates a concurrent event for the same user is being
// processed. Events within one session are strictly serialized.
var ErrSessionLocked = errors.New("session is locked, try again later")

// CompletionResult reports what the completion pipeline managed to do.
// Rendering and delivery are best effort once the order is persisted.
type CompletionResult struct {
	ClientID         int64 `json:"client_id"`
	Orders           int   `json:"orders"`
	ReceiptRendered  bool  `json:"receipt_rendered"`
	ReceiptDelivered bool  `json:"receipt_delivered"`
}

// Completer runs the terminal side effects once an order is confirmed and an
// email is supplied: persist client, persist orders, render and send the
// receipt.
type Completer interface {
	Complete(ctx context.Context, session *Session) (*CompletionResult, error)
}

// Machine validates inbound events against the session's current step,
// mutates the session, and produces outbound replies. It owns no session
// state itself; sessions live in the Store.
type Machine struct {
	store       Store
	catalog     *catalog.Catalog
	resolver    *catalog.Resolver
	completer   Completer
	tr          i18n.Translator
	redisClient *redis.Client
	now         func() time.Time
	log         *slog.Logger
}

// NewMachine creates the order flow controller. The redis client is used for
// per-user event locks; pass nil to disable locking in single-writer setups.
func NewMachine(
	store Store,
	cat *catalog.Catalog,
	resolver *catalog.Resolver,
	completer Completer,
	tr i18n.Translator,
	redisClient *redis.Client,
	log *slog.Logger,
) *Machine {
	if log == nil {
		log = slog.Default()
	}

	return &Machine{
		store:       store,
		catalog:     cat,
		resolver:    resolver,
		completer:   completer,
		tr:          tr,
		redisClient: redisClient,
		now:         time.Now,
		log:         log,
	}
}

// Handle processes one inbound event for the user, serialized per session.
// The returned error is an *apperr.AppError for every expected rejection, so
// the transport layer can render its UserMessage directly.
func (m *Machine) Handle(ctx context.Context, userID int64, ev Event) ([]Reply, error) {
	if err := m.lock(ctx, userID); err != nil {
		if errors.Is(err, ErrSessionLocked) {
			return nil, apperr.NewLocked(m.tr.T("flow.busy"))
		}
		return nil, err
	}
	defer m.unlock(ctx, userID)

	session, err := m.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		session = NewSession(userID)
	}

	replies, err := m.dispatch(ctx, session, ev)
	if err != nil {
		// Rejected events leave the session untouched, nothing to save.
		return nil, err
	}

	if session.Step == StepCompleted {
		// A completed order ends the session's lifetime.
		if err := m.store.Clear(ctx, userID); err != nil {
			m.log.Error("failed to clear completed session", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return replies, nil
	}

	if err := m.store.Set(ctx, userID, session); err != nil {
		return nil, err
	}

	return replies, nil
}

func (m *Machine) dispatch(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	if ev.Kind == EventButton {
		kind, _ := ParseToken(ev.Token)
		if kind == TokenCancelOrder {
			return m.handleCancel(s), nil
		}
	}

	switch s.Step {
	case StepAwaitingCategory:
		return m.handleAwaitingCategory(s, ev)
	case StepSelectingItems:
		return m.handleSelectingItems(s, ev)
	case StepSelectingDates:
		return m.handleSelectingDates(s, ev)
	case StepAwaitingConfirmation:
		return m.handleAwaitingConfirmation(s, ev)
	case StepAwaitingEmail:
		return m.handleAwaitingEmail(ctx, s, ev)
	default:
		return nil, m.outOfStep(s)
	}
}

// handleCancel resets the session from any step; cancellation is a reset,
// not a separate state.
func (m *Machine) handleCancel(s *Session) []Reply {
	transitionRecorder(string(s.Step), string(StepAwaitingCategory))
	s.Reset()

	return []Reply{{Text: m.tr.T("flow.cancelled")}}
}

func (m *Machine) handleAwaitingCategory(s *Session, ev Event) ([]Reply, error) {
	if ev.Kind == EventButton {
		kind, _ := ParseToken(ev.Token)
		if kind == TokenContinue {
			categories := strings.Join(m.catalog.Categories(), ", ")
			return []Reply{{Text: fmt.Sprintf(m.tr.T("flow.choose_category"), categories)}}, nil
		}

		return nil, m.outOfStep(s)
	}

	input := strings.TrimSpace(ev.Text)

	// Exact names skip the fuzzy pass.
	category, ok := input, m.catalog.HasCategory(input)
	if !ok {
		category, ok = m.resolver.Resolve(input, m.catalog.Categories())
	}
	if !ok {
		categories := strings.Join(m.catalog.Categories(), ", ")
		return nil, apperr.NewInvalidInput(fmt.Sprintf(m.tr.T("flow.category_not_found"), categories))
	}

	s.Category = category
	s.Items = nil
	if err := m.transition(s, StepSelectingItems); err != nil {
		return nil, err
	}

	return []Reply{
		{Text: fmt.Sprintf(m.tr.T("flow.category_selected"), category)},
		{Text: m.tr.T("flow.choose_item"), Choices: m.itemChoices(category, false)},
	}, nil
}

func (m *Machine) handleSelectingItems(s *Session, ev Event) ([]Reply, error) {
	if ev.Kind != EventButton {
		return nil, m.outOfStep(s)
	}

	kind, payload := ParseToken(ev.Token)
	switch kind {
	case TokenKindItem:
		price, ok := m.catalog.Price(s.Category, payload)
		if !ok {
			return nil, apperr.NewInvalidInput(m.tr.T("flow.unknown_item"))
		}

		s.AddItem(payload, price)

		text := fmt.Sprintf(m.tr.T("flow.item_selected"), payload, price) + "\n\n" +
			fmt.Sprintf(m.tr.T("flow.cart"), itemLines(m.tr, s.Items), s.DailyTotal())

		return []Reply{
			{Text: text},
			{Text: m.tr.T("flow.choose_item_or_next"), Choices: m.itemChoices(s.Category, true)},
		}, nil

	case TokenNextStep:
		if len(s.Items) == 0 {
			return nil, apperr.NewInvalidInput(m.tr.T("flow.need_items"))
		}

		if err := m.transition(s, StepSelectingDates); err != nil {
			return nil, err
		}

		return []Reply{
			{Text: fmt.Sprintf(m.tr.T("flow.cart"), itemLines(m.tr, s.Items), s.DailyTotal())},
			{Text: m.tr.T("flow.choose_dates"), Choices: m.dateChoices()},
		}, nil

	default:
		return nil, m.outOfStep(s)
	}
}

func (m *Machine) handleSelectingDates(s *Session, ev Event) ([]Reply, error) {
	if ev.Kind != EventButton {
		return nil, m.outOfStep(s)
	}

	kind, payload := ParseToken(ev.Token)
	switch kind {
	case TokenKindDate:
		// Window and format checks come first: an out-of-window date is
		// invalid input even if it happens to be a duplicate.
		date, err := ParseDeliveryDate(payload, m.now())
		if err != nil {
			return nil, apperr.NewInvalidInput(m.tr.T("flow.date_invalid"))
		}

		if !s.AddDate(date) {
			return nil, apperr.NewInvalidInput(fmt.Sprintf(m.tr.T("flow.date_duplicate"), date))
		}

		return []Reply{{Text: fmt.Sprintf(m.tr.T("flow.date_selected"), date)}}, nil

	case TokenConfirmDates:
		if len(s.Dates) == 0 {
			return nil, apperr.NewInvalidInput(m.tr.T("flow.need_dates"))
		}

		// The final total is fixed here; selections can no longer change.
		daily := s.DailyTotal()
		s.FinalTotal = daily * int64(len(s.Dates))

		if err := m.transition(s, StepAwaitingConfirmation); err != nil {
			return nil, err
		}

		summary := fmt.Sprintf(m.tr.T("flow.order_summary"),
			itemLines(m.tr, s.Items), daily, len(s.Dates), s.FinalTotal, strings.Join(s.Dates, ", "))

		return []Reply{{Text: summary, Choices: m.confirmChoices()}}, nil

	default:
		return nil, m.outOfStep(s)
	}
}

func (m *Machine) handleAwaitingConfirmation(s *Session, ev Event) ([]Reply, error) {
	if ev.Kind != EventButton {
		return nil, m.outOfStep(s)
	}

	kind, _ := ParseToken(ev.Token)
	if kind != TokenConfirmOrder {
		return nil, m.outOfStep(s)
	}

	if err := m.transition(s, StepAwaitingEmail); err != nil {
		return nil, err
	}

	return []Reply{{Text: m.tr.T("flow.ask_email")}}, nil
}

func (m *Machine) handleAwaitingEmail(ctx context.Context, s *Session, ev Event) ([]Reply, error) {
	if ev.Kind != EventFreeText {
		return nil, m.outOfStep(s)
	}

	email := strings.TrimSpace(ev.Text)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.NewInvalidInput(m.tr.T("flow.email_invalid"))
	}

	s.Email = email

	result, err := m.completer.Complete(ctx, s)
	if err != nil {
		// Persistence failed: the session stays in awaiting_email so the
		// user can retry by re-submitting their email.
		return nil, err
	}

	if err := m.transition(s, StepCompleted); err != nil {
		return nil, err
	}

	switch {
	case !result.ReceiptRendered:
		return []Reply{{Text: m.tr.T("completion.render_failed")}}, nil
	case !result.ReceiptDelivered:
		return []Reply{{Text: m.tr.T("completion.delivery_failed")}}, nil
	default:
		return []Reply{{Text: fmt.Sprintf(m.tr.T("completion.success"), email)}}, nil
	}
}

func (m *Machine) outOfStep(s *Session) error {
	hint := m.tr.T("flow.step_hint." + string(s.Step))
	return apperr.NewOutOfStep(fmt.Sprintf(m.tr.T("flow.out_of_step"), hint))
}

func (m *Machine) transition(s *Session, to Step) error {
	if !IsTransitionAllowed(s.Step, to) {
		return fmt.Errorf("transition %s -> %s is not allowed", s.Step, to)
	}

	transitionRecorder(string(s.Step), string(to))
	s.Step = to

	return nil
}

func (m *Machine) itemChoices(category string, withNext bool) [][]Choice {
	items := m.catalog.Items(category)
	rows := make([][]Choice, 0, len(items)+1)

	for _, item := range items {
		token, err := ItemToken(item.Name)
		if err != nil {
			m.log.Warn("skipping item with oversized token", slog.String("item", item.Name), slog.Any("error", err))
			continue
		}

		rows = append(rows, []Choice{{Label: item.Name, Token: token}})
	}

	if withNext {
		rows = append(rows, []Choice{{Label: m.tr.T("buttons.next"), Token: TokenNextStep}})
	}

	return rows
}

const datesPerRow = 3

func (m *Machine) dateChoices() [][]Choice {
	window := DeliveryWindow(m.now())
	rows := make([][]Choice, 0, len(window)/datesPerRow+2)

	var row []Choice
	for _, date := range window {
		row = append(row, Choice{Label: date, Token: DateToken(date)})
		if len(row) == datesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []Choice{{Label: m.tr.T("buttons.confirm_dates"), Token: TokenConfirmDates}})

	return rows
}

func (m *Machine) confirmChoices() [][]Choice {
	return [][]Choice{
		{{Label: m.tr.T("buttons.confirm_order"), Token: TokenConfirmOrder}},
		{{Label: m.tr.T("buttons.cancel_order"), Token: TokenCancelOrder}},
	}
}

func itemLines(tr i18n.Translator, items []SelectedItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf(tr.T("receipt.item_line"), item.Name, item.Price))
	}

	return strings.Join(lines, "\n")
}

func (m *Machine) lock(ctx context.Context, userID int64) error {
	if m.redisClient == nil {
		return nil
	}

	key := fmt.Sprintf(sessionLockKeyPattern, userID)
	acquired, err := m.redisClient.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		m.log.Error("failed to acquire session lock", slog.Int64("user_id", userID), slog.Any("error", err))
		return err
	}

	if !acquired {
		m.log.Warn("session lock already held", slog.Int64("user_id", userID))
		return ErrSessionLocked
	}

	return nil
}

func (m *Machine) unlock(ctx context.Context, userID int64) {
	if m.redisClient == nil {
		return
	}

	key := fmt.Sprintf(sessionLockKeyPattern, userID)
	if err := m.redisClient.Del(ctx, key).Err(); err != nil {
		m.log.Error("failed to release session lock", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}
