package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
	"moneytracker/internal/report"
)

// TransactionStore is the storage surface the transaction service needs.
type TransactionStore interface {
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID string, id int64) error
	GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID string, f core.TransactionFilter) ([]core.Transaction, error)
}

// EventPublisher receives an event after every successful write.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// TransactionService validates and persists transactions for one owner at a
// time, then announces the write.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
	now       func() time.Time
}

// NewTransactionService accepts a nil publisher when AMQP is not configured.
func NewTransactionService(store TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create parses the form and records the transaction for userID.
func (s *TransactionService) Create(ctx context.Context, userID string, in core.TransactionInput) (core.Transaction, error) {
	t, err := in.ToTransaction(s.now())
	if err != nil {
		return core.Transaction{}, err
	}
	return s.Record(ctx, userID, t)
}

// Record stores an already parsed transaction. It runs the same checks as
// Create so callers that bypass the form (imports) cannot skip them.
func (s *TransactionService) Record(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	t.UserID = userID
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, t, nil); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.written(ctx, log.OpCreate, saved)
	s.publish(ctx, amqp.EventCreated, saved)
	return saved, nil
}

// Update replaces the editable fields of a transaction owned by userID.
// A category that was disabled after it was assigned may be kept.
func (s *TransactionService) Update(ctx context.Context, userID string, id int64, in core.TransactionInput) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}

	t, err := in.ToTransaction(s.now())
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = existing.ID
	t.UserID = existing.UserID
	if err := s.checkCategory(ctx, t, existing.CategoryID); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.written(ctx, log.OpUpdate, saved)
	s.publish(ctx, amqp.EventUpdated, saved)
	return saved, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID string, id int64) error {
	existing, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.written(ctx, log.OpDelete, existing)
	s.publish(ctx, amqp.EventDeleted, existing)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID string, id int64) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// List applies the filter criteria relative to today.
func (s *TransactionService) List(ctx context.Context, userID string, c report.Criteria) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID, c.Filter(s.now()))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// checkCategory resolves the selected category and applies the kind rule.
// Inactive categories are refused unless they equal keep.
func (s *TransactionService) checkCategory(ctx context.Context, t core.Transaction, keep *int64) error {
	if t.CategoryID == nil {
		return nil
	}

	c, err := s.store.GetCategory(ctx, *t.CategoryID)
	if errors.Is(err, core.ErrNotFound) {
		return core.ValidationErrors{"category": "select a valid category"}
	}
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}

	if !c.Active && (keep == nil || *keep != c.ID) {
		return core.ValidationErrors{"category": fmt.Sprintf("category %q is disabled", c.Name)}
	}
	return core.CheckCategoryKind(t.Kind, &c)
}

func (s *TransactionService) written(ctx context.Context, op string, t core.Transaction) {
	metrics.TransactionWritten(op, string(t.Kind))
	log.NewStructuredLogger(log.FromContext(ctx)).LogTransactionWritten(ctx, op, t.UserID, t.ID, string(t.Kind), t.Amount.Cents())
}

// publish never fails the caller; the row is already stored.
func (s *TransactionService) publish(ctx context.Context, typ amqp.EventType, t core.Transaction) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", log.FieldTransactionID, t.ID)
		return
	}

	err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(typ, t.ID, t.UserID, Snapshot(t)))
	metrics.EventPublished(err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldEvent, typ,
			log.FieldTransactionID, t.ID,
			log.FieldError, err)
	}
}

// Snapshot captures the exported fields of a transaction.
func Snapshot(t core.Transaction) amqp.TransactionSnapshot {
	snap := amqp.TransactionSnapshot{
		Title:  t.Title,
		Amount: t.Amount.String(),
		Kind:   string(t.Kind),
		Date:   core.FormatDate(t.Date),
	}
	if t.Category != nil {
		snap.Category = t.Category.Name
	}
	return snap
}
