// Package worker consumes transaction events and mirrors them into the
// export spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/cache"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
	"moneytracker/internal/sheets"
)

// Store is the read side the worker needs to rebuild a row.
type Store interface {
	GetTransaction(ctx context.Context, userID string, id int64) (core.Transaction, error)
	GetUserByID(ctx context.Context, id string) (core.User, error)
}

// ExportWorker turns transaction events into spreadsheet rows.
type ExportWorker struct {
	store  Store
	writer sheets.RowWriter
	names  *cache.LRU[string]
}

func NewExportWorker(store Store, writer sheets.RowWriter) *ExportWorker {
	return &ExportWorker{
		store:  store,
		writer: writer,
		names:  cache.NewLRU[string](256, 10*time.Minute),
	}
}

// HandleTransactionEvent appends one row per event. Created and updated
// events reload the transaction so the row reflects its latest state; a
// transaction that has since been deleted, and every delete event, is
// exported from the snapshot carried by the message.
func (w *ExportWorker) HandleTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	logger := slog.With(
		log.FieldComponent, log.ComponentWorker,
		log.FieldEvent, ev.Type,
		log.FieldTransactionID, ev.TransactionID)

	switch ev.Type {
	case amqp.EventCreated, amqp.EventUpdated, amqp.EventDeleted:
	default:
		// Unknown types are acknowledged so they do not loop forever.
		logger.WarnContext(ctx, "Skipping unknown event type")
		return nil
	}

	row, err := w.buildRow(ctx, ev)
	if err != nil {
		return err
	}

	ref, err := w.writer.AppendRow(ctx, row)
	metrics.RowExported(err)
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	logger.InfoContext(ctx, "Transaction exported",
		log.FieldOperation, log.OpExport,
		"ref", ref)
	return nil
}

func (w *ExportWorker) buildRow(ctx context.Context, ev *amqp.TransactionEvent) (sheets.Row, error) {
	row := rowFromSnapshot(ev)

	if ev.Type != amqp.EventDeleted {
		t, err := w.store.GetTransaction(ctx, ev.UserID, ev.TransactionID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			slog.DebugContext(ctx, "Transaction gone, exporting snapshot",
				log.FieldComponent, log.ComponentWorker,
				log.FieldTransactionID, ev.TransactionID)
		case err != nil:
			return sheets.Row{}, fmt.Errorf("get transaction %d: %w", ev.TransactionID, err)
		default:
			row = rowFromTransaction(t, ev.Type)
		}
	}

	name, err := w.username(ctx, ev.UserID)
	if err != nil {
		return sheets.Row{}, err
	}
	row.User = name
	return row, nil
}

// username resolves a user id, falling back to the id itself for accounts
// that no longer exist.
func (w *ExportWorker) username(ctx context.Context, userID string) (string, error) {
	if name, ok := w.names.Get(userID); ok {
		return name, nil
	}
	u, err := w.store.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		return userID, nil
	case err != nil:
		return "", fmt.Errorf("get user %s: %w", userID, err)
	}
	w.names.Set(userID, u.Username)
	return u.Username, nil
}

func rowFromSnapshot(ev *amqp.TransactionEvent) sheets.Row {
	return sheets.Row{
		Date:          ev.Snapshot.Date,
		Kind:          ev.Snapshot.Kind,
		Category:      ev.Snapshot.Category,
		Title:         ev.Snapshot.Title,
		Amount:        ev.Snapshot.Amount,
		Event:         string(ev.Type),
		TransactionID: ev.TransactionID,
	}
}

func rowFromTransaction(t core.Transaction, typ amqp.EventType) sheets.Row {
	row := sheets.Row{
		Date:          core.FormatDate(t.Date),
		Kind:          string(t.Kind),
		Title:         t.Title,
		Amount:        t.Amount.String(),
		Event:         string(typ),
		TransactionID: t.ID,
	}
	if t.Category != nil {
		row.Category = t.Category.Name
	}
	return row
}
