package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
	"moneytracker/internal/sheets"
	"moneytracker/internal/sheets/memory"
)

type fakeStore struct {
	txs         map[int64]core.Transaction
	users       map[string]core.User
	err         error
	userLookups int
}

func (s *fakeStore) GetTransaction(_ context.Context, userID string, id int64) (core.Transaction, error) {
	if s.err != nil {
		return core.Transaction{}, s.err
	}
	t, ok := s.txs[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (core.User, error) {
	s.userLookups++
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

type failingWriter struct{}

func (failingWriter) AppendRow(context.Context, sheets.Row) (string, error) {
	return "", errors.New("quota exceeded")
}

func newStore() *fakeStore {
	amount, _ := core.ParseMoney("1250.00")
	return &fakeStore{
		txs: map[int64]core.Transaction{
			1: {
				ID:       1,
				UserID:   "u1",
				Title:    "March salary",
				Amount:   amount,
				Kind:     core.KindIncome,
				Category: &core.Category{Name: "Salary"},
				Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		users: map[string]core.User{"u1": {ID: "u1", Username: "alice"}},
	}
}

func event(typ amqp.EventType, id int64) *amqp.TransactionEvent {
	return amqp.NewTransactionEvent(typ, id, "u1", amqp.TransactionSnapshot{
		Title:    "Old title",
		Amount:   "10.00",
		Kind:     "expense",
		Category: "Food",
		Date:     "2024-02-28",
	})
}

func TestHandleTransactionEvent(t *testing.T) {
	tests := []struct {
		name  string
		event *amqp.TransactionEvent
		want  sheets.Row
	}{
		{
			name:  "created reloads current row",
			event: event(amqp.EventCreated, 1),
			want:  sheets.Row{Date: "2024-03-01", User: "alice", Kind: "income", Category: "Salary", Title: "March salary", Amount: "1250.00", Event: "created", TransactionID: 1},
		},
		{
			name:  "updated but since deleted uses snapshot",
			event: event(amqp.EventUpdated, 99),
			want:  sheets.Row{Date: "2024-02-28", User: "alice", Kind: "expense", Category: "Food", Title: "Old title", Amount: "10.00", Event: "updated", TransactionID: 99},
		},
		{
			name:  "deleted always uses snapshot",
			event: event(amqp.EventDeleted, 1),
			want:  sheets.Row{Date: "2024-02-28", User: "alice", Kind: "expense", Category: "Food", Title: "Old title", Amount: "10.00", Event: "deleted", TransactionID: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := memory.New()
			w := NewExportWorker(newStore(), mem)

			if err := w.HandleTransactionEvent(context.Background(), tt.event); err != nil {
				t.Fatalf("HandleTransactionEvent: %v", err)
			}
			rows := mem.Rows()
			if len(rows) != 1 {
				t.Fatalf("got %d rows, want 1", len(rows))
			}
			if rows[0] != tt.want {
				t.Errorf("row = %+v\nwant %+v", rows[0], tt.want)
			}
		})
	}
}

func TestHandleTransactionEventUnknownUser(t *testing.T) {
	mem := memory.New()
	w := NewExportWorker(newStore(), mem)

	ev := event(amqp.EventDeleted, 5)
	ev.UserID = "ghost"
	if err := w.HandleTransactionEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleTransactionEvent: %v", err)
	}
	if got := mem.Rows()[0].User; got != "ghost" {
		t.Errorf("User = %q, want the raw user id", got)
	}
}

func TestUsernamesAreCached(t *testing.T) {
	store := newStore()
	mem := memory.New()
	w := NewExportWorker(store, mem)

	for i := 0; i < 3; i++ {
		if err := w.HandleTransactionEvent(context.Background(), event(amqp.EventCreated, 1)); err != nil {
			t.Fatalf("HandleTransactionEvent: %v", err)
		}
	}
	if store.userLookups != 1 {
		t.Errorf("user lookups = %d, want 1", store.userLookups)
	}
	if len(mem.Rows()) != 3 {
		t.Errorf("rows = %d, want 3", len(mem.Rows()))
	}
}

func TestHandleTransactionEventErrors(t *testing.T) {
	t.Run("store failure", func(t *testing.T) {
		store := newStore()
		store.err = errors.New("database is locked")
		w := NewExportWorker(store, memory.New())

		err := w.HandleTransactionEvent(context.Background(), event(amqp.EventCreated, 1))
		if err == nil || !strings.Contains(err.Error(), "database is locked") {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("writer failure", func(t *testing.T) {
		w := NewExportWorker(newStore(), failingWriter{})
		err := w.HandleTransactionEvent(context.Background(), event(amqp.EventCreated, 1))
		if err == nil || !strings.Contains(err.Error(), "append row") {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("unknown type is skipped", func(t *testing.T) {
		mem := memory.New()
		w := NewExportWorker(newStore(), mem)
		if err := w.HandleTransactionEvent(context.Background(), event("archived", 1)); err != nil {
			t.Fatalf("err = %v", err)
		}
		if len(mem.Rows()) != 0 {
			t.Error("unknown event type was exported")
		}
	})
}
