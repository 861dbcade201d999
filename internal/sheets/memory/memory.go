// Package memory is the RowWriter used when no spreadsheet is configured.
// Rows are kept in memory and logged.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"moneytracker/internal/log"
	"moneytracker/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.Row
}

var _ sheets.RowWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendRow stores the row and returns a synthetic row reference.
func (s *Store) AppendRow(ctx context.Context, row sheets.Row) (string, error) {
	s.mu.Lock()
	s.rows = append(s.rows, row)
	ref := fmt.Sprintf("mem:%d", len(s.rows))
	s.mu.Unlock()

	slog.InfoContext(ctx, "Row exported",
		log.FieldComponent, log.ComponentSheets,
		log.FieldTransactionID, row.TransactionID,
		log.FieldEvent, row.Event,
		"ref", ref)
	return ref, nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.rows...)
}
