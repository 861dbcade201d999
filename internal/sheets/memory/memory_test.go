package memory

import (
	"context"
	"sync"
	"testing"

	"moneytracker/internal/sheets"
)

func TestStoreAppendRow(t *testing.T) {
	s := New()

	ref, err := s.AppendRow(context.Background(), sheets.Row{Title: "Flour", Amount: "12.50", Event: "created", TransactionID: 1})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, _ = s.AppendRow(context.Background(), sheets.Row{Title: "Rent", TransactionID: 2})
	if ref != "mem:2" {
		t.Errorf("second ref = %q", ref)
	}

	rows := s.Rows()
	if len(rows) != 2 || rows[0].Title != "Flour" {
		t.Fatalf("rows = %+v", rows)
	}
	rows[0].Title = "changed"
	if s.Rows()[0].Title != "Flour" {
		t.Error("Rows() exposes internal slice")
	}
}

func TestStoreConcurrentAppend(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = s.AppendRow(context.Background(), sheets.Row{TransactionID: id})
		}(int64(i))
	}
	wg.Wait()
	if n := len(s.Rows()); n != 20 {
		t.Errorf("len(Rows()) = %d, want 20", n)
	}
}
