package warehouse

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvoronin/spendlog/internal/ledger"
)

type mockInserter struct {
	rows []*Row
	err  error
}

func (m *mockInserter) Put(ctx context.Context, rows []*Row) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, rows...)
	return nil
}

func TestSync(t *testing.T) {
	archive := [][]ledger.TransactionData{
		{
			{Date: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC), Amount: 35.2, Category: "essen", Info: "demo"},
			{Date: time.Date(2024, time.May, 21, 0, 0, 0, 0, time.UTC), Amount: -4, Category: "sport"},
		},
		{
			{Date: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), Amount: 12, Category: "auto"},
		},
	}
	now := func() time.Time { return time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC) }

	ins := &mockInserter{}
	n, err := Sync(context.Background(), ins, archive, now)
	if err != nil {
		t.Fatalf("Sync err = %v", err)
	}
	if n != 3 || len(ins.rows) != 3 {
		t.Fatalf("Sync wrote %d rows, inserter saw %d, want 3", n, len(ins.rows))
	}

	first := ins.rows[0]
	if first.TransactionDate != civil.DateOf(archive[0][0].Date) {
		t.Errorf("TransactionDate = %v", first.TransactionDate)
	}
	want := new(big.Rat)
	want.SetFloat64(35.2)
	if first.Amount.Cmp(want) != 0 {
		t.Errorf("Amount = %v, want %v", first.Amount, want)
	}
	if first.BatchIndex != 0 || ins.rows[2].BatchIndex != 1 {
		t.Errorf("batch indexes = %d, %d", first.BatchIndex, ins.rows[2].BatchIndex)
	}
	if !first.CreatedTS.Equal(now()) {
		t.Errorf("CreatedTS = %v", first.CreatedTS)
	}

	// One run id across the sync, unique row ids within it.
	seen := map[string]bool{}
	for _, r := range ins.rows {
		if r.SyncRunID != first.SyncRunID {
			t.Errorf("SyncRunID differs: %s vs %s", r.SyncRunID, first.SyncRunID)
		}
		if seen[r.RowID] {
			t.Errorf("duplicate row id %s", r.RowID)
		}
		seen[r.RowID] = true
	}
}

func TestSyncEmptyArchive(t *testing.T) {
	ins := &mockInserter{err: errors.New("must not be called")}
	n, err := Sync(context.Background(), ins, nil, nil)
	if err != nil || n != 0 {
		t.Fatalf("Sync(empty) = %d, %v", n, err)
	}
}

func TestSyncPropagatesInsertError(t *testing.T) {
	ins := &mockInserter{err: errors.New("stream closed")}
	archive := [][]ledger.TransactionData{{{Date: time.Now(), Amount: 1, Category: "a"}}}
	if _, err := Sync(context.Background(), ins, archive, nil); err == nil {
		t.Fatal("expected insert error to propagate")
	}
}
