// Package warehouse pushes archived ledger batches into a BigQuery table for
// long-term analysis. The blob store stays the source of truth; the warehouse
// is an append-only copy.
package warehouse

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/dvoronin/spendlog/internal/ledger"
)

// Row is one archived transaction in the warehouse table.
type Row struct {
	RowID string `bigquery:"row_id"` // REQUIRED

	SyncRunID  string `bigquery:"sync_run_id"` // REQUIRED, same for every row of one sync
	BatchIndex int    `bigquery:"batch_index"` // REQUIRED, position within the archive

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC
	Category        string     `bigquery:"category"`         // REQUIRED STRING
	Info            string     `bigquery:"info"`             // NULLABLE STRING

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// Inserter is the slice of the BigQuery API Sync needs.
type Inserter interface {
	Put(ctx context.Context, rows []*Row) error
}

// Client wraps a BigQuery client bound to one table.
type Client struct {
	bq      *bigquery.Client
	project string
	dataset string
	table   string
}

// NewClient connects to BigQuery. credentialsFile may be empty, in which case
// ambient credentials are used.
func NewClient(ctx context.Context, project, dataset, table, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	bq, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewClient: bigquery client: %w", err)
	}
	return &Client{bq: bq, project: project, dataset: dataset, table: table}, nil
}

// Put streams rows into the configured table.
func (c *Client) Put(ctx context.Context, rows []*Row) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := c.bq.DatasetInProject(c.project, c.dataset).Table(c.table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("Put: inserting rows: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.bq.Close()
}

var _ Inserter = (*Client)(nil)

// Sync converts the whole archive into rows under a fresh sync run id and
// inserts them in one call. Returns the number of rows written.
func Sync(ctx context.Context, ins Inserter, archive [][]ledger.TransactionData, now func() time.Time) (int, error) {
	if now == nil {
		now = time.Now
	}
	runID := uuid.NewString()
	created := now().UTC()

	var rows []*Row
	for batch, list := range archive {
		for _, d := range list {
			amount := new(big.Rat)
			amount.SetFloat64(d.Amount)
			rows = append(rows, &Row{
				RowID:           uuid.NewString(),
				SyncRunID:       runID,
				BatchIndex:      batch,
				TransactionDate: civil.DateOf(d.Date),
				Amount:          amount,
				Category:        d.Category,
				Info:            d.Info,
				CreatedTS:       created,
			})
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := ins.Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("Sync: %w", err)
	}
	return len(rows), nil
}
