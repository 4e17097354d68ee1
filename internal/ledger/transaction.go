// Package ledger defines the transaction model and the weekly grouping
// algorithm built on top of the week engine.
package ledger

import (
	"time"

	"github.com/dvoronin/spendlog/internal/week"
)

// TransactionData is the identity-free shape of a money movement record.
// It is what gets persisted and exported; ids are assigned only in memory.
type TransactionData struct {
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Info     string    `json:"info"`
}

// Transaction is a TransactionData with an in-memory identity. The id is
// unique within the live set and never changes; every other field may be
// rewritten by an update.
type Transaction struct {
	ID       int       `json:"id"`
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Info     string    `json:"info"`
}

// Data strips the identity off a transaction.
func (t Transaction) Data() TransactionData {
	return TransactionData{
		Date:     t.Date,
		Amount:   t.Amount,
		Category: t.Category,
		Info:     t.Info,
	}
}

// GroupID returns the id of the weekly group this transaction belongs to.
func (t Transaction) GroupID() int {
	return week.GroupIDFromDate(t.Date)
}

// NewTransactions assigns sequential ids, starting at 0 in input order.
// Used when rebuilding the live set from restored data.
func NewTransactions(data []TransactionData) []Transaction {
	result := make([]Transaction, 0, len(data))
	for i, d := range data {
		result = append(result, Transaction{
			ID:       i,
			Date:     d.Date,
			Amount:   d.Amount,
			Category: d.Category,
			Info:     d.Info,
		})
	}
	return result
}

// ExtractData strips ids from a transaction list. The inverse of
// NewTransactions, up to identity.
func ExtractData(transactions []Transaction) []TransactionData {
	result := make([]TransactionData, 0, len(transactions))
	for _, t := range transactions {
		result = append(result, t.Data())
	}
	return result
}

// NextID returns the id for a transaction about to join the set:
// max existing id + 1, or 1 for an empty set.
func NextID(transactions []Transaction) int {
	max := 0
	for _, t := range transactions {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// Parameters holds the user-tunable knobs of the ledger.
type Parameters struct {
	// MaxDistance is the radius in meters within which a known location
	// may be suggested for a new transaction.
	MaxDistance float64 `json:"maxDistance"`
}

// DefaultParameters returns the parameters used until the user stores
// their own.
func DefaultParameters() Parameters {
	return Parameters{MaxDistance: 150}
}
