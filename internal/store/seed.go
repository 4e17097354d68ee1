package store

import (
	"time"

	"github.com/dvoronin/spendlog/internal/ledger"
)

// Seed data installed at construction time. It only survives until the first
// successful restore or persisted write.

var demoCategories = []string{
	"Essen",
	"Non_Food",
	"Essen_gehen",
	"Kleidung",
	"Kinder",
	"Schule",
	"Taschengeld",
	"Wohnen",
	"Telefon",
	"Technik",
	"Auto",
	"Fahrrad",
	"Transport",
	"Hobby",
	"Sport",
	"Geschenke",
	"Urlaub",
	"gesundheit",
}

func demoTransactions() []ledger.TransactionData {
	return []ledger.TransactionData{
		{
			Date:     time.Date(2024, time.May, 20, 0, 0, 0, 0, time.Local),
			Amount:   35.20,
			Info:     "demo",
			Category: "essen",
		},
	}
}
