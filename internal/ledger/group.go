package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvoronin/spendlog/internal/week"
)

// Group is one calendar week's worth of transactions. Groups are derived from
// the live transaction set on demand and never persisted; only the Expanded
// flag carries state between derivations.
type Group struct {
	ID           int
	Expanded     bool
	Transactions []Transaction
}

// StartDate returns the Monday of the group's week, or the Unix epoch for an
// empty group.
func (g *Group) StartDate() time.Time {
	if len(g.Transactions) == 0 {
		return time.Unix(0, 0)
	}
	return week.StartOfWeek(g.Transactions[0].Date)
}

// EndDate returns the Sunday of the group's week.
func (g *Group) EndDate() time.Time {
	return g.StartDate().AddDate(0, 0, 6)
}

// WeekNumber returns the 1-based display week number encoded in the group id.
func (g *Group) WeekNumber() int {
	return g.ID%100 + 1
}

// Summary is the per-group roll-up shown in listings.
type Summary struct {
	Count int
	Total decimal.Decimal
}

// Summarize counts a group's transactions and sums their amounts. The sum is
// exact; rounding to two decimals happens only when rendering.
func (g *Group) Summarize() Summary {
	total := decimal.Zero
	for _, t := range g.Transactions {
		total = total.Add(decimal.NewFromFloat(t.Amount))
	}
	return Summary{Count: len(g.Transactions), Total: total}
}

// String renders a summary the way the UI shows it.
func (s Summary) String() string {
	return fmt.Sprintf("%d entries, total: %s€", s.Count, s.Total.StringFixed(2))
}

// GroupForTransaction returns the first group whose id matches the
// transaction's week, or nil.
func GroupForTransaction(t Transaction, groups []*Group) *Group {
	return groupByID(groups, t.GroupID())
}

func groupByID(groups []*Group, id int) *Group {
	for _, g := range groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// BuildGroups partitions transactions into weekly groups.
//
// Each group's transactions are sorted ascending by date and the groups
// themselves ascending by id. When previous is non-nil, every resulting group
// inherits its Expanded flag from the previous group with the same id and
// newly surfaced groups default to expanded. Without previous state only the
// most recent group starts expanded.
//
// A computed group id below 10000 means the week engine produced garbage and
// is reported as an error.
func BuildGroups(transactions []Transaction, previous []*Group) ([]*Group, error) {
	var result []*Group
	for _, t := range transactions {
		g := GroupForTransaction(t, result)
		if g == nil {
			id := t.GroupID()
			if id < 10000 {
				return nil, fmt.Errorf("BuildGroups: group id %d for date %s is below the calendar floor", id, t.Date.Format("2006-01-02"))
			}
			result = append(result, &Group{ID: id, Transactions: []Transaction{t}})
			continue
		}
		g.Transactions = append(g.Transactions, t)
	}

	for _, g := range result {
		sort.SliceStable(g.Transactions, func(i, j int) bool {
			return g.Transactions[i].Date.Before(g.Transactions[j].Date)
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	if previous != nil {
		for _, g := range result {
			if orig := groupByID(previous, g.ID); orig != nil {
				g.Expanded = orig.Expanded
			} else {
				g.Expanded = true
			}
		}
	} else if len(result) > 0 {
		result[len(result)-1].Expanded = true
	}
	return result, nil
}
