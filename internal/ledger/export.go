package ledger

import (
	"strconv"
	"strings"
)

// DefaultDateLayout renders dates day-first, the format the export stream has
// always used.
const DefaultDateLayout = "02.01.2006"

// ExportGroups renders groups into the line-oriented export format: a week
// header comment followed by one line per transaction,
//
//	// week group 21
//	#20.05.2024 @essen 35.2 demo
//
// Info text that does not start with an ASCII letter is prefixed with an
// underscore so free text stays distinguishable from structured tokens.
func ExportGroups(groups []*Group, dateLayout string) string {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		var b strings.Builder
		b.WriteString("\n// week group ")
		b.WriteString(strconv.Itoa(g.WeekNumber()))
		b.WriteString("\n")
		lines := make([]string, 0, len(g.Transactions))
		for _, t := range g.Transactions {
			lines = append(lines, exportLine(t, dateLayout))
		}
		b.WriteString(strings.Join(lines, "\n"))
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

func exportLine(t Transaction, dateLayout string) string {
	prefix := ""
	if len(t.Info) > 0 && !isASCIILetter(t.Info[0]) {
		prefix = "_"
	}
	return "#" + t.Date.Format(dateLayout) +
		" @" + t.Category +
		" " + strconv.FormatFloat(t.Amount, 'f', -1, 64) +
		" " + prefix + t.Info
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ExportArchive renders every archived batch, each re-grouped from scratch
// under its own header.
func ExportArchive(archive [][]TransactionData, dateLayout string) (string, error) {
	parts := make([]string, 0, len(archive))
	for _, batch := range archive {
		groups, err := BuildGroups(NewTransactions(batch), nil)
		if err != nil {
			return "", err
		}
		parts = append(parts, "\n\n// archive list\n"+ExportGroups(groups, dateLayout))
	}
	return strings.Join(parts, "\n"), nil
}
