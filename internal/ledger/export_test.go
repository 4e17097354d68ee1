package ledger

import (
	"strings"
	"testing"
	"time"
)

func TestExportGroups(t *testing.T) {
	transactions := []Transaction{
		{ID: 1, Date: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.Local), Amount: 35.2, Category: "essen", Info: "demo"},
		{ID: 2, Date: time.Date(2024, time.May, 21, 0, 0, 0, 0, time.Local), Amount: 12, Category: "transport", Info: ""},
	}
	groups, err := BuildGroups(transactions, nil)
	if err != nil {
		t.Fatalf("BuildGroups err = %v", err)
	}

	got := ExportGroups(groups, "")
	want := "\n// week group 21\n" +
		"#20.05.2024 @essen 35.2 demo\n" +
		"#21.05.2024 @transport 12 "
	if got != want {
		t.Errorf("ExportGroups = %q, want %q", got, want)
	}
}

func TestExportLineUnderscorePrefix(t *testing.T) {
	tests := []struct {
		info string
		want string
	}{
		{"demo", "#20.05.2024 @essen 1 demo"},
		{"", "#20.05.2024 @essen 1 "},
		{"1x coffee", "#20.05.2024 @essen 1 _1x coffee"},
		{"@tag", "#20.05.2024 @essen 1 _@tag"},
		{"Zoo", "#20.05.2024 @essen 1 Zoo"},
	}
	for _, tt := range tests {
		tr := Transaction{
			Date:     time.Date(2024, time.May, 20, 0, 0, 0, 0, time.Local),
			Amount:   1,
			Category: "essen",
			Info:     tt.info,
		}
		if got := exportLine(tr, DefaultDateLayout); got != tt.want {
			t.Errorf("exportLine(info=%q) = %q, want %q", tt.info, got, tt.want)
		}
	}
}

func TestExportArchive(t *testing.T) {
	archive := [][]TransactionData{
		{
			{Date: time.Date(2024, time.May, 20, 0, 0, 0, 0, time.Local), Amount: 5, Category: "essen", Info: "a"},
		},
		{
			{Date: time.Date(2024, time.May, 27, 0, 0, 0, 0, time.Local), Amount: 7, Category: "sport", Info: "b"},
		},
	}
	got, err := ExportArchive(archive, "")
	if err != nil {
		t.Fatalf("ExportArchive err = %v", err)
	}
	if strings.Count(got, "// archive list") != 2 {
		t.Errorf("want one archive header per batch, got %q", got)
	}
	if !strings.Contains(got, "#20.05.2024 @essen 5 a") || !strings.Contains(got, "#27.05.2024 @sport 7 b") {
		t.Errorf("missing transaction lines in %q", got)
	}
}
