package todo

import (
	"testing"

	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/table"
)

func badRows() []table.IssueRow {
	return []table.IssueRow{
		// kirara-max 2024-02: no cover, no center
		{Magazine: "kirara-max", Year: 2024, Month: 2, Work: "A", Rank: 1, IsTop: true},
		// kirara 2024-01: no center
		{Magazine: "kirara", Year: 2024, Month: 1, Work: "A", Rank: 1, IsTop: true, IsCover: true},
	}
}

func TestGenerateOrdersAndBlanksActions(t *testing.T) {
	got := Generate(badRows(), nil, magazine.MustDefault())
	if len(got) != 3 {
		t.Fatalf("got %d rows: %+v", len(got), got)
	}

	if got[0].IssueID != "kirara-2024-01" || got[0].Type != table.WarnCenterCount || got[0].Detail != "0 作" {
		t.Errorf("first row = %+v", got[0])
	}
	if got[1].Magazine != "kirara-max" || got[2].Magazine != "kirara-max" {
		t.Errorf("rows not ordered by magazine: %+v", got)
	}
	for _, r := range got {
		if r.Fixed != "" || r.Work != "" || r.Field != "" || r.Value != "" {
			t.Errorf("action columns filled: %+v", r)
		}
	}
}

func TestGenerateNeverDuplicates(t *testing.T) {
	reg := magazine.MustDefault()

	first := Generate(badRows(), nil, reg)
	ovs := append([]table.OverrideEntry{}, first...)

	if again := Generate(badRows(), ovs, reg); len(again) != 0 {
		t.Errorf("second run appended %+v", again)
	}

	// acknowledging does not bring the pair back either
	for _, i := range Pending(ovs) {
		Acknowledge(ovs, i)
	}
	if again := Generate(badRows(), ovs, reg); len(again) != 0 {
		t.Errorf("run after ack appended %+v", again)
	}
	if len(Pending(ovs)) != 0 {
		t.Error("rows still pending after ack")
	}
}

func TestGenerateSkipsPairsListedWithAnyState(t *testing.T) {
	overrides := []table.OverrideEntry{
		{IssueID: "kirara-2024-01", Type: table.WarnCenterCount, Fixed: "later"},
	}
	got := Generate(badRows(), overrides, magazine.MustDefault())
	for _, r := range got {
		if r.IssueID == "kirara-2024-01" && r.Type == table.WarnCenterCount {
			t.Errorf("listed pair generated again: %+v", r)
		}
	}
	if len(got) != 2 {
		t.Errorf("got %d rows", len(got))
	}
}
