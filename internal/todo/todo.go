// Package todo turns validation warnings into rows appended to the override
// table, where a human either fixes the data or acknowledges the warning.
package todo

import (
	"sort"
	"strings"

	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/table"
	"github.com/brogergvhs/kirarank/internal/validate"
)

type pairKey struct{ issueID, typ string }

// Generate validates rows and returns the warnings not yet listed in the
// override table, acknowledged or not, as blank override rows ordered by
// magazine and issue. Appending the result and running again yields nothing
// new.
func Generate(rows []table.IssueRow, overrides []table.OverrideEntry, reg *magazine.Registry) []table.OverrideEntry {
	warnings := validate.Validate(rows, reg, validate.NewAckSet(overrides))
	return FromWarnings(warnings, overrides)
}

// FromWarnings is Generate for warnings computed elsewhere.
func FromWarnings(warnings []table.ValidationWarning, overrides []table.OverrideEntry) []table.OverrideEntry {
	listed := make(map[pairKey]bool, len(overrides))
	for _, o := range overrides {
		listed[pairKey{strings.TrimSpace(o.IssueID), strings.TrimSpace(o.Type)}] = true
	}

	var out []table.OverrideEntry
	for _, w := range warnings {
		k := pairKey{w.IssueID, w.Type}
		if listed[k] {
			continue
		}
		listed[k] = true
		out = append(out, table.OverrideEntry{
			IssueID:  w.IssueID,
			Magazine: w.Magazine,
			Type:     w.Type,
			Detail:   w.Detail,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Magazine != out[j].Magazine {
			return out[i].Magazine < out[j].Magazine
		}
		return out[i].IssueID < out[j].IssueID
	})

	return out
}

// Pending returns the indexes of generated rows nobody has handled yet.
func Pending(overrides []table.OverrideEntry) []int {
	var out []int
	for i, o := range overrides {
		if strings.TrimSpace(o.Type) != "" && !o.Acknowledged() {
			out = append(out, i)
		}
	}
	return out
}

// Acknowledge marks row i as reviewed; its warning is suppressed from then on.
func Acknowledge(overrides []table.OverrideEntry, i int) {
	overrides[i].Fixed = "OK"
}
