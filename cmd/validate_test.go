package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/brogergvhs/kirarank/internal/pipeline"
	"github.com/brogergvhs/kirarank/internal/table"
)

func TestReportWarnings(t *testing.T) {
	var buf bytes.Buffer
	if err := reportWarnings(&buf, nil); err != nil {
		t.Fatalf("no warnings: %v", err)
	}
	if got := buf.String(); got != "All pass.\n" {
		t.Errorf("no warnings output = %q", got)
	}

	buf.Reset()
	warnings := []table.ValidationWarning{
		{Magazine: "kirara-max", IssueID: "kirara-max-2024-03", Type: table.WarnTopCount, Detail: "2 作"},
		{Magazine: "kirara", IssueID: "kirara-2024-03", Type: table.WarnCenterCount, Detail: "0 作"},
	}
	err := reportWarnings(&buf, warnings)
	if !errors.Is(err, pipeline.ErrValidationFailed) {
		t.Fatalf("err = %v, want ErrValidationFailed", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("output:\n%s", buf.String())
	}
	if f := strings.Fields(lines[0]); len(f) != 4 || f[0] != "MAGAZINE" || f[1] != "ISSUE" {
		t.Errorf("header = %q", lines[0])
	}
	for i, v := range warnings {
		f := strings.Fields(lines[i+1])
		if len(f) < 3 || f[0] != v.Magazine || f[1] != v.IssueID || f[2] != v.Type {
			t.Errorf("line %d = %q", i+1, lines[i+1])
		}
	}
}
