package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAddsBOMAndReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.csv")
	in := []URLEntry{{Magazine: "kirara", Year: 2024, Month: 5, URL: "https://example.test/magazine/kirara/2024/05/1/"}}

	if err := WriteFile(path, in); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("\xef\xbb\xbf種別,年,月,URL")) {
		t.Fatalf("unexpected file head: %q", raw[:min(len(raw), 40)])
	}

	out, err := ReadFile[URLEntry](path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("read back %+v", out)
	}
	if _, err := os.Stat(path + TempSuffix); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestDecodeToleratesMissingColumns(t *testing.T) {
	src := "year,month,url,work,rank,is_cover,is_top,is_center\n" +
		"2016,5,u,三者三葉,2,False,True,False\n"

	rows, err := Decode[IssueRow](strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	r := rows[0]
	if r.Magazine != "" || r.Work != "三者三葉" || r.Rank != 2 || !r.IsTop || r.IsCover {
		t.Fatalf("decoded %+v", r)
	}
}

func TestEncodeEmptyTableWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode[OverrideEntry](&buf, nil); err != nil {
		t.Fatal(err)
	}
	want := "issue_id,magazine,work,field,value,type,detail,fixed\n"
	if buf.String() != want {
		t.Fatalf("header = %q, want %q", buf.String(), want)
	}
}

func TestMasterRoundTripKeepsIssueID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	rows := []IssueRow{{Magazine: "kirara", Year: 2013, Month: 1, Work: "A", Rank: 1, IsTop: true}}

	if err := WriteFile(path, ToMaster(rows)); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile[MasterRow](path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].IssueID != "kirara-2013-01" || got[0].Work != "A" {
		t.Fatalf("master row = %+v", got)
	}
}

func TestReadFileIfExistsMissing(t *testing.T) {
	rows, err := ReadFileIfExists[AliasEntry](filepath.Join(t.TempDir(), "nope.csv"))
	if err != nil || rows != nil {
		t.Fatalf("got %v, %v", rows, err)
	}
}

func TestAddHeuristic(t *testing.T) {
	var r IssueRow
	r.AddHeuristic(HeuristicTopFromRank1)
	r.AddHeuristic(HeuristicCoverFromTop)
	r.AddHeuristic(HeuristicTopFromRank1)
	if r.Heuristic != "top_from_rank1+cover_from_top" {
		t.Fatalf("Heuristic = %q", r.Heuristic)
	}
}

func TestAcknowledged(t *testing.T) {
	for _, v := range []string{"OK", "ok", " Ok "} {
		if !(OverrideEntry{Fixed: v}).Acknowledged() {
			t.Errorf("%q should be acknowledged", v)
		}
	}
	if (OverrideEntry{Fixed: ""}).Acknowledged() {
		t.Error("blank must not be acknowledged")
	}
}
