package issues

import (
	"reflect"
	"testing"

	"github.com/brogergvhs/kirarank/internal/table"
)

var all = []table.URLEntry{
	{Magazine: "kirara", Year: 2012, Month: 12, URL: "a"},
	{Magazine: "kirara", Year: 2013, Month: 1, URL: "b"},
	{Magazine: "kirara-max", Year: 2013, Month: 1, URL: "c"},
	{Magazine: "kirara", Year: 2024, Month: 5, URL: "d"},
}

func urls(es []table.URLEntry) []string {
	var out []string
	for _, e := range es {
		out = append(out, e.URL)
	}
	return out
}

func TestFilter(t *testing.T) {
	cases := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"all", Selection{}, []string{"a", "b", "c", "d"}},
		{"start", Selection{Start: 2013}, []string{"b", "c", "d"}},
		{"window", Selection{Start: 2013, End: 2013}, []string{"b", "c"}},
		{"slug", Selection{Start: 2013, Slugs: []string{"kirara"}}, []string{"b", "d"}},
		{"issue", Selection{Issue: "kirara-2024-05"}, []string{"d"}},
		{"nothing", Selection{Issue: "kirara-2030-01"}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := urls(Filter(all, c.sel)); !reflect.DeepEqual(got, c.want) {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestParseYearRange(t *testing.T) {
	cases := []struct {
		in         string
		start, end int
		bad        bool
	}{
		{"", 0, 0, false},
		{"2024", 2024, 2024, false},
		{"2013-2025", 2013, 2025, false},
		{"2013-", 2013, 0, false},
		{"-2020", 0, 2020, false},
		{"2025-2013", 0, 0, true},
		{"x-2013", 0, 0, true},
	}
	for _, c := range cases {
		s, e, err := ParseYearRange(c.in)
		if (err != nil) != c.bad || s != c.start || e != c.end {
			t.Errorf("ParseYearRange(%q) = %d, %d, %v", c.in, s, e, err)
		}
	}
}

func TestParseList(t *testing.T) {
	got := ParseList(" kirara, ,kirara-max ")
	if !reflect.DeepEqual(got, []string{"kirara", "kirara-max"}) {
		t.Errorf("ParseList = %v", got)
	}
}
