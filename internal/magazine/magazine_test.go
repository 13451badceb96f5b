package magazine

import "testing"

func TestProfileFallsBackToDefault(t *testing.T) {
	r := MustDefault()

	p := r.Profile("kirara")
	if p.Cover != 1 || p.Top != 1 || p.Center == nil || *p.Center != 4 {
		t.Fatalf("kirara profile = %+v", p)
	}

	fwd := r.Profile("kirara-forward")
	if fwd.Center != nil {
		t.Fatalf("forward must have no center expectation, got %d", *fwd.Center)
	}

	unknown := r.Profile("kirara-unknown")
	if unknown.Center == nil || *unknown.Center != 4 {
		t.Fatalf("unknown magazine should use default profile, got %+v", unknown)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]Magazine{{Slug: "a"}, {Slug: "a"}}, nil)
	if err == nil {
		t.Fatal("expected duplicate slug error")
	}
}

func TestNewRegistryRejectsUnknownStyle(t *testing.T) {
	_, err := NewRegistry([]Magazine{{Slug: "a", Style: "weird"}}, nil)
	if err == nil {
		t.Fatal("expected style error")
	}
}

func TestUnknown(t *testing.T) {
	r := MustDefault()
	got := r.Unknown([]string{"kirara", "zzz", "aaa"})
	if len(got) != 2 || got[0] != "aaa" || got[1] != "zzz" {
		t.Fatalf("Unknown = %v", got)
	}
}

func TestMonthFixes(t *testing.T) {
	fixes := DefaultMonthFixes()

	cases := []struct {
		url   string
		month int
		want  int
	}{
		{"https://www.dokidokivisual.com/magazine/kirara-max/2025/12/12720/", 12, 11},
		{"http://www.dokidokivisual.com/magazine/kirara-max/2025/12/12720", 12, 11},
		{"https://www.dokidokivisual.com/magazine/kirara-max/2025/12/12800/", 12, 12},
	}
	for _, c := range cases {
		if got := fixes.Apply(c.url, c.month); got != c.want {
			t.Errorf("Apply(%s) = %d, want %d", c.url, got, c.want)
		}
	}

	custom := NewMonthFixes([]MonthFix{{URL: "https://example.com/a/", Month: 3}})
	if got := custom.Apply("https://example.com/a/", 4); got != 3 {
		t.Errorf("custom fix = %d", got)
	}
	if got := MonthFixes(nil).Apply("https://example.com/a/", 4); got != 4 {
		t.Errorf("nil fixes = %d", got)
	}
}
