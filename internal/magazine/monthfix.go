package magazine

import "strings"

// MonthFix corrects the month the publisher encoded in an issue URL.
type MonthFix struct {
	URL   string `yaml:"url"`
	Month int    `yaml:"month"`
}

// MonthFixes maps issue URLs to their real month.
type MonthFixes map[string]int

// DefaultMonthFixes holds the known publisher defects.
func DefaultMonthFixes() MonthFixes {
	return MonthFixes{
		// filed under December, is the November issue
		"https://www.dokidokivisual.com/magazine/kirara-max/2025/12/12720/": 11,
	}
}

func NewMonthFixes(fixes []MonthFix) MonthFixes {
	m := make(MonthFixes, len(fixes))
	for _, f := range fixes {
		m[canonicalURL(f.URL)] = f.Month
	}
	return m
}

// Apply returns the corrected month for url, or month unchanged.
func (m MonthFixes) Apply(url string, month int) int {
	if fixed, ok := m[canonicalURL(url)]; ok {
		return fixed
	}
	return month
}

// canonicalURL ignores a missing trailing slash and http vs https.
func canonicalURL(u string) string {
	u = strings.TrimSpace(u)
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "https://")
	return strings.TrimSuffix(u, "/") + "/"
}
