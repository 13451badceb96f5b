package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/kirarank/internal/normalize"
)

const (
	markSuspended = "休載"
	headingLineup = "ラインナップ"
)

// titleRe matches a work title in double corner brackets.
var titleRe = regexp.MustCompile(`『([^『』]+)』`)

// extractLineup returns the cleaned work titles of an issue in serialization
// order. Suspended works are left out.
func extractLineup(doc *goquery.Document) []string {
	if works := lineupFromList(doc); len(works) > 0 {
		return works
	}
	return lineupFromHeading(doc)
}

// lineupFromList reads <ul class="lineup">. Titles sit in font, strong or
// plain li elements depending on the year, in that order of preference.
func lineupFromList(doc *goquery.Document) []string {
	var works []string

	doc.Find("ul.lineup").EachWithBreak(func(_ int, ul *goquery.Selection) bool {
		cand := ul.Find("font")
		if cand.Length() == 0 {
			cand = ul.Find("strong")
		}
		if cand.Length() == 0 {
			cand = ul.Find("li")
		}

		var tmp []string
		cand.Each(func(_ int, c *goquery.Selection) {
			row := c.Closest("li")
			if row.Length() == 0 {
				row = c
			}
			if strings.Contains(selText(row, " "), markSuspended) {
				return
			}
			if t := normalize.CleanTitle(selText(c, " ")); t != "" {
				tmp = append(tmp, t)
			}
		})

		if len(tmp) > 0 {
			works = tmp
			return false
		}
		return true
	})

	return works
}

// lineupFromHeading reads the block under an <h2>ラインナップ</h2>, one work
// per line.
func lineupFromHeading(doc *goquery.Document) []string {
	var works []string

	doc.Find("h2").EachWithBreak(func(_ int, h2 *goquery.Selection) bool {
		if normalize.Normalize(selText(h2, "")) != headingLineup {
			return true
		}

		for _, ln := range strings.Split(blockAfter(h2, "\n"), "\n") {
			if strings.Contains(ln, markSuspended) {
				continue
			}
			for _, m := range titleRe.FindAllStringSubmatch(ln, -1) {
				if t := normalize.CleanTitle(m[1]); t != "" {
					works = append(works, t)
				}
			}
		}
		return false
	})

	return works
}
