package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/normalize"
)

// LabelKind is the kind of color page a work was announced with.
type LabelKind string

const (
	KindCover  LabelKind = "表紙"
	KindTop    LabelKind = "巻頭"
	KindCenter LabelKind = "センターカラー"
)

const markBlock = "◆◆"

// Label ties a cleaned title to one color-page kind.
type Label struct {
	Kind  LabelKind
	Title string
}

// Strategy extracts color labels from one family of page layouts.
type Strategy struct {
	Name    string
	Extract func(doc *goquery.Document) []Label
}

var (
	standardHeadings = Strategy{Name: "standard-headings", Extract: standardFromHeadings}
	standardBlocks   = Strategy{Name: "standard-blocks", Extract: standardFromBlocks}
	coverHeadings    = Strategy{Name: "cover-only-headings", Extract: coverFromHeadings}
	coverToken       = Strategy{Name: "cover-only-token", Extract: coverFromToken}
)

// StrategyFor picks the extraction strategy for a magazine's color style and
// an issue's layout era.
func StrategyFor(style magazine.ColorStyle, era Era) Strategy {
	switch {
	case style == magazine.StyleCoverOnly && era == EraNew:
		return coverHeadings
	case style == magazine.StyleCoverOnly:
		return coverToken
	case era == EraNew:
		return standardHeadings
	default:
		return standardBlocks
	}
}

type labels []Label

func (l *labels) add(kind LabelKind, raw string) {
	if t := normalize.CleanTitle(raw); t != "" {
		*l = append(*l, Label{Kind: kind, Title: t})
	}
}

// standardFromHeadings: each h2 mentioning 表紙, 巻頭 or センター labels every
// title in the block below it with all the kinds it mentions.
func standardFromHeadings(doc *goquery.Document) []Label {
	var out labels

	doc.Find("h2").Each(func(_ int, h2 *goquery.Selection) {
		head := selText(h2, "")
		var kinds []LabelKind
		if strings.Contains(head, "表紙") {
			kinds = append(kinds, KindCover)
		}
		if strings.Contains(head, "巻頭") {
			kinds = append(kinds, KindTop)
		}
		if strings.Contains(head, "センター") {
			kinds = append(kinds, KindCenter)
		}
		if len(kinds) == 0 {
			return
		}

		for _, m := range titleRe.FindAllStringSubmatch(blockAfter(h2, "\n"), -1) {
			for _, k := range kinds {
				out.add(k, m[1])
			}
		}
	})

	return out
}

// standardFromBlocks walks the description text of old pages. A ◆◆ line opens
// a block and sets its kinds; each later line contributes its first title.
// Only the first title of a block keeps the cover kind.
func standardFromBlocks(doc *goquery.Document) []Label {
	desc := doc.Find("div.content-desc").First()
	if desc.Length() == 0 {
		return nil
	}

	var out labels
	var kinds []LabelKind
	coverUsed := false

	for _, tk := range strippedStrings(desc) {
		if strings.Contains(tk, markBlock) {
			kinds = kinds[:0]
			coverUsed = false
			if strings.Contains(tk, "表紙") {
				kinds = append(kinds, KindCover)
			}
			if strings.Contains(tk, "巻頭") {
				kinds = append(kinds, KindTop)
			}
			if strings.Contains(tk, "センターカラー") {
				kinds = append(kinds, KindCenter)
			}
			continue
		}
		if strings.Contains(tk, headingLineup) {
			break
		}

		m := titleRe.FindStringSubmatch(tk)
		if m == nil || len(kinds) == 0 {
			continue
		}

		for _, k := range kinds {
			if k == KindCover {
				if coverUsed {
					continue
				}
				coverUsed = true
			}
			out.add(k, m[1])
		}
	}

	return out
}

// coverFromHeadings handles new pages without center color: an h2 reading
// exactly 表紙, 巻頭カラー or 巻頭 names one work in the block below it.
func coverFromHeadings(doc *goquery.Document) []Label {
	var out labels

	doc.Find("h2").Each(func(_ int, h2 *goquery.Selection) {
		head := selText(h2, "")
		switch head {
		case "表紙", "巻頭カラー", "巻頭":
		default:
			return
		}

		m := titleRe.FindStringSubmatch(blockAfter(h2, " "))
		if m == nil {
			return
		}
		if strings.Contains(head, "表紙") {
			out.add(KindCover, m[1])
		} else {
			out.add(KindTop, m[1])
		}
	})

	return out
}

// coverFromToken handles old pages without center color: the first title at
// or after the first line mentioning 表紙 is the cover.
func coverFromToken(doc *goquery.Document) []Label {
	desc := doc.Find("div.content-desc").First()
	if desc.Length() == 0 {
		return nil
	}

	var out labels
	seen := false
	for _, tk := range strippedStrings(desc) {
		if strings.Contains(tk, "表紙") {
			seen = true
		}
		if !seen {
			continue
		}
		if m := titleRe.FindStringSubmatch(tk); m != nil {
			out.add(KindCover, m[1])
			break
		}
	}

	return out
}
