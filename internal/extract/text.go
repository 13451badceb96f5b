package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// textParts collects the trimmed, non-empty text nodes under n in document
// order.
func textParts(n *html.Node, parts []string) []string {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			parts = append(parts, s)
		}
	case html.ElementNode, html.DocumentNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return parts
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parts = textParts(c, parts)
		}
	}
	return parts
}

func nodeText(n *html.Node, sep string) string {
	return strings.Join(textParts(n, nil), sep)
}

// selText joins the trimmed text of every node in sel with sep.
func selText(sel *goquery.Selection, sep string) string {
	return strings.Join(strippedStrings(sel), sep)
}

func strippedStrings(sel *goquery.Selection) []string {
	var parts []string
	for _, n := range sel.Nodes {
		parts = textParts(n, parts)
	}
	return parts
}

// blockAfter returns the text of the siblings that follow heading, up to the
// next h2. Element siblings contribute their trimmed text joined with sep,
// bare text siblings their raw content.
func blockAfter(heading *goquery.Selection, sep string) string {
	if heading.Length() == 0 {
		return ""
	}

	var block []string
	for s := heading.Nodes[0].NextSibling; s != nil; s = s.NextSibling {
		switch s.Type {
		case html.ElementNode:
			if s.DataAtom == atom.H2 {
				return strings.Join(block, sep)
			}
			block = append(block, nodeText(s, sep))
		case html.TextNode:
			block = append(block, s.Data)
		}
	}
	return strings.Join(block, sep)
}
