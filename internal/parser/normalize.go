package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// boilerplate phrases mark publisher copyright/attribution lines. A text
// segment containing any of them is dropped before the segments are joined;
// screening must happen per segment so a phrase never matches across a
// segment boundary.
var boilerplate = []string{
	"무단전재 및 재배포 금지",
	"무단 전재 및 재배포 금지",
	"ⓒ",
}

// CleanContent reduces a raw article-body fragment to plain text. Script
// blocks, anchors and h4 headings are removed together with their subtrees,
// comments are discarded, entities are decoded by the parser, each surviving
// text node is screened for boilerplate, and the remainder is joined with
// runs of whitespace collapsed to single spaces. Empty input passes through.
func CleanContent(fragment string) string {
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	doc.Find("script, a, h4").Remove()

	var segments []string
	for _, root := range doc.Nodes {
		collectText(root, &segments)
	}

	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		if isBoilerplate(seg) {
			continue
		}
		kept = append(kept, seg)
	}

	return strings.Join(strings.Fields(strings.Join(kept, " ")), " ")
}

// collectText gathers text-node data in document order. Comment nodes are not
// text nodes, so they fall away here.
func collectText(n *html.Node, out *[]string) {
	if n.Type == html.TextNode {
		*out = append(*out, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}

func isBoilerplate(seg string) bool {
	for _, phrase := range boilerplate {
		if strings.Contains(seg, phrase) {
			return true
		}
	}
	return false
}
