package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Sanitize reduces pasted input to plain visible text. Text copied out of
// web pages or editors often arrives wrapped in markup; scripts, styles and
// tags carry nothing citable.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "<") {
		return text
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var b strings.Builder
	collectVisibleText(doc, &b)
	return strings.TrimSpace(b.String())
}

// collectVisibleText walks the parse tree appending text nodes, skipping
// script and style subtrees.
func collectVisibleText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectVisibleText(c, b)
	}
}
