package content

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText strips markup from an HTML fragment and collapses whitespace.
// Text that does not parse is returned with whitespace collapsed only.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(extractText(doc)), " ")
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "br" || c.Data == "p" || c.Data == "li") {
			sb.WriteByte(' ')
		}
		sb.WriteString(extractText(c))
	}
	return sb.String()
}
