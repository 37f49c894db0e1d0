package scraper

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// following yields the element nodes after n in document order, starting
// with n's own descendants. The walk is not confined to n's parent.
func following(n *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		for cur := nextInDocument(n); cur != nil; cur = nextInDocument(cur) {
			if cur.Type != html.ElementNode {
				continue
			}
			if !yield(cur) {
				return
			}
		}
	}
}

func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// nodeText concatenates all text below n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
