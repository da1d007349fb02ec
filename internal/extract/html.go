package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/keyurpatil06/phishlens/internal/core"
)

// ExtractHTMLLinks parses an HTML fragment and returns every anchor with its
// visible text and a data-URI flag. A fragment that fails to parse yields no
// links rather than an error; html.Parse is extremely forgiving, so that is
// a rare case.
func ExtractHTMLLinks(fragment string) []core.Link {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var links []core.Link
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if href == "" {
					break
				}
				links = append(links, core.Link{
					Href:      href,
					Text:      strings.TrimSpace(nodeText(n)),
					IsDataURI: strings.HasPrefix(strings.ToLower(href), "data:"),
				})
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

// htmlToText flattens an HTML fragment into its visible text
func htmlToText(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
			if n.Data == "br" || n.Data == "p" || n.Data == "div" {
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(b.String())
}

// nodeText collects the text content under one node
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
