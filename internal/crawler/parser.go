package crawler

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Sentinels substituted when a page carries no usable metadata.
const (
	NoTitle       = "No title"
	NoDescription = "No description"
)

// ParsedPage holds everything extracted from one HTML document: display
// metadata, the visible text, and the raw (unresolved) anchor hrefs.
type ParsedPage struct {
	Title       string
	Description string
	Text        string
	Hrefs       []string
}

// ParsePage parses an HTML document and extracts the title, the
// og:description meta property, the visible text (script, style, and
// noscript subtrees are skipped), and every anchor href. Missing title or
// description fall back to their sentinels.
func ParsePage(r io.Reader) (*ParsedPage, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	page := &ParsedPage{}
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if page.Title == "" && n.FirstChild != nil {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				if page.Description == "" && attr(n, "property") == "og:description" {
					page.Description = strings.TrimSpace(attr(n, "content"))
				}
			case "a":
				if href := strings.TrimSpace(attr(n, "href")); href != "" {
					page.Hrefs = append(page.Hrefs, href)
				}
			}
		}
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				text.WriteString(trimmed)
				text.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	page.Text = strings.TrimSpace(text.String())
	if page.Title == "" {
		page.Title = NoTitle
	}
	if page.Description == "" {
		page.Description = NoDescription
	}
	return page, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
