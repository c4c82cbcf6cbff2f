package lark

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.Li: true, atom.Br: true, atom.Tr: true,
}

// htmlToLines flattens an HTML body into post paragraphs. Links keep their
// href; style, script and head content is dropped.
func htmlToLines(body string) ([][]postElement, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	var (
		lines   [][]postElement
		current []postElement
	)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, current)
			current = nil
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Style, atom.Script, atom.Head:
				return
			case atom.A:
				text := strings.TrimSpace(textOf(n))
				href := attr(n, "href")
				if text != "" || href != "" {
					if text == "" {
						text = href
					}
					current = append(current, postElement{Tag: "a", Text: text, Href: href})
				}
				return
			}
			if blockElements[n.DataAtom] {
				flush()
			}
		case html.TextNode:
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				current = append(current, postElement{Tag: "text", Text: text})
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			flush()
		}
	}
	walk(doc)
	flush()

	return lines, nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
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

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
