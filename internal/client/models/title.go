package models

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractTitle returns the text of the first <h1> in content, or, failing that,
// of the first non-empty heading, paragraph or list item. Plain text content
// yields its first line.
func ExtractTitle(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return firstLine(content)
	}

	if h1 := find(doc, func(n *html.Node) bool { return n.DataAtom == atom.H1 && textOf(n) != "" }); h1 != nil {
		return textOf(h1)
	}

	block := find(doc, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.H2, atom.H3, atom.P, atom.Li:
			return textOf(n) != ""
		}
		return false
	})
	if block != nil {
		return textOf(block)
	}

	return firstLine(textOf(doc))
}

// Summarize returns the note's visible text without markup, shortened to at
// most maxLen runes with a trailing ellipsis.
func Summarize(n *Note, maxLen int) string {
	text := n.Content
	if doc, err := html.Parse(strings.NewReader(n.Content)); err == nil {
		text = textOf(doc)
	}
	text = strings.Join(strings.Fields(text), " ")

	r := []rune(text)
	if maxLen <= 0 || len(r) <= maxLen {
		return text
	}
	if maxLen == 1 {
		return "…"
	}
	return strings.TrimSpace(string(r[:maxLen-1])) + "…"
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.DataAtom == atom.Br {
				b.WriteString("\n")
			}
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.DataAtom) {
			b.WriteString("\n")
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre:
		return true
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
