// Package render builds HTML fragments for results, saved items and
// notifications. Every view returns an *html.Node tree: interpolated values
// are text nodes or attribute values, so html.Render escapes all of them.
package render

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func el(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func class(c string) []html.Attribute { return attrs("class", c) }

func div(c string, children ...*html.Node) *html.Node {
	return el(atom.Div, class(c), children...)
}

func span(c, s string) *html.Node {
	return el(atom.Span, class(c), text(s))
}

func para(s string) *html.Node {
	return el(atom.P, nil, text(s))
}

// link opens href in a new tab. Only http and https targets are kept.
func link(href, c, label string) *html.Node {
	return el(atom.A, attrs("href", safeHref(href), "target", "_blank", "rel", "noopener", "class", c), text(label))
}

func safeHref(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "#"
	}
	return u.String()
}

// Render writes the nodes to w.
func Render(w io.Writer, nodes ...*html.Node) error {
	for _, n := range nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// String renders the nodes to a string.
func String(nodes ...*html.Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, nodes...); err != nil {
		return ""
	}
	return buf.String()
}
