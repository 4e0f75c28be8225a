// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

package scan

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup finds script sources, module preloads and inline module
// imports in an HTML document.
type Markup struct{}

func (Markup) Scan(src []byte) []string {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil
	}
	var specs []string
	walk(doc, func(n *html.Node) {
		switch n.DataAtom {
		case atom.Script:
			if s := GetAttribute("src", n); s != "" {
				specs = append(specs, s)
				return
			}
			if GetAttribute("type", n) == "module" {
				specs = append(specs, Lexical{}.Scan([]byte(TextContent(n)))...)
			}
		case atom.Link:
			if hasToken(GetAttribute("rel", n), "modulepreload") {
				if s := GetAttribute("href", n); s != "" {
					specs = append(specs, s)
				}
			}
		}
	})
	return specs
}

func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for next := n.FirstChild; next != nil; next = next.NextSibling {
		walk(next, visit)
	}
}

func hasToken(list, token string) bool {
	for _, t := range strings.Fields(list) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

// GetAttribute returns the value of attribute k on n, or "".
func GetAttribute(k string, n *html.Node) (v string) {
	if n == nil {
		return
	}
	for _, a := range n.Attr {
		if a.Key == k {
			v = strings.TrimSpace(a.Val)
			return
		}
	}
	return
}

// TextContent concatenates the text nodes under n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var getTextHelp func(node *html.Node)
	getTextHelp = func(node *html.Node) {
		switch {
		case node == nil:
			// Do nothing.
		case node.Type == html.TextNode:
			b.WriteString(node.Data)
		default:
			for next := node.FirstChild; next != nil; next = next.NextSibling {
				getTextHelp(next)
			}
		}
	}
	getTextHelp(n)
	return b.String()
}
