package structure

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"docstruct/internal/node"
	"golang.org/x/net/html"
)

// Flatten walks a markup document in document order and returns the
// provisional node list: headers, tables, images and text blocks, each with
// parent and depth derived from the stack of currently-open headers.
func Flatten(r io.Reader) ([]node.Provisional, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, &FormatError{Reason: "parse markup", Err: err}
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}

	type openHeader struct {
		level  int
		tempID int
	}
	var stack []openHeader
	out := []node.Provisional{}

	parentTemp := func() int {
		if len(stack) == 0 {
			return node.NoParent
		}
		return stack[len(stack)-1].tempID
	}
	emit := func(kind node.Kind, content string, meta map[string]any) int {
		tempID := len(out)
		out = append(out, node.Provisional{
			TempID:     tempID,
			ParentTemp: parentTemp(),
			Kind:       kind,
			Content:    content,
			Metadata:   meta,
			Position:   tempID,
			Depth:      len(stack),
		})
		return tempID
	}

	var walk func(n *html.Node, inTable, inCell, inListItem bool)
	walk = func(n *html.Node, inTable, inCell, inListItem bool) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				// This header closes every open header at its level or deeper.
				// Depth is the stack length before the header pushes itself,
				// so a level jump (h1 straight to h3) leaves no depth gap.
				for len(stack) > 0 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				tempID := emit(node.KindHeader, textContent(n), map[string]any{
					node.MetaLevel: level,
				})
				stack = append(stack, openHeader{level: level, tempID: tempID})
			} else {
				switch n.Data {
				case "script", "style":
					return
				case "table":
					if !inTable && !inCell {
						rows, cols := tableShape(n)
						emit(node.KindTable, renderFragment(n), map[string]any{
							node.MetaRows: rows,
							node.MetaCols: cols,
						})
					}
					inTable = true
				case "td", "th":
					inCell = true
				case "li":
					inListItem = true
				case "img":
					if !inTable && !inCell {
						emit(node.KindImage, renderFragment(n), map[string]any{
							node.MetaSrc: attr(n, "src"),
							node.MetaAlt: attr(n, "alt"),
						})
					}
				case "p", "div", "ul", "ol", "pre", "blockquote":
					// Only whole text blocks: skip blocks inside tables, cells
					// or list items, blocks wrapping structural elements (their
					// contents are visited and emitted individually), and
					// blocks with no text at all.
					if !inTable && !inCell && !inListItem &&
						!containsStructural(n) && textContent(n) != "" {
						emit(node.KindText, renderFragment(n), map[string]any{
							node.MetaTag: n.Data,
						})
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inTable, inCell, inListItem)
		}
	}
	walk(root, false, false, false)

	return out, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// textContent returns the trimmed concatenation of all text under n.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

// renderFragment serializes a single element subtree back to markup.
func renderFragment(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// containsStructural reports whether n has a header, table or image descendant.
func containsStructural(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if headingLevel(c.Data) > 0 || c.Data == "table" || c.Data == "img" {
				return true
			}
		}
		if containsStructural(c) {
			return true
		}
	}
	return false
}

// tableShape counts the rows of a table and the cells of its first row,
// ignoring rows that belong to a nested table.
func tableShape(table *html.Node) (rows, cols int) {
	var firstRow *html.Node
	var scan func(*html.Node)
	scan = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "table":
				continue // nested table keeps its own rows
			case "tr":
				rows++
				if firstRow == nil {
					firstRow = c
				}
			}
			scan(c)
		}
	}
	scan(table)

	if firstRow != nil {
		for c := firstRow.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cols++
			}
		}
	}
	return rows, cols
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// HeaderLevel reads the level out of a header node's metadata. Metadata maps
// round-trip through JSON, so numbers may come back as float64 or string.
func HeaderLevel(meta map[string]any) int {
	switch v := meta[node.MetaLevel].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
