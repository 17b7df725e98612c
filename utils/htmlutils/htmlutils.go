// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	headerStyle  = "color: #1a73e8; margin-top: 20px;"
	itemStyle    = "margin: 5px 0;"
	tableStyle   = "border-collapse: collapse; margin: 10px 0;"
	headRowStyle = "background-color: #f0f8ff;"
	cellStyle    = "padding: 8px; border: 1px solid #ddd;"
	preStyle     = "background-color: #f5f5f5; padding: 10px; margin: 5px 0; border-left: 3px solid #4CAF50;"
	paraStyle    = "margin: 8px 0; line-height: 1.5;"
)

// banner lines of previously generated reports
func isBanner(line string) bool {
	return strings.HasPrefix(line, "Attractions based on ChatGPT") ||
		line == strings.Repeat("=", 80) ||
		strings.HasPrefix(line, "Generated on:") ||
		strings.HasPrefix(line, "GEMINI ANALYSIS:")
}

func element(a atom.Atom, style string, text string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if style != "" {
		n.Attr = []html.Attribute{{Key: "style", Val: style}}
	}

	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}

	return n
}

// TranscriptToHTML converts a plain-text transcript with light markdown
// into an HTML fragment rooted at a <div>:
//
//   - "**text**" lines become <h3>
//   - "* text" lines become list items
//   - "| a | b |" lines become table rows, a row mentioning "Metric" starts a
//     new table with a header row, "|---" separators are dropped
//   - lines indented by a tab or four spaces become <pre>
//   - other non-blank lines become <p>, blank lines <br>
//
// Text is stored in text nodes, so markup in the transcript is escaped on
// rendering.
func TranscriptToHTML(text string) *html.Node {
	root := element(atom.Div, "", "")

	var list, table *html.Node

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if isBanner(line) {
			continue
		}

		trimmed := strings.TrimSpace(line)

		isItem := strings.HasPrefix(trimmed, "* ")
		if !isItem {
			list = nil
		}

		isRow := !isItem && !isHeader(trimmed) && strings.Contains(line, "|") && trimmed != ""
		if !isRow {
			table = nil
		}

		switch {
		case isHeader(trimmed):
			root.AppendChild(element(atom.H3, headerStyle, trimmed[2:len(trimmed)-2]))
		case isItem:
			if list == nil {
				list = element(atom.Ul, "", "")
				root.AppendChild(list)
			}

			list.AppendChild(element(atom.Li, itemStyle, strings.TrimSpace(trimmed[2:])))
		case isRow:
			cells := strings.Split(line, "|")
			if len(cells) <= 2 {
				continue
			}

			cells = cells[1 : len(cells)-1]

			if strings.Contains(line, "Metric") {
				table = element(atom.Table, tableStyle, "")
				root.AppendChild(table)
				table.AppendChild(row(atom.Th, headRowStyle, cells))
			} else if !strings.HasPrefix(trimmed, "|---") {
				if table == nil {
					table = element(atom.Table, tableStyle, "")
					root.AppendChild(table)
				}

				table.AppendChild(row(atom.Td, "", cells))
			}
		case strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t"):
			root.AppendChild(element(atom.Pre, preStyle, trimmed))
		case trimmed != "":
			root.AppendChild(element(atom.P, paraStyle, trimmed))
		default:
			root.AppendChild(element(atom.Br, "", ""))
		}
	}

	return root
}

func isHeader(s string) bool {
	return len(s) > 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**")
}

func row(cell atom.Atom, style string, cells []string) *html.Node {
	tr := element(atom.Tr, style, "")
	for _, c := range cells {
		tr.AppendChild(element(cell, cellStyle, strings.TrimSpace(c)))
	}

	return tr
}

// Render serializes n, escaping text nodes.
func Render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}

	return sb.String(), nil
}
