package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/persistorai/relations/client"
)

func formatJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func formatTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, width := range widths {
		seps[i] = strings.Repeat("-", width)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

func nodeRows(nodes []client.Node) [][]string {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = []string{n.ID, n.Type, n.Label}
	}
	return rows
}

var nodeHeaders = []string{"ID", "TYPE", "LABEL"}

// outputNode prints one node in the selected format.
func outputNode(w io.Writer, n *client.Node) error {
	switch flagFmt {
	case "quiet":
		fmt.Fprintln(w, n.ID)
		return nil
	case "table":
		formatTable(w, nodeHeaders, nodeRows([]client.Node{*n}))
		return nil
	default:
		return formatJSON(w, n)
	}
}

// outputPage prints a page of related nodes in the selected format.
func outputPage(w io.Writer, p *client.RelationPage) error {
	switch flagFmt {
	case "quiet":
		for _, n := range p.Items {
			fmt.Fprintln(w, n.ID)
		}
		return nil
	case "table":
		formatTable(w, nodeHeaders, nodeRows(p.Items))
		footer := fmt.Sprintf("page %d, %d per page", p.Page, p.PerPage)
		if p.TotalCount != nil {
			footer += ", " + strconv.Itoa(*p.TotalCount) + " total"
		}
		fmt.Fprintln(w, footer)
		return nil
	default:
		return formatJSON(w, p)
	}
}

// outputValue prints a scalar result; json wraps it under key.
func outputValue(w io.Writer, key string, v any) error {
	if flagFmt == "json" || flagFmt == "" {
		return formatJSON(w, map[string]any{key: v})
	}
	fmt.Fprintln(w, v)
	return nil
}

// outputEdges prints created relationships.
func outputEdges(w io.Writer, edges []client.Edge) error {
	switch flagFmt {
	case "quiet":
		for _, e := range edges {
			fmt.Fprintf(w, "%s %s %s\n", e.Source, e.Relation, e.Target)
		}
		return nil
	case "table":
		rows := make([][]string, len(edges))
		for i, e := range edges {
			rows[i] = []string{e.Source, e.Relation, e.Target}
		}
		formatTable(w, []string{"SOURCE", "RELATION", "TARGET"}, rows)
		return nil
	default:
		return formatJSON(w, edges)
	}
}
