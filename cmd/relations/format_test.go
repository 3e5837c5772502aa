package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/persistorai/relations/client"
)

func TestFormatJSON(t *testing.T) {
	var b strings.Builder
	if err := formatJSON(&b, client.Node{ID: "abc-123", Label: "hello world"}); err != nil {
		t.Fatalf("formatJSON: %v", err)
	}

	var out client.Node
	if err := json.Unmarshal([]byte(b.String()), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, b.String())
	}
	if out.ID != "abc-123" {
		t.Errorf("id: got %q, want %q", out.ID, "abc-123")
	}
	if !strings.Contains(b.String(), "\n  ") {
		t.Errorf("expected indented output, got %q", b.String())
	}
}

func TestFormatTable(t *testing.T) {
	var b strings.Builder
	formatTable(&b, []string{"ID", "LABEL"}, [][]string{{"n1", "short"}, {"node-two", "x"}})

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	want := []string{
		"ID        LABEL",
		"--------  -----",
		"n1        short",
		"node-two  x",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), b.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestOutputPageTableFooter(t *testing.T) {
	orig := flagFmt
	t.Cleanup(func() { flagFmt = orig })
	flagFmt = "table"

	total := 9
	var b strings.Builder
	if err := outputPage(&b, &client.RelationPage{Items: []client.Node{{ID: "a"}}, Page: 3, PerPage: 4, TotalCount: &total}); err != nil {
		t.Fatalf("outputPage: %v", err)
	}
	if !strings.Contains(b.String(), "page 3, 4 per page, 9 total") {
		t.Errorf("missing footer in %q", b.String())
	}
}
