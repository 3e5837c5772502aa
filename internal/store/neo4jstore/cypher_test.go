package neo4jstore

import (
	"strings"
	"testing"

	"github.com/persistorai/relations/internal/models"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"FRIENDS", "`FRIENDS`"},
		{"has part", "`has part`"},
		{"a`b", "`a``b`"},
	}

	for _, tt := range tests {
		if got := quoteIdentifier(tt.in); got != tt.want {
			t.Errorf("quoteIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildTraverseCypher(t *testing.T) {
	tests := []struct {
		name     string
		dir      models.Direction
		nodeType string
		pattern  string
	}{
		{"outgoing", models.Outgoing, "", "(o)-[r:`friends`]->(n:Node)"},
		{"incoming", models.Incoming, "", "(o)<-[r:`friends`]-(n:Node)"},
		{"both", models.Both, "", "(o)-[r:`friends`]-(n:Node)"},
		{"node type", models.Outgoing, "person", "(o)-[r:`friends`]->(n:Node)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []models.DescriptorOption
			if tt.nodeType != "" {
				opts = append(opts, models.WithNodeType(tt.nodeType))
			}

			d, err := models.NewDescriptor("friends", tt.dir, opts...)
			if err != nil {
				t.Fatalf("NewDescriptor: %v", err)
			}

			query, params := buildTraverseCypher("o-1", d)

			if !strings.Contains(query, tt.pattern) {
				t.Errorf("query missing %q:\n%s", tt.pattern, query)
			}

			if params["origin"] != "o-1" {
				t.Errorf("origin param = %v", params["origin"])
			}

			_, hasType := params["node_type"]
			if hasType != (tt.nodeType != "") || strings.Contains(query, "$node_type") != hasType {
				t.Errorf("node_type param present = %v, query:\n%s", hasType, query)
			}

			if !strings.Contains(query, "ORDER BY r.created_at") {
				t.Errorf("query should order by creation time:\n%s", query)
			}
		})
	}
}

func TestBuildCreateCypher_QuotesType(t *testing.T) {
	q := buildCreateCypher("x]->(m) DETACH DELETE m //")
	if !strings.Contains(q, "[r:`x]->(m) DETACH DELETE m //`") {
		t.Errorf("relationship type not quoted:\n%s", q)
	}

	if !strings.Contains(buildCheckCypher("knows"), "(s)-[:`knows`]->(t)") {
		t.Error("check query should test for an existing relationship")
	}
}
