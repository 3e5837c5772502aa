package store

import (
	"strings"
	"testing"

	"github.com/persistorai/relations/internal/models"
)

func TestBuildTraverseQuery(t *testing.T) {
	tests := []struct {
		name     string
		dir      models.Direction
		nodeType string
		contains []string
		wantArgs int
	}{
		{"outgoing", models.Outgoing, "", []string{"n.id = e.target", "e.source = $1", "e.relation = $2"}, 2},
		{"incoming", models.Incoming, "", []string{"n.id = e.source", "e.target = $1"}, 2},
		{"both", models.Both, "", []string{"CASE WHEN e.source = $1", "(e.source = $1 OR e.target = $1)"}, 2},
		{"node type", models.Outgoing, "person", []string{"n.type = $3"}, 3},
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

			query, args := buildTraverseQuery("origin-1", d)

			for _, want := range tt.contains {
				if !strings.Contains(query, want) {
					t.Errorf("query missing %q:\n%s", want, query)
				}
			}

			if !strings.HasSuffix(query, "ORDER BY e.seq") {
				t.Errorf("query should order by creation sequence:\n%s", query)
			}

			if len(args) != tt.wantArgs {
				t.Fatalf("args = %v, want %d", args, tt.wantArgs)
			}

			if args[0] != "origin-1" || args[1] != "friends" {
				t.Errorf("args = %v", args)
			}
		})
	}
}

func TestFetchSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultFetchSize},
		{-3, defaultFetchSize},
		{50, 50},
		{maxFetchSize + 1, maxFetchSize},
	}

	for _, tt := range tests {
		b := Base{FetchSize: tt.in}
		if got := b.fetchSize(); got != tt.want {
			t.Errorf("fetchSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
