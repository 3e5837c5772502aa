package client

import "time"

// Node represents a vertex in the relationship graph.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Edge represents a directed relationship between two nodes.
type Edge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Relation   string         `json:"relation"`
	Properties map[string]any `json:"properties"`
	Weight     float64        `json:"weight"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CreateNodeRequest is the payload for creating a node.
type CreateNodeRequest struct {
	ID         string         `json:"id,omitempty"`
	Type       string         `json:"type"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Direction values accepted by the relationship endpoints.
const (
	Outgoing = "outgoing"
	Incoming = "incoming"
	Both     = "both"
)

// Relation names one relationship collection: the origin node, the
// relationship type and how to follow it.
type Relation struct {
	Origin    string
	Type      string
	Direction string // Outgoing when empty
	NodeType  string // related-node type filter; empty for any
}

// PageOptions selects a page. Zero values use the server defaults.
type PageOptions struct {
	Page      int
	PerPage   int
	WithTotal bool
}

// RelationPage is one page of a relationship collection.
type RelationPage struct {
	Origin     string `json:"origin"`
	Relation   string `json:"relation"`
	Direction  string `json:"direction"`
	Items      []Node `json:"items"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	TotalCount *int   `json:"total_count,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Backend       string  `json:"backend"`
	Store         string  `json:"store"`
	SchemaVersion int     `json:"schema_version,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}
