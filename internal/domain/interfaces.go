// Package domain defines the canonical interfaces shared across layers:
// the storage collaborators consumed by relationship collections and the
// service interfaces consumed by the REST API. Consumers should depend on
// these interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/persistorai/relations/internal/models"
)

// Cursor is a live handle into an in-progress traversal. It is released by
// calling Close, which must be safe to call more than once and after Next
// has returned models.ErrCursorDone.
type Cursor interface {
	// Next returns the next related node, or models.ErrCursorDone when the
	// traversal is exhausted.
	Next(ctx context.Context) (models.Node, error)
	Close()
}

// Traverser opens lazy traversals. There is NO guarantee on the order of
// the nodes yielded beyond what each implementation documents.
type Traverser interface {
	Traverse(ctx context.Context, origin string, d models.Descriptor) (Cursor, error)
}

// Linker creates relationships.
type Linker interface {
	CreateRelationship(ctx context.Context, from, to, relType string, dir models.Direction) (*models.Edge, error)
}

// NodeStore defines node persistence operations.
type NodeStore interface {
	CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error)
	GetNode(ctx context.Context, nodeID string) (*models.Node, error)
}

// Graph is a complete storage backend.
type Graph interface {
	NodeStore
	Traverser
	Linker
}

// NodeService defines node operations exposed by the API.
type NodeService interface {
	CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error)
	GetNode(ctx context.Context, nodeID string) (*models.Node, error)
}

// RelationService defines relationship collection operations exposed by the API.
type RelationService interface {
	Size(ctx context.Context, origin string, d models.Descriptor) (int, error)
	At(ctx context.Context, origin string, d models.Descriptor, index int) (*models.Node, bool, error)
	IsEmpty(ctx context.Context, origin string, d models.Descriptor) (bool, error)
	Page(ctx context.Context, origin string, d models.Descriptor, q models.PageQuery) (*models.RelationPage, error)
	Append(ctx context.Context, origin string, d models.Descriptor, targets []string) ([]models.Edge, error)

	// Stream visits every related node in store order; a visit error ends
	// the walk and is returned.
	Stream(ctx context.Context, origin string, d models.Descriptor, visit func(models.Node) error) error
}
