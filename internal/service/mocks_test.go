package service

import (
	"context"
	"sync"

	"github.com/persistorai/relations/internal/domain"
	"github.com/persistorai/relations/internal/models"
)

// mockNodeStore records calls and returns configured responses.
type mockNodeStore struct {
	mu    sync.Mutex
	calls []string

	getNode    func(ctx context.Context, nodeID string) (*models.Node, error)
	createNode func(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error)
}

func (m *mockNodeStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockNodeStore) GetNode(ctx context.Context, nodeID string) (*models.Node, error) {
	m.record("GetNode")
	return m.getNode(ctx, nodeID)
}

func (m *mockNodeStore) CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error) {
	m.record("CreateNode")
	return m.createNode(ctx, req)
}

// mockRelationStore records calls and returns configured responses.
type mockRelationStore struct {
	mu    sync.Mutex
	calls []string

	traverse           func(ctx context.Context, origin string, d models.Descriptor) (domain.Cursor, error)
	createRelationship func(ctx context.Context, from, to, relType string, dir models.Direction) (*models.Edge, error)
}

func (m *mockRelationStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockRelationStore) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}

	return n
}

func (m *mockRelationStore) Traverse(ctx context.Context, origin string, d models.Descriptor) (domain.Cursor, error) {
	m.record("Traverse")
	return m.traverse(ctx, origin, d)
}

func (m *mockRelationStore) CreateRelationship(
	ctx context.Context, from, to, relType string, dir models.Direction,
) (*models.Edge, error) {
	m.record("CreateRelationship")
	return m.createRelationship(ctx, from, to, relType, dir)
}

// sliceCursor yields fixed nodes and then fails with err, if set.
type sliceCursor struct {
	nodes  []models.Node
	err    error
	pos    int
	closed bool
}

func (c *sliceCursor) Next(context.Context) (models.Node, error) {
	if c.pos >= len(c.nodes) {
		if c.err != nil {
			return models.Node{}, c.err
		}

		return models.Node{}, models.ErrCursorDone
	}

	n := c.nodes[c.pos]
	c.pos++

	return n, nil
}

func (c *sliceCursor) Close() { c.closed = true }

// mapSizeCache is a SizeCache without eviction.
type mapSizeCache struct {
	mu      sync.Mutex
	sizes   map[string]int
	dropped []string
}

func newMapSizeCache() *mapSizeCache { return &mapSizeCache{sizes: make(map[string]int)} }

func (c *mapSizeCache) Get(key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.sizes[key]

	return n, ok
}

func (c *mapSizeCache) Set(key string, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sizes[key] = size
}

func (c *mapSizeCache) InvalidateNode(nodeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropped = append(c.dropped, nodeID)
	for k := range c.sizes {
		if len(k) > len(nodeID) && k[:len(nodeID)+1] == nodeID+"\x00" {
			delete(c.sizes, k)
		}
	}
}
