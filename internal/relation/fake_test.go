package relation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/persistorai/relations/internal/domain"
	"github.com/persistorai/relations/internal/models"
)

// fakeEdge is one stored relationship in fakeStore.
type fakeEdge struct {
	source, target, relation string
}

// fakeStore is an instrumented in-process graph. It counts opened and
// closed cursors and the number of Next calls so tests can assert on
// laziness and resource release.
type fakeStore struct {
	nodes map[string]models.Node
	edges []fakeEdge

	opened    int
	closed    int
	nextCalls int

	failAfter   int // fail Next after this many successful reads; <0 disables
	failErr     error
	traverseErr error
	createErr   error
}

func newFakeStore(ids ...string) *fakeStore {
	s := &fakeStore{nodes: make(map[string]models.Node), failAfter: -1}
	for _, id := range ids {
		s.nodes[id] = models.Node{ID: id, Type: "person", Label: id}
	}

	return s
}

func (s *fakeStore) link(source, target, relation string) {
	s.edges = append(s.edges, fakeEdge{source: source, target: target, relation: relation})
}

func (s *fakeStore) Traverse(_ context.Context, origin string, d models.Descriptor) (domain.Cursor, error) {
	if s.traverseErr != nil {
		return nil, s.traverseErr
	}

	var ids []string

	for _, e := range s.edges {
		if e.relation != d.Type() {
			continue
		}

		switch {
		case e.source == origin && d.Direction() != models.Incoming:
			ids = append(ids, e.target)
		case e.target == origin && d.Direction() != models.Outgoing:
			ids = append(ids, e.source)
		}
	}

	var items []models.Node

	for _, id := range ids {
		n := s.nodes[id]
		if d.NodeType() != "" && n.Type != d.NodeType() {
			continue
		}

		items = append(items, n)
	}

	s.opened++

	return &fakeCursor{store: s, items: items}, nil
}

func (s *fakeStore) CreateRelationship(_ context.Context, from, to, relType string, dir models.Direction) (*models.Edge, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}

	if _, ok := s.nodes[to]; !ok {
		return nil, models.ErrNodeNotFound
	}

	source, target := models.Endpoints(from, to, dir)
	s.link(source, target, relType)

	return &models.Edge{Source: source, Target: target, Relation: relType, Weight: 1, CreatedAt: time.Now()}, nil
}

type fakeCursor struct {
	store  *fakeStore
	items  []models.Node
	pos    int
	closed bool
}

func (c *fakeCursor) Next(context.Context) (models.Node, error) {
	c.store.nextCalls++

	if c.store.failAfter >= 0 && c.pos >= c.store.failAfter {
		return models.Node{}, c.store.failErr
	}

	if c.pos >= len(c.items) {
		return models.Node{}, models.ErrCursorDone
	}

	n := c.items[c.pos]
	c.pos++

	return n, nil
}

func (c *fakeCursor) Close() {
	if c.closed {
		return
	}

	c.closed = true
	c.store.closed++
}

// assertReleased fails the test if any opened cursor was left open.
func (s *fakeStore) assertReleased(t *testing.T) {
	t.Helper()

	if s.opened != s.closed {
		t.Errorf("cursors opened = %d, closed = %d", s.opened, s.closed)
	}
}

// scenarioStore holds origin "o" with friends A, B, C and two relationships
// of another type.
func scenarioStore() *fakeStore {
	s := newFakeStore("o", "A", "B", "C", "D", "X", "Y")
	s.link("o", "A", "friends")
	s.link("o", "X", "enemies")
	s.link("o", "B", "friends")
	s.link("o", "Y", "enemies")
	s.link("o", "C", "friends")

	return s
}

func mustDescriptor(t *testing.T, relType string, dir models.Direction, opts ...models.DescriptorOption) models.Descriptor {
	t.Helper()

	d, err := models.NewDescriptor(relType, dir, opts...)
	if err != nil {
		t.Fatalf("NewDescriptor: %v", err)
	}

	return d
}

func ids(nodes []models.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}

	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

var errBoom = errors.New("boom")
