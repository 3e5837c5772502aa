// Package memory provides an in-process graph backend on copy-on-write
// B-trees. Every traversal reads a snapshot taken when it was opened, so
// relationships appended mid-walk are seen only by later traversals.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/btree"

	"github.com/persistorai/relations/internal/domain"
	"github.com/persistorai/relations/internal/models"
)

// adjItem is one adjacency entry: a relationship seen from node.
type adjItem struct {
	node     string
	relation string
	seq      uint64
	other    string
}

func adjLess(a, b adjItem) bool {
	if c := cmp.Compare(a.node, b.node); c != 0 {
		return c < 0
	}

	if c := cmp.Compare(a.relation, b.relation); c != 0 {
		return c < 0
	}

	return a.seq < b.seq
}

func nodeLess(a, b models.Node) bool { return a.ID < b.ID }

type edgeKey struct {
	source, target, relation string
}

// Store is an in-memory domain.Graph. Traversals yield relationships in
// creation order.
type Store struct {
	mu    sync.Mutex
	log   *logrus.Logger
	nodes *btree.BTreeG[models.Node]
	out   *btree.BTreeG[adjItem]
	in    *btree.BTreeG[adjItem]
	edges map[edgeKey]struct{}
	seq   uint64
	now   func() time.Time
}

var _ domain.Graph = (*Store)(nil)

// New creates an empty Store.
func New(log *logrus.Logger) *Store {
	return &Store{
		log:   log,
		nodes: btree.NewBTreeG(nodeLess),
		out:   btree.NewBTreeG(adjLess),
		in:    btree.NewBTreeG(adjLess),
		edges: make(map[edgeKey]struct{}),
		now:   time.Now,
	}
}

// CreateNode stores a node. req must already be validated.
func (s *Store) CreateNode(_ context.Context, req models.CreateNodeRequest) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes.Get(models.Node{ID: req.ID}); ok {
		return nil, models.ErrDuplicateKey
	}

	props := maps.Clone(req.Properties)
	if props == nil {
		props = map[string]any{}
	}

	now := s.now().UTC()
	n := models.Node{
		ID:         req.ID,
		Type:       req.Type,
		Label:      req.Label,
		Properties: props,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.nodes.Set(n)

	out := n
	out.Properties = maps.Clone(props)

	return &out, nil
}

// GetNode returns a copy of the node with the given ID.
func (s *Store) GetNode(_ context.Context, nodeID string) (*models.Node, error) {
	n, ok := s.nodes.Get(models.Node{ID: nodeID})
	if !ok {
		return nil, models.ErrNodeNotFound
	}

	n.Properties = maps.Clone(n.Properties)

	return &n, nil
}

// CreateRelationship records one relationship. An Incoming direction
// stores the edge as to -> from.
func (s *Store) CreateRelationship(_ context.Context, from, to, relType string, dir models.Direction) (*models.Edge, error) {
	source, target := models.Endpoints(from, to, dir)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes.Get(models.Node{ID: source}); !ok {
		return nil, fmt.Errorf("source node %q: %w", source, models.ErrNodeNotFound)
	}

	if _, ok := s.nodes.Get(models.Node{ID: target}); !ok {
		return nil, fmt.Errorf("target node %q: %w", target, models.ErrNodeNotFound)
	}

	key := edgeKey{source: source, target: target, relation: relType}
	if _, ok := s.edges[key]; ok {
		return nil, models.ErrDuplicateKey
	}

	s.seq++
	s.edges[key] = struct{}{}
	s.out.Set(adjItem{node: source, relation: relType, seq: s.seq, other: target})
	s.in.Set(adjItem{node: target, relation: relType, seq: s.seq, other: source})

	s.log.WithFields(logrus.Fields{
		"source":   source,
		"target":   target,
		"relation": relType,
		"seq":      s.seq,
	}).Debug("relationship created")

	return &models.Edge{
		Source:     source,
		Target:     target,
		Relation:   relType,
		Properties: map[string]any{},
		Weight:     1.0,
		CreatedAt:  s.now().UTC(),
	}, nil
}

// Traverse snapshots the adjacency trees and returns a cursor over them.
func (s *Store) Traverse(_ context.Context, origin string, d models.Descriptor) (domain.Cursor, error) {
	s.mu.Lock()
	nodes := s.nodes.Copy()
	out := s.out.Copy()
	in := s.in.Copy()
	s.mu.Unlock()

	if _, ok := nodes.Get(models.Node{ID: origin}); !ok {
		return nil, fmt.Errorf("origin node %q: %w", origin, models.ErrNodeNotFound)
	}

	c := &cursor{nodes: nodes, nodeType: d.NodeType()}

	switch d.Direction() {
	case models.Outgoing:
		c.streams = []*stream{newStream(out, origin, d.Type(), false)}
	case models.Incoming:
		c.streams = []*stream{newStream(in, origin, d.Type(), false)}
	default:
		// A self-loop appears in both trees; yield it from the outgoing side only.
		c.streams = []*stream{
			newStream(out, origin, d.Type(), false),
			newStream(in, origin, d.Type(), true),
		}
	}

	return c, nil
}

// stream walks the adjacency entries of one node and relationship type.
type stream struct {
	it       btree.IterG[adjItem]
	origin   string
	relation string
	skipSelf bool
	cur      adjItem
	ok       bool
}

func newStream(tree *btree.BTreeG[adjItem], origin, relation string, skipSelf bool) *stream {
	s := &stream{it: tree.Iter(), origin: origin, relation: relation, skipSelf: skipSelf}
	s.ok = s.it.Seek(adjItem{node: origin, relation: relation})
	s.settle()

	return s
}

// settle positions the stream on the next entry it should yield.
func (s *stream) settle() {
	for s.ok {
		item := s.it.Item()
		if item.node != s.origin || item.relation != s.relation {
			s.ok = false

			return
		}

		if s.skipSelf && item.other == s.origin {
			s.ok = s.it.Next()

			continue
		}

		s.cur = item

		return
	}
}

func (s *stream) pop() adjItem {
	item := s.cur
	s.ok = s.it.Next()
	s.settle()

	return item
}

type cursor struct {
	nodes    *btree.BTreeG[models.Node]
	streams  []*stream
	nodeType string
	closed   bool
}

// Next merges the streams by creation sequence.
func (c *cursor) Next(context.Context) (models.Node, error) {
	for !c.closed {
		var next *stream

		for _, s := range c.streams {
			if s.ok && (next == nil || s.cur.seq < next.cur.seq) {
				next = s
			}
		}

		if next == nil {
			return models.Node{}, models.ErrCursorDone
		}

		item := next.pop()

		n, ok := c.nodes.Get(models.Node{ID: item.other})
		if !ok || (c.nodeType != "" && n.Type != c.nodeType) {
			continue
		}

		n.Properties = maps.Clone(n.Properties)

		return n, nil
	}

	return models.Node{}, models.ErrCursorDone
}

func (c *cursor) Close() {
	if c.closed {
		return
	}

	c.closed = true

	for _, s := range c.streams {
		s.it.Release()
	}
}
