// Package relation provides lazy relationship collections: all nodes
// reachable from an origin node through one declared relationship type.
//
// A Collection holds no elements. Every read opens a fresh cursor on the
// store and walks it, so results always reflect the store at call time and
// two consecutive calls may disagree if the graph changed in between.
package relation

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/persistorai/relations/internal/domain"
	"github.com/persistorai/relations/internal/metrics"
	"github.com/persistorai/relations/internal/models"
)

// Store is the storage collaborator a Collection reads from and writes to.
type Store interface {
	domain.Traverser
	domain.Linker
}

// WrapFunc turns a raw store node into the collection's element type.
type WrapFunc[T any] func(ctx context.Context, n models.Node) (T, error)

// SizeCache memoises collection sizes. It is opt-in; entries for a node
// must be dropped whenever a relationship touching that node is created.
type SizeCache interface {
	Get(key string) (int, bool)
	Set(key string, size int)
	InvalidateNode(nodeID string)
}

type options struct {
	sizes SizeCache
}

// Option configures a Collection.
type Option func(*options)

// WithSizeCache enables size memoisation through c.
func WithSizeCache(c SizeCache) Option {
	return func(o *options) { o.sizes = c }
}

// Collection is the lazy view of one node's relationships of one type.
type Collection[T any] struct {
	store  Store
	origin string
	desc   models.Descriptor
	wrap   WrapFunc[T]
	sizes  SizeCache
}

var _ Sequence[models.Node] = (*Collection[models.Node])(nil)

// New returns a collection yielding raw nodes.
func New(store Store, origin string, d models.Descriptor, opts ...Option) *Collection[models.Node] {
	return NewWrapped(store, origin, d, func(_ context.Context, n models.Node) (models.Node, error) {
		return n, nil
	}, opts...)
}

// NewWrapped returns a collection yielding wrap(node) for every related node.
func NewWrapped[T any](store Store, origin string, d models.Descriptor, wrap WrapFunc[T], opts ...Option) *Collection[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return &Collection[T]{
		store:  store,
		origin: origin,
		desc:   d,
		wrap:   wrap,
		sizes:  o.sizes,
	}
}

// Origin returns the ID of the node the collection is rooted at.
func (c *Collection[T]) Origin() string { return c.origin }

// Descriptor returns the relationship declaration the collection follows.
func (c *Collection[T]) Descriptor() models.Descriptor { return c.desc }

// String describes the collection.
func (c *Collection[T]) String() string {
	return fmt.Sprintf("relation.Collection[%s, origin: %s, type: %s]", c.desc.Direction(), c.origin, c.desc.Type())
}

// walk drives one cursor to completion, to a Stop from visit, or to the
// first error. The cursor is closed on every path.
func (c *Collection[T]) walk(ctx context.Context, visit func(models.Node) error) error {
	cur, err := c.store.Traverse(ctx, c.origin, c.desc)
	if err != nil {
		observe(metrics.OutcomeFailed, 0)

		return &TraversalError{Origin: c.origin, Err: err}
	}
	defer cur.Close()

	var (
		visited int
		last    *models.Node
	)

	for {
		n, err := cur.Next(ctx)
		if errors.Is(err, models.ErrCursorDone) {
			observe(metrics.OutcomeComplete, visited)

			return nil
		}

		if err != nil {
			observe(metrics.OutcomeFailed, visited)

			return &TraversalError{Origin: c.origin, Visited: visited, Last: last, Err: err}
		}

		if err := visit(n); err != nil {
			if errors.Is(err, Stop) {
				observe(metrics.OutcomeStopped, visited+1)

				return nil
			}

			observe(metrics.OutcomeFailed, visited)

			return err
		}

		visited++
		last = &n
	}
}

func observe(outcome string, visited int) {
	metrics.TraversalsTotal.WithLabelValues(outcome).Inc()
	metrics.NodesVisited.Add(float64(visited))
}

// Each calls visit for every related node, in store order. Returning Stop
// from visit ends the walk and releases the cursor without reading further.
// Any other visitor error is returned unchanged; store failures are
// returned as *TraversalError.
func (c *Collection[T]) Each(ctx context.Context, visit func(T) error) error {
	return c.walk(ctx, func(n models.Node) error {
		item, err := c.wrap(ctx, n)
		if err != nil {
			return fmt.Errorf("wrapping node %q: %w", n.ID, err)
		}

		return visit(item)
	})
}

// EachNode is Each without wrapping; elements are the raw store nodes.
func (c *Collection[T]) EachNode(ctx context.Context, visit func(models.Node) error) error {
	return c.walk(ctx, visit)
}

// All returns the collection as a single-use range-over-func sequence.
// Breaking out of the loop closes the cursor. A failure is yielded once as
// the final pair with a zero element.
func (c *Collection[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		err := c.Each(ctx, func(item T) error {
			if !yield(item, nil) {
				return Stop
			}

			return nil
		})
		if err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Size counts related nodes by walking the full traversal. Without a size
// cache nothing is remembered between calls.
func (c *Collection[T]) Size(ctx context.Context) (int, error) {
	key := c.cacheKey()

	if c.sizes != nil {
		if n, ok := c.sizes.Get(key); ok {
			metrics.SizeCacheTotal.WithLabelValues("hit").Inc()

			return n, nil
		}

		metrics.SizeCacheTotal.WithLabelValues("miss").Inc()
	}

	n := 0
	if err := c.walk(ctx, func(models.Node) error {
		n++

		return nil
	}); err != nil {
		return 0, err
	}

	if c.sizes != nil {
		c.sizes.Set(key, n)
	}

	return n, nil
}

// At returns the element at index. ok is false when index is past the end.
// Negative indices are rejected with models.ErrInvalidArgument.
func (c *Collection[T]) At(ctx context.Context, index int) (item T, ok bool, err error) {
	if index < 0 {
		return item, false, models.InvalidArgument("negative index %d", index)
	}

	var (
		found models.Node
		i     int
	)

	err = c.walk(ctx, func(n models.Node) error {
		if i == index {
			found, ok = n, true

			return Stop
		}

		i++

		return nil
	})
	if err != nil || !ok {
		return item, false, err
	}

	item, err = c.wrap(ctx, found)
	if err != nil {
		return item, false, fmt.Errorf("wrapping node %q: %w", found.ID, err)
	}

	return item, true, nil
}

// First returns the first element, reading at most one from the store.
func (c *Collection[T]) First(ctx context.Context) (T, bool, error) {
	return c.At(ctx, 0)
}

// IsEmpty reports whether the collection has no elements. It reads at most
// one element from the store.
func (c *Collection[T]) IsEmpty(ctx context.Context) (bool, error) {
	empty := true

	err := c.walk(ctx, func(models.Node) error {
		empty = false

		return Stop
	})
	if err != nil {
		return false, err
	}

	return empty, nil
}

// ToSlice drains the whole traversal into memory.
func (c *Collection[T]) ToSlice(ctx context.Context) ([]T, error) {
	items := make([]T, 0, 16)

	if err := c.Each(ctx, func(item T) error {
		items = append(items, item)

		return nil
	}); err != nil {
		return nil, err
	}

	return items, nil
}

// Page returns the page window [(number-1)*size, number*size). Only the
// elements inside the window are wrapped.
func (c *Collection[T]) Page(ctx context.Context, number, size int) (*PageResult[T], error) {
	raw, err := Paginate[models.Node](ctx, nodeWalker{walk: c.walk}, number, size)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(raw.Items))

	for _, n := range raw.Items {
		item, err := c.wrap(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("wrapping node %q: %w", n.ID, err)
		}

		items = append(items, item)
	}

	return &PageResult[T]{Items: items, Number: number, Size: size, count: c.Size}, nil
}

// Append creates one relationship of the collection's type and direction
// between the origin and other, and returns it. Walks already in progress
// are not affected.
func (c *Collection[T]) Append(ctx context.Context, other string) (*models.Edge, error) {
	if other == "" {
		return nil, models.ErrMissingTarget
	}

	e, err := c.store.CreateRelationship(ctx, c.origin, other, c.desc.Type(), c.desc.Direction())
	if err != nil {
		return nil, fmt.Errorf("appending %q to %s: %w", other, c, err)
	}

	metrics.RelationshipsCreated.Inc()

	if c.sizes != nil {
		c.sizes.InvalidateNode(c.origin)
		c.sizes.InvalidateNode(other)
	}

	return e, nil
}

// Add appends each of others in order, as independent Append calls, and
// returns the collection so further calls can follow. It stops at the first
// failure; relationships created before it are kept.
func (c *Collection[T]) Add(ctx context.Context, others ...string) (*Collection[T], error) {
	for _, other := range others {
		if _, err := c.Append(ctx, other); err != nil {
			return c, err
		}
	}

	return c, nil
}

// CacheKey returns the size cache key for origin and d. Keys for one node
// share the prefix returned by CacheKeyPrefix.
func CacheKey(origin string, d models.Descriptor) string {
	return CacheKeyPrefix(origin) + d.Key()
}

// CacheKeyPrefix returns the prefix shared by all cache keys of nodeID.
func CacheKeyPrefix(nodeID string) string {
	return nodeID + "\x00"
}

func (c *Collection[T]) cacheKey() string {
	return CacheKey(c.origin, c.desc)
}

// nodeWalker adapts an unwrapped walk to Walker.
type nodeWalker struct {
	walk func(context.Context, func(models.Node) error) error
}

func (w nodeWalker) Each(ctx context.Context, visit func(models.Node) error) error {
	return w.walk(ctx, visit)
}
