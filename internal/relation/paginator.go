package relation

import (
	"context"
	"fmt"
	"math"

	"github.com/persistorai/relations/internal/models"
)

// Walker is anything that can be enumerated with a stoppable visitor.
type Walker[T any] interface {
	Each(ctx context.Context, visit func(T) error) error
}

// PageResult is one page window. The total is unknown until Total is called.
type PageResult[T any] struct {
	Items  []T
	Number int
	Size   int

	total *int
	count func(context.Context) (int, error)
}

// Total returns the number of elements in the whole source. The first call
// walks the full source; later calls return the memoised value.
func (p *PageResult[T]) Total(ctx context.Context) (int, error) {
	if p.total != nil {
		return *p.total, nil
	}

	n, err := p.count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting page total: %w", err)
	}

	p.total = &n

	return n, nil
}

// TotalKnown reports whether Total has been computed.
func (p *PageResult[T]) TotalKnown() bool { return p.total != nil }

// TotalCount returns the memoised total, or nil if it was never requested.
func (p *PageResult[T]) TotalCount() *int { return p.total }

// Paginate returns the elements of src with index in
// [(number-1)*size, number*size). The walk stops as soon as the window is
// full, so nothing past the window is read. A page beyond the data is empty.
func Paginate[T any](ctx context.Context, src Walker[T], number, size int) (*PageResult[T], error) {
	if number < 1 {
		return nil, models.InvalidArgument("page number must be >= 1, got %d", number)
	}

	if size <= 0 {
		return nil, models.InvalidArgument("page size must be > 0, got %d", size)
	}

	page := &PageResult[T]{
		Number: number,
		Size:   size,
		count:  func(ctx context.Context) (int, error) { return Count(ctx, src) },
	}

	// A window that cannot be addressed as an int lies beyond any source.
	if number-1 > (math.MaxInt-size)/size {
		page.Items = []T{}

		return page, nil
	}

	from := (number - 1) * size
	to := from + size
	items := make([]T, 0, min(size, 64))
	i := 0

	err := src.Each(ctx, func(item T) error {
		if i >= from {
			items = append(items, item)
		}

		i++
		if i >= to {
			return Stop
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	page.Items = items

	return page, nil
}

type sizer interface {
	Size(ctx context.Context) (int, error)
}

// Count returns the number of elements in src, using its Size method when
// it has one.
func Count[T any](ctx context.Context, src Walker[T]) (int, error) {
	if s, ok := src.(sizer); ok {
		return s.Size(ctx)
	}

	n := 0
	err := src.Each(ctx, func(T) error {
		n++

		return nil
	})

	return n, err
}

// PageConfig holds the pagination defaults applied by request handlers.
type PageConfig struct {
	DefaultPage int
	DefaultSize int
	MaxSize     int
}

// DefaultPageConfig returns page 1, 25 per page, at most 1000 per page.
func DefaultPageConfig() PageConfig {
	return PageConfig{DefaultPage: 1, DefaultSize: 25, MaxSize: 1000}
}

// Validate checks that the defaults are usable.
func (c PageConfig) Validate() error {
	if c.DefaultPage < 1 {
		return models.InvalidArgument("default page must be >= 1, got %d", c.DefaultPage)
	}

	if c.MaxSize < 1 {
		return models.InvalidArgument("max page size must be >= 1, got %d", c.MaxSize)
	}

	if c.DefaultSize < 1 || c.DefaultSize > c.MaxSize {
		return models.InvalidArgument("default page size must be in [1, %d], got %d", c.MaxSize, c.DefaultSize)
	}

	return nil
}

// Paginator resolves request parameters against explicit defaults.
type Paginator struct {
	cfg PageConfig
}

// NewPaginator validates cfg and returns a Paginator using it.
func NewPaginator(cfg PageConfig) (*Paginator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Paginator{cfg: cfg}, nil
}

// Config returns the paginator's defaults.
func (p *Paginator) Config() PageConfig { return p.cfg }

// Resolve fills zero parameters with defaults and clamps size to MaxSize.
// Negative parameters are rejected.
func (p *Paginator) Resolve(number, size int) (int, int, error) {
	if number < 0 {
		return 0, 0, models.InvalidArgument("page number must be >= 1, got %d", number)
	}

	if size < 0 {
		return 0, 0, models.InvalidArgument("page size must be > 0, got %d", size)
	}

	if number == 0 {
		number = p.cfg.DefaultPage
	}

	if size == 0 {
		size = p.cfg.DefaultSize
	}

	return number, min(size, p.cfg.MaxSize), nil
}
