package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/domain"
	"github.com/persistorai/relations/internal/models"
	"github.com/persistorai/relations/internal/relation"
)

// RelationStore is the storage collections are opened on.
type RelationStore = relation.Store

// Compile-time check: *RelationService must satisfy domain.RelationService.
var _ domain.RelationService = (*RelationService)(nil)

// RelationService opens a fresh relationship collection per call.
type RelationService struct {
	store RelationStore
	pager *relation.Paginator
	sizes relation.SizeCache
	log   *logrus.Logger
}

// RelationOption configures a RelationService.
type RelationOption func(*RelationService)

// WithSizeCache makes every collection memoise its size in c.
func WithSizeCache(c relation.SizeCache) RelationOption {
	return func(s *RelationService) { s.sizes = c }
}

// NewRelationService creates a RelationService. pager supplies the defaults
// for missing page parameters.
func NewRelationService(store RelationStore, pager *relation.Paginator, log *logrus.Logger, opts ...RelationOption) *RelationService {
	s := &RelationService{store: store, pager: pager, log: log}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RelationService) collection(origin string, d models.Descriptor) *relation.Collection[models.Node] {
	var opts []relation.Option
	if s.sizes != nil {
		opts = append(opts, relation.WithSizeCache(s.sizes))
	}

	return relation.New(s.store, origin, d, opts...)
}

func (s *RelationService) logFields(origin string, d models.Descriptor) logrus.Fields {
	return logrus.Fields{
		"origin":    origin,
		"relation":  d.Type(),
		"direction": d.Direction().String(),
		"node_type": d.NodeType(),
	}
}

// Size counts the related nodes.
func (s *RelationService) Size(ctx context.Context, origin string, d models.Descriptor) (int, error) {
	n, err := s.collection(origin, d).Size(ctx)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(s.logFields(origin, d)).WithField("size", n).Debug("relationship size computed")

	return n, nil
}

// At returns the related node at index; ok is false past the end.
func (s *RelationService) At(ctx context.Context, origin string, d models.Descriptor, index int) (*models.Node, bool, error) {
	n, ok, err := s.collection(origin, d).At(ctx, index)
	if err != nil || !ok {
		return nil, ok, err
	}

	return &n, true, nil
}

// IsEmpty reports whether origin has no relationships matching d.
func (s *RelationService) IsEmpty(ctx context.Context, origin string, d models.Descriptor) (bool, error) {
	return s.collection(origin, d).IsEmpty(ctx)
}

// Page returns one page window. Zero page parameters take the paginator
// defaults; the total is only computed when q.WithTotal is set.
func (s *RelationService) Page(
	ctx context.Context, origin string, d models.Descriptor, q models.PageQuery,
) (*models.RelationPage, error) {
	number, size, err := s.pager.Resolve(q.Number, q.Size)
	if err != nil {
		return nil, err
	}

	page, err := s.collection(origin, d).Page(ctx, number, size)
	if err != nil {
		return nil, err
	}

	out := &models.RelationPage{
		Origin:    origin,
		Relation:  d.Type(),
		Direction: d.Direction().String(),
		Items:     page.Items,
		Page:      page.Number,
		PerPage:   page.Size,
	}

	if q.WithTotal {
		total, err := page.Total(ctx)
		if err != nil {
			return nil, err
		}

		out.TotalCount = &total
	}

	s.log.WithFields(s.logFields(origin, d)).WithFields(logrus.Fields{
		"page":     number,
		"per_page": size,
		"items":    len(page.Items),
	}).Debug("relationship page read")

	return out, nil
}

// Stream calls visit for every related node, in store order.
func (s *RelationService) Stream(
	ctx context.Context, origin string, d models.Descriptor, visit func(models.Node) error,
) error {
	return s.collection(origin, d).Each(ctx, visit)
}

// Append creates one relationship per target, in order. On failure it
// returns the relationships created before the failing target.
func (s *RelationService) Append(
	ctx context.Context, origin string, d models.Descriptor, targets []string,
) ([]models.Edge, error) {
	c := s.collection(origin, d)
	edges := make([]models.Edge, 0, len(targets))

	for _, target := range targets {
		e, err := c.Append(ctx, target)
		if err != nil {
			return edges, fmt.Errorf("target %d of %d: %w", len(edges)+1, len(targets), err)
		}

		edges = append(edges, *e)
	}

	s.log.WithFields(s.logFields(origin, d)).WithField("count", len(edges)).Info("relationships appended")

	return edges, nil
}
