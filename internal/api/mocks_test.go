package api_test

import (
	"context"
	"errors"

	"github.com/persistorai/relations/internal/dbpool"
	"github.com/persistorai/relations/internal/models"
)

// mockNodeService implements api.NodeService for testing.
type mockNodeService struct {
	getFn    func(ctx context.Context, nodeID string) (*models.Node, error)
	createFn func(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error)
}

func (m *mockNodeService) GetNode(ctx context.Context, nodeID string) (*models.Node, error) {
	return m.getFn(ctx, nodeID)
}

func (m *mockNodeService) CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error) {
	return m.createFn(ctx, req)
}

// mockRelationService implements api.RelationService for testing. Unset
// functions fail the call.
type mockRelationService struct {
	sizeFn   func(ctx context.Context, origin string, d models.Descriptor) (int, error)
	atFn     func(ctx context.Context, origin string, d models.Descriptor, index int) (*models.Node, bool, error)
	emptyFn  func(ctx context.Context, origin string, d models.Descriptor) (bool, error)
	pageFn   func(ctx context.Context, origin string, d models.Descriptor, q models.PageQuery) (*models.RelationPage, error)
	appendFn func(ctx context.Context, origin string, d models.Descriptor, targets []string) ([]models.Edge, error)
	streamFn func(ctx context.Context, origin string, d models.Descriptor, visit func(models.Node) error) error
}

var errNotConfigured = errors.New("mock not configured")

func (m *mockRelationService) Size(ctx context.Context, origin string, d models.Descriptor) (int, error) {
	if m.sizeFn == nil {
		return 0, errNotConfigured
	}
	return m.sizeFn(ctx, origin, d)
}

func (m *mockRelationService) At(ctx context.Context, origin string, d models.Descriptor, index int) (*models.Node, bool, error) {
	if m.atFn == nil {
		return nil, false, errNotConfigured
	}
	return m.atFn(ctx, origin, d, index)
}

func (m *mockRelationService) IsEmpty(ctx context.Context, origin string, d models.Descriptor) (bool, error) {
	if m.emptyFn == nil {
		return false, errNotConfigured
	}
	return m.emptyFn(ctx, origin, d)
}

func (m *mockRelationService) Page(
	ctx context.Context, origin string, d models.Descriptor, q models.PageQuery,
) (*models.RelationPage, error) {
	if m.pageFn == nil {
		return nil, errNotConfigured
	}
	return m.pageFn(ctx, origin, d, q)
}

func (m *mockRelationService) Append(
	ctx context.Context, origin string, d models.Descriptor, targets []string,
) ([]models.Edge, error) {
	if m.appendFn == nil {
		return nil, errNotConfigured
	}
	return m.appendFn(ctx, origin, d, targets)
}

func (m *mockRelationService) Stream(
	ctx context.Context, origin string, d models.Descriptor, visit func(models.Node) error,
) error {
	if m.streamFn == nil {
		return errNotConfigured
	}
	return m.streamFn(ctx, origin, d, visit)
}

// mockHealthChecker returns err from every check.
type mockHealthChecker struct{ err error }

func (m mockHealthChecker) HealthCheck(context.Context) error { return m.err }

// mockPoolChecker is a healthy checker that also reports pool figures.
type mockPoolChecker struct {
	mockHealthChecker
	stats dbpool.Stats
}

func (m mockPoolChecker) Stats() dbpool.Stats { return m.stats }
