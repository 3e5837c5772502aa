package api

import (
	"context"

	"github.com/persistorai/relations/internal/dbpool"
	"github.com/persistorai/relations/internal/domain"
)

// NodeService is the node surface used by NodeHandler.
type NodeService = domain.NodeService

// RelationService is the relationship collection surface used by RelationHandler.
type RelationService = domain.RelationService

// HealthChecker reports whether a storage backend is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// PoolReporter is implemented by backends with a connection pool. Readiness
// includes its figures when the health checker provides them.
type PoolReporter interface {
	Stats() dbpool.Stats
}
