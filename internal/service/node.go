// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/domain"
	"github.com/persistorai/relations/internal/models"
)

// NodeStore is the data-access interface NodeService depends on.
type NodeStore = domain.NodeStore

// Compile-time check: *NodeService must satisfy domain.NodeService.
var _ domain.NodeService = (*NodeService)(nil)

// NodeService wraps NodeStore with logging.
type NodeService struct {
	store NodeStore
	log   *logrus.Logger
}

// NewNodeService creates a NodeService.
func NewNodeService(store NodeStore, log *logrus.Logger) *NodeService {
	return &NodeService{store: store, log: log}
}

// GetNode returns a single node by ID (pass-through).
func (s *NodeService) GetNode(ctx context.Context, nodeID string) (*models.Node, error) {
	return s.store.GetNode(ctx, nodeID)
}

// CreateNode creates a node.
func (s *NodeService) CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error) {
	node, err := s.store.CreateNode(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"node_id": node.ID,
		"type":    node.Type,
	}).Debug("node created")

	return node, nil
}
