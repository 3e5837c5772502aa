package client

import (
	"context"
	"net/url"
)

// NodeService handles node operations.
type NodeService struct {
	c *Client
}

// Get returns a single node by ID.
func (s *NodeService) Get(ctx context.Context, id string) (*Node, error) {
	var node Node
	if err := s.c.get(ctx, "/api/v1/nodes/"+url.PathEscape(id), nil, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// Create creates a new node. The server generates an ID when req.ID is empty.
func (s *NodeService) Create(ctx context.Context, req *CreateNodeRequest) (*Node, error) {
	var node Node
	if err := s.c.post(ctx, "/api/v1/nodes", req, &node); err != nil {
		return nil, err
	}
	return &node, nil
}
