package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/relations/internal/models"
)

// NodeStore handles node persistence.
type NodeStore struct {
	Base
}

// NewNodeStore creates a new NodeStore.
func NewNodeStore(base Base) *NodeStore {
	return &NodeStore{Base: base}
}

// CreateNode inserts a new node and returns the created record.
func (s *NodeStore) CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating node: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	props := req.Properties
	if props == nil {
		props = map[string]any{}
	}

	query := `INSERT INTO kg_nodes (id, type, label, properties)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + nodeColumns

	row := tx.QueryRow(ctx, query, req.ID, req.Type, req.Label, props)

	n, err := scanNode(row.Scan)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("scanning created node: %w", unavailable(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create node: %w", unavailable(err))
	}

	s.notify("kg_nodes", "insert", n.ID)

	return n, nil
}

// GetNode returns a single node by ID.
func (s *NodeStore) GetNode(ctx context.Context, nodeID string) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx, "SELECT "+nodeColumns+" FROM kg_nodes WHERE id = $1", nodeID)

	n, err := scanNode(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNodeNotFound
		}

		return nil, fmt.Errorf("getting node: %w", unavailable(err))
	}

	return n, nil
}
