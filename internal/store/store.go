// Package store provides the PostgreSQL graph backend.
//
// Each store owns one concern (nodes, relationships) and embeds shared
// helpers (Pool, logger) via the Base struct. Stores never import each
// other; shared logic lives in this file or in scan.go.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/dbpool"
	"github.com/persistorai/relations/internal/domain"
)

const (
	defaultQueryTimeout = 30 * time.Second
	defaultFetchSize    = 100
	maxFetchSize        = 10000
)

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger

	// FetchSize is the number of rows pulled per FETCH from a relationship
	// cursor. Zero means defaultFetchSize.
	FetchSize int
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", unavailable(err))
	}

	return tx, nil
}

// beginReadTx starts a read-only transaction. Cursors opened inside it see
// the snapshot taken by their DECLARE.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", unavailable(err))
	}

	return tx, nil
}

func (b *Base) fetchSize() int {
	switch {
	case b.FetchSize <= 0:
		return defaultFetchSize
	case b.FetchSize > maxFetchSize:
		return maxFetchSize
	default:
		return b.FetchSize
	}
}

// notify sends a pg_notify on the kg_changes channel (best-effort, post-commit).
func (b *Base) notify(table, op string, nodeIDs ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, _ := json.Marshal(map[string]any{ //nolint:errcheck // static keys, cannot fail.
		"table":    table,
		"op":       op,
		"node_ids": nodeIDs,
	})
	if _, err := b.Pool.Exec(ctx, "SELECT pg_notify('kg_changes', $1)", string(payload)); err != nil {
		b.Log.WithError(err).Warn("failed to send " + op + " " + table + " notification")
	}
}

// Graph bundles the node and relationship stores into one backend.
type Graph struct {
	*NodeStore
	*RelationStore
}

var _ domain.Graph = (*Graph)(nil)

// NewGraph creates a Graph sharing base between its stores.
func NewGraph(base Base) *Graph {
	return &Graph{
		NodeStore:     NewNodeStore(base),
		RelationStore: NewRelationStore(base),
	}
}
