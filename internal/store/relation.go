package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/domain"
	"github.com/persistorai/relations/internal/models"
)

// cursorName is the server-side cursor declared by Traverse. Every
// traversal runs in its own transaction, so the name never collides.
const cursorName = "rel_cursor"

// RelationStore streams and creates relationships.
type RelationStore struct {
	Base
}

// NewRelationStore creates a new RelationStore.
func NewRelationStore(base Base) *RelationStore {
	return &RelationStore{Base: base}
}

var (
	_ domain.Traverser = (*RelationStore)(nil)
	_ domain.Linker    = (*RelationStore)(nil)
)

// buildTraverseQuery returns the SELECT behind a relationship cursor and its
// arguments. Rows come back in relationship creation order.
func buildTraverseQuery(origin string, d models.Descriptor) (string, []any) {
	var join, where string

	switch d.Direction() {
	case models.Incoming:
		join = "n.id = e.source"
		where = "e.target = $1"
	case models.Both:
		join = "n.id = CASE WHEN e.source = $1 THEN e.target ELSE e.source END"
		where = "(e.source = $1 OR e.target = $1)"
	default:
		join = "n.id = e.target"
		where = "e.source = $1"
	}

	args := []any{origin, d.Type()}

	query := `SELECT n.id, n.type, n.label, n.properties, n.created_at, n.updated_at
		FROM kg_edges e
		JOIN kg_nodes n ON ` + join + `
		WHERE ` + where + ` AND e.relation = $2`

	if d.NodeType() != "" {
		args = append(args, d.NodeType())
		query += " AND n.type = $" + strconv.Itoa(len(args))
	}

	query += " ORDER BY e.seq"

	return query, args
}

// Traverse declares a server-side cursor over origin's relationships and
// returns a domain.Cursor that pulls it FetchSize rows at a time. The
// cursor holds a pooled connection until Close.
func (s *RelationStore) Traverse(ctx context.Context, origin string, d models.Descriptor) (domain.Cursor, error) {
	openCtx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(openCtx)
	if err != nil {
		return nil, fmt.Errorf("opening traversal: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(openCtx, `SELECT EXISTS(SELECT 1 FROM kg_nodes WHERE id = $1)`, origin).Scan(&exists); err != nil {
		tx.Rollback(openCtx) //nolint:errcheck // best-effort rollback on setup failure.

		return nil, fmt.Errorf("checking origin node: %w", unavailable(err))
	}

	if !exists {
		tx.Rollback(openCtx) //nolint:errcheck // best-effort rollback on setup failure.

		return nil, fmt.Errorf("origin node %q: %w", origin, models.ErrNodeNotFound)
	}

	query, args := buildTraverseQuery(origin, d)

	if _, err := tx.Exec(openCtx, "DECLARE "+cursorName+" NO SCROLL CURSOR FOR "+query, args...); err != nil {
		tx.Rollback(openCtx) //nolint:errcheck // best-effort rollback on setup failure.

		return nil, fmt.Errorf("declaring relationship cursor: %w", unavailable(err))
	}

	size := s.fetchSize()

	s.Log.WithFields(logrus.Fields{
		"origin":     origin,
		"relation":   d.Type(),
		"direction":  d.Direction().String(),
		"fetch_size": size,
	}).Debug("relationship cursor opened")

	return &pgCursor{
		tx:    tx,
		fetch: "FETCH FORWARD " + strconv.Itoa(size) + " FROM " + cursorName,
		size:  size,
		log:   s.Log,
	}, nil
}

// pgCursor buffers one FETCH batch at a time.
type pgCursor struct {
	tx     pgx.Tx
	fetch  string
	size   int
	buf    []models.Node
	pos    int
	done   bool
	closed bool
	log    *logrus.Logger
}

func (c *pgCursor) Next(ctx context.Context) (models.Node, error) {
	if c.pos < len(c.buf) {
		n := c.buf[c.pos]
		c.pos++

		return n, nil
	}

	if c.done || c.closed {
		return models.Node{}, models.ErrCursorDone
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := c.tx.Query(ctx, c.fetch)
	if err != nil {
		return models.Node{}, fmt.Errorf("fetching relationships: %w", unavailable(err))
	}

	nodes, err := collectNodes(rows)
	if err != nil {
		return models.Node{}, unavailable(err)
	}

	c.buf, c.pos = nodes, 0
	c.done = len(nodes) < c.size

	if len(nodes) == 0 {
		return models.Node{}, models.ErrCursorDone
	}

	c.pos = 1

	return nodes[0], nil
}

// Close rolls back the cursor's transaction, which also drops the cursor
// and returns the connection to the pool.
func (c *pgCursor) Close() {
	if c.closed {
		return
	}

	c.closed = true
	c.buf = nil

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.tx.Rollback(ctx); err != nil {
		c.log.WithError(err).Warn("closing relationship cursor")
	}
}

// CreateRelationship inserts one relationship between from and to. An
// Incoming direction stores the edge as to -> from.
func (s *RelationStore) CreateRelationship(
	ctx context.Context,
	from, to, relType string,
	dir models.Direction,
) (*models.Edge, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	source, target := models.Endpoints(from, to, dir)

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating relationship: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	// Verify source and target nodes exist in a single query.
	var sourceExists, targetExists bool
	err = tx.QueryRow(ctx,
		`SELECT
			EXISTS(SELECT 1 FROM kg_nodes WHERE id = $1),
			EXISTS(SELECT 1 FROM kg_nodes WHERE id = $2)`,
		source, target).Scan(&sourceExists, &targetExists)
	if err != nil {
		return nil, fmt.Errorf("checking source/target nodes: %w", unavailable(err))
	}

	if !sourceExists {
		return nil, fmt.Errorf("source node %q: %w", source, models.ErrNodeNotFound)
	}

	if !targetExists {
		return nil, fmt.Errorf("target node %q: %w", target, models.ErrNodeNotFound)
	}

	query := `INSERT INTO kg_edges (source, target, relation, properties, weight)
		VALUES ($1, $2, $3, '{}'::jsonb, 1.0)
		RETURNING ` + edgeColumns

	e, err := scanEdge(tx.QueryRow(ctx, query, source, target, relType).Scan)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("scanning created relationship: %w", unavailable(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create relationship: %w", unavailable(err))
	}

	s.notify("kg_edges", "insert", source, target)

	return e, nil
}
