package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/persistorai/relations/internal/models"
)

// nodeColumns lists the columns selected for node queries.
const nodeColumns = `id, type, label, properties, created_at, updated_at`

// edgeColumns lists the columns selected for edge queries.
const edgeColumns = `source, target, relation, properties, weight, created_at`

// scanNode scans a single row into a models.Node.
func scanNode(scan func(dest ...any) error) (*models.Node, error) {
	var n models.Node
	var props []byte

	err := scan(
		&n.ID,
		&n.Type,
		&n.Label,
		&props,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(props, &n.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling node properties: %w", err)
	}

	return &n, nil
}

// scanEdge scans a single row into a models.Edge.
func scanEdge(scan func(dest ...any) error) (*models.Edge, error) {
	var e models.Edge
	var props []byte

	err := scan(
		&e.Source,
		&e.Target,
		&e.Relation,
		&props,
		&e.Weight,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(props, &e.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling edge properties: %w", err)
	}

	return &e, nil
}

// collectNodes scans all rows into a node slice and closes rows.
func collectNodes(rows pgx.Rows) ([]models.Node, error) {
	defer rows.Close()

	nodes := make([]models.Node, 0, 16)

	for rows.Next() {
		n, err := scanNode(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}

		nodes = append(nodes, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating node rows: %w", err)
	}

	return nodes, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// unavailable marks connection-level failures with models.ErrStoreUnavailable.
func unavailable(err error) error {
	var netErr net.Error

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err), errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	default:
		return err
	}
}
