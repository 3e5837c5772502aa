// Package neo4jstore provides a Neo4j graph backend. Nodes are stored as
// :Node vertices keyed by id; relationships use their declared type as the
// Neo4j relationship type.
package neo4jstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/domain"
	"github.com/persistorai/relations/internal/models"
)

const (
	defaultQueryTimeout = 30 * time.Second
	defaultFetchSize    = 100

	constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"
)

// Config holds connection settings for a Store.
type Config struct {
	URI       string
	Username  string
	Password  string
	Database  string
	FetchSize int
}

// Store is a domain.Graph backed by Neo4j.
type Store struct {
	driver    neo4j.DriverWithContext
	database  string
	fetchSize int
	log       *logrus.Logger
}

var _ domain.Graph = (*Store)(nil)

// New connects to Neo4j and verifies connectivity.
func New(ctx context.Context, cfg Config, log *logrus.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx) //nolint:errcheck // best-effort close on setup failure.

		return nil, fmt.Errorf("verifying neo4j connectivity: %w", unavailable(err))
	}

	fetchSize := cfg.FetchSize
	if fetchSize <= 0 {
		fetchSize = defaultFetchSize
	}

	return &Store{driver: driver, database: cfg.Database, fetchSize: fetchSize, log: log}, nil
}

// Close releases the driver's connections.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// EnsureSchema creates the uniqueness constraint on :Node(id).
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.Run(ctx, "CREATE CONSTRAINT node_id IF NOT EXISTS FOR (n:Node) REQUIRE n.id IS UNIQUE", nil)
	if err != nil {
		return fmt.Errorf("creating node id constraint: %w", unavailable(err))
	}

	return nil
}

// HealthCheck verifies the server is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
		FetchSize:    s.fetchSize,
	})
}

// CreateNode inserts a :Node. req must already be validated.
func (s *Store) CreateNode(ctx context.Context, req models.CreateNodeRequest) (*models.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	props := req.Properties
	if props == nil {
		props = map[string]any{}
	}

	propsJSON, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("marshalling node properties: %w", err)
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	n, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (*models.Node, error) {
		result, err := tx.Run(ctx, `CREATE (n:Node {id: $id, type: $type, label: $label,
			properties: $properties, created_at: datetime(), updated_at: datetime()})
			RETURN `+nodeReturn, map[string]any{
			"id":         req.ID,
			"type":       req.Type,
			"label":      req.Label,
			"properties": string(propsJSON),
		})
		if err != nil {
			return nil, err
		}

		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}

		return recordNode(record)
	})
	if err != nil {
		var neoErr *neo4j.Neo4jError
		if errors.As(err, &neoErr) && neoErr.Code == constraintViolation {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("creating node: %w", unavailable(err))
	}

	return n, nil
}

// GetNode returns a single node by ID.
func (s *Store) GetNode(ctx context.Context, nodeID string) (*models.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, "MATCH (n:Node {id: $id}) RETURN "+nodeReturn, map[string]any{"id": nodeID})
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", unavailable(err))
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("getting node: %w", unavailable(err))
		}

		return nil, models.ErrNodeNotFound
	}

	return recordNode(result.Record())
}

// CreateRelationship creates one relationship. An Incoming direction stores
// the relationship as to -> from.
func (s *Store) CreateRelationship(
	ctx context.Context,
	from, to, relType string,
	dir models.Direction,
) (*models.Edge, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	source, target := models.Endpoints(from, to, dir)
	params := map[string]any{"source": source, "target": target}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	createdAt, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (time.Time, error) {
		check, err := tx.Run(ctx, buildCheckCypher(relType), params)
		if err != nil {
			return time.Time{}, err
		}

		record, err := check.Single(ctx)
		if err != nil {
			return time.Time{}, err
		}

		switch {
		case !recordBool(record, "source_exists"):
			return time.Time{}, fmt.Errorf("source node %q: %w", source, models.ErrNodeNotFound)
		case !recordBool(record, "target_exists"):
			return time.Time{}, fmt.Errorf("target node %q: %w", target, models.ErrNodeNotFound)
		case recordBool(record, "duplicate"):
			return time.Time{}, models.ErrDuplicateKey
		}

		created, err := tx.Run(ctx, buildCreateCypher(relType), params)
		if err != nil {
			return time.Time{}, err
		}

		record, err = created.Single(ctx)
		if err != nil {
			return time.Time{}, err
		}

		return recordTime(record, "created_at"), nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNodeNotFound) || errors.Is(err, models.ErrDuplicateKey) {
			return nil, err
		}

		return nil, fmt.Errorf("creating relationship: %w", unavailable(err))
	}

	s.log.WithFields(logrus.Fields{
		"source":   source,
		"target":   target,
		"relation": relType,
	}).Debug("relationship created")

	return &models.Edge{
		Source:     source,
		Target:     target,
		Relation:   relType,
		Properties: map[string]any{},
		Weight:     1.0,
		CreatedAt:  createdAt,
	}, nil
}

// Traverse opens a read session and streams the related nodes. The driver
// pulls records in batches of FetchSize; the session stays open until the
// cursor is closed.
func (s *Store) Traverse(ctx context.Context, origin string, d models.Descriptor) (domain.Cursor, error) {
	session := s.session(ctx, neo4j.AccessModeRead)

	exists, err := session.Run(ctx, "MATCH (o:Node {id: $origin}) RETURN count(o) > 0 AS found", map[string]any{"origin": origin})
	if err == nil {
		var record *neo4j.Record

		record, err = exists.Single(ctx)
		if err == nil && !recordBool(record, "found") {
			session.Close(ctx) //nolint:errcheck // best-effort close on setup failure.

			return nil, fmt.Errorf("origin node %q: %w", origin, models.ErrNodeNotFound)
		}
	}

	if err != nil {
		session.Close(ctx) //nolint:errcheck // best-effort close on setup failure.

		return nil, fmt.Errorf("checking origin node: %w", unavailable(err))
	}

	query, params := buildTraverseCypher(origin, d)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		session.Close(ctx) //nolint:errcheck // best-effort close on setup failure.

		return nil, fmt.Errorf("running traversal: %w", unavailable(err))
	}

	return &cursor{session: session, result: result, log: s.log}, nil
}

type cursor struct {
	session neo4j.SessionWithContext
	result  neo4j.ResultWithContext
	closed  bool
	log     *logrus.Logger
}

func (c *cursor) Next(ctx context.Context) (models.Node, error) {
	if c.closed {
		return models.Node{}, models.ErrCursorDone
	}

	if c.result.Next(ctx) {
		n, err := recordNode(c.result.Record())
		if err != nil {
			return models.Node{}, err
		}

		return *n, nil
	}

	if err := c.result.Err(); err != nil {
		return models.Node{}, fmt.Errorf("streaming relationships: %w", unavailable(err))
	}

	return models.Node{}, models.ErrCursorDone
}

// Close discards unread records and closes the session.
func (c *cursor) Close() {
	if c.closed {
		return
	}

	c.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.result.Consume(ctx); err != nil {
		c.log.WithError(err).Debug("discarding unread relationships")
	}

	if err := c.session.Close(ctx); err != nil {
		c.log.WithError(err).Warn("closing neo4j session")
	}
}

// unavailable marks connectivity failures with models.ErrStoreUnavailable.
func unavailable(err error) error {
	if err != nil && (neo4j.IsConnectivityError(err) || errors.Is(err, context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	return err
}
