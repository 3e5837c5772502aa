package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/db"
	"github.com/persistorai/relations/internal/db/migrations"
	"github.com/persistorai/relations/internal/dbpool"
	"github.com/persistorai/relations/internal/models"
	"github.com/persistorai/relations/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestGraph returns a Graph with a small fetch size so multi-batch
// cursors are exercised.
func setupTestGraph(t *testing.T) *store.Graph {
	t.Helper()

	env := getTestEnv(t)

	return store.NewGraph(store.Base{Pool: env.pool, Log: env.log, FetchSize: 2})
}

func createTestNode(t *testing.T, g *store.Graph, nodeType, label string) *models.Node {
	t.Helper()

	req := models.CreateNodeRequest{ID: "test-" + uuid.NewString(), Type: nodeType, Label: label}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	n, err := g.CreateNode(context.Background(), req)
	if err != nil {
		t.Fatalf("createTestNode(%s): %v", label, err)
	}

	return n
}
