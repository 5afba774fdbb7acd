package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/repository/repotest"
)

// testStore connects to MONGO_TEST_URI and drops the test database around
// each use. Tests skip when MongoDB is not reachable.
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx := context.Background()
	s, err := Connect(ctx, uri, "storefront_test", 2*time.Second, logging.Discard())
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := s.db.Drop(ctx); err != nil {
		t.Fatalf("drop test database: %v", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		t.Fatalf("create indexes: %v", err)
	}

	t.Cleanup(func() {
		s.db.Drop(context.Background())
		s.Close(context.Background())
	})
	return s
}

func TestContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) *repository.Repositories {
		return testStore(t).Repositories()
	})
}
