package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/repository/firestore"
	"github.com/salesdesk-io/salesdesk/pkg/repository/memory"
	"github.com/salesdesk-io/salesdesk/pkg/repository/postgres"
)

type repoFactory func(t *testing.T) interfaces.Repository

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(context.Background(), projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func newPostgresRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}

	repo, err := postgres.New(context.Background(), dsn)
	gt.NoError(t, err).Required()
	gt.NoError(t, repo.Migrate()).Required()
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

// runAll runs suite against every backend available in the environment
func runAll(t *testing.T, suite func(t *testing.T, newRepo repoFactory)) {
	t.Run("Memory", func(t *testing.T) {
		suite(t, newMemoryRepository)
	})
	t.Run("Firestore", func(t *testing.T) {
		suite(t, newFirestoreRepository)
	})
	t.Run("Postgres", func(t *testing.T) {
		suite(t, newPostgresRepository)
	})
}

// uniq returns an identifier that does not collide across test runs sharing
// one database
func uniq(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}
