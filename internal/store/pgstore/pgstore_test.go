package pgstore

import (
	"context"
	"os"
	"testing"

	"github.com/idilsaglam/questlog/internal/store/storetest"
)

// Integration test: runs only if DATABASE_URL is set.
func TestBackendIntegration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	s, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	storetest.Run(t, s, "questlog-test-tasks")
}
