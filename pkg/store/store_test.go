package store

import (
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/empowrhq/leadflow/pkg/database"
)

var dbSeq atomic.Int64

// openTestDB opens a fresh in-memory database with the schema applied.
// Each call gets its own named shared-cache DB so tests stay isolated.
func openTestDB(t *testing.T) *database.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:store_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	client, err := database.Open("sqlite3", dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
	})

	return client
}
