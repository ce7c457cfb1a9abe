package integration

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransactionSurfacesCommitFailure(t *testing.T) {
	ctx := context.Background()

	// A body that commits the transaction itself leaves nothing for the
	// outer commit, which then fails; that failure must reach the caller
	// instead of being swallowed.
	err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		return tx.Commit(ctx)
	})
	assert.ErrorIs(t, err, pgx.ErrTxClosed)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()

	err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWithTransactionCommits(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "SELECT 1")
		return err
	}))
}

func TestPoolStatsSnapshot(t *testing.T) {
	stats := testDB.DB.Stats()
	assert.Greater(t, stats.MaxConns, int32(0))
	assert.GreaterOrEqual(t, stats.TotalConns, stats.AcquiredConns)
}
