package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olsdb/olsdb/value"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	name := filepath.Join(dir, "testdb")

	s, err := Open(context.Background(), name)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSeedsLSNZero(t *testing.T) {
	s := openTestStore(t)
	lsn, err := s.ReadLSN(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), lsn)
}

func TestApplyCommitAdvancesLSNAndAppliesStatements(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Apply(ctx, "create table widgets (iId int not null, primary key(iId))", value.Params{}))
	require.NoError(t, s.Apply(ctx, "insert into widgets(iId) values(:iId)", value.Params{"iId": value.Int(1)}))
	require.NoError(t, s.ApplyCommit(ctx, 1))

	lsn, err := s.ReadLSN(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lsn)

	var count int
	require.NoError(t, s.DB().QueryRowContext(ctx, "select count(*) from widgets").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRollbackDiscardsPendingStatements(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Apply(ctx, "create table widgets (iId int not null, primary key(iId))", value.Params{}))
	require.NoError(t, s.ApplyCommit(ctx, 1))

	require.NoError(t, s.Apply(ctx, "insert into widgets(iId) values(:iId)", value.Params{"iId": value.Int(2)}))
	require.NoError(t, s.Rollback())

	var count int
	require.NoError(t, s.DB().QueryRowContext(ctx, "select count(*) from widgets").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestRollbackIsSafeWithNoOpenTransaction(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Rollback())
}
