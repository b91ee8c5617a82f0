package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olsdb/olsdb/objectlog"
)

func openTestSession(t *testing.T, db string, ols objectlog.Store) *Session {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	s, err := Open(context.Background(), filepath.Base(db), ols)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionEndToEndDDLAndDML(t *testing.T) {
	ctx := context.Background()
	ols := objectlog.NewMemStore()
	s := openTestSession(t, "shop", ols)

	require.NoError(t, s.CreateTable(ctx, "widgets", []string{"iId"}))
	require.NoError(t, s.AddColumn(ctx, "widgets", "tName"))
	require.NoError(t, s.Insert(ctx, "widgets", map[string]any{"iId": int64(1), "tName": "gadget"}))
	require.NoError(t, s.Commit(ctx))
	assert.Equal(t, int64(1), s.LSN())

	require.NoError(t, s.Update(ctx, "widgets",
		map[string]any{"tName": "renamed"},
		map[string]any{"iId": int64(1)},
	))
	require.NoError(t, s.Commit(ctx))
	assert.Equal(t, int64(2), s.LSN())

	require.NoError(t, s.Delete(ctx, "widgets", map[string]any{"iId": int64(1)}))
	require.NoError(t, s.Commit(ctx))
	assert.Equal(t, int64(3), s.LSN())
}

func TestSessionCommitIsNoOpWithNoPendingStatements(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t, "shop", objectlog.NewMemStore())

	require.NoError(t, s.Commit(ctx))
	assert.Equal(t, int64(0), s.LSN())
}

func TestSessionRenameColumnRejectsKindMismatch(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t, "shop", objectlog.NewMemStore())

	require.NoError(t, s.CreateTable(ctx, "widgets", []string{"iId"}))
	require.NoError(t, s.AddColumn(ctx, "widgets", "tName"))
	require.Error(t, s.RenameColumn(ctx, "widgets", "tName", "iName"))
}

func TestSessionOpenConvergesFromPeer(t *testing.T) {
	ctx := context.Background()
	ols := objectlog.NewMemStore()

	writer := openTestSession(t, "shared", ols)
	require.NoError(t, writer.CreateTable(ctx, "widgets", []string{"iId"}))
	require.NoError(t, writer.Commit(ctx))

	follower := openTestSession(t, "shared", ols)
	assert.Equal(t, int64(1), follower.LSN())
}
