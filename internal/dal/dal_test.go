package dal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

func exerciseStore(t *testing.T, s SnapshotStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	_, err := s.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrPersistenceMissing))

	loc, err := s.Save(ctx, []byte(`{"picks":[],"is_active":true,"current_inflation_rate":1}`))
	require.NoError(t, err)
	assert.NotEmpty(t, loc)

	_, err = s.Save(ctx, []byte(`{"picks":[],"is_active":false,"current_inflation_rate":1.1}`))
	require.NoError(t, err)

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"picks":[],"is_active":false,"current_inflation_rate":1.1}`, string(data))
	require.NoError(t, s.Close())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte(`{"a":1}`)
	_, err := s.Save(context.Background(), buf)
	require.NoError(t, err)
	buf[2] = 'b'
	data, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft_state", "current.json")
	exerciseStore(t, NewFileStore(path))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "draft.sqlite"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	exerciseStore(t, s)
}
