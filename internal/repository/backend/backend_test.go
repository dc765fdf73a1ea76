package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdcare/internal/config"
	"github.com/mamadbah2/herdcare/internal/repository"
)

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		Store:  config.StoreConfig{Driver: config.DriverSQLite},
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "herd.db")},
	}

	store, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer store.Close(ctx)

	goats, err := store.ListGoats(ctx, repository.GoatFilter{})
	require.NoError(t, err)
	assert.Empty(t, goats)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "postgres"}}, nil)
	assert.ErrorContains(t, err, `unsupported store driver "postgres"`)
}
