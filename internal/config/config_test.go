package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "autre", cfg.Catalog.CatchAllCode)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.MaxAge)
	assert.ElementsMatch(t, []string{
		"correspondant", "back_office_fae", "responsable_fae", "administrateur", "membre",
	}, cfg.Authz.ManageRoles)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SPONSOR_DATABASE_DRIVER", "postgres")
	t.Setenv("SPONSOR_DATABASE_PORT", "5432")
	t.Setenv("SPONSOR_CATALOG_CATCH_ALL_CODE", "other")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "other", cfg.Catalog.CatchAllCode)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("SPONSOR_DATABASE_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("SPONSOR_APP_ENV", "production")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SPONSOR_SESSION_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
