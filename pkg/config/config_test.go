package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Feasibility.CacheEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Feasibility.CacheTTL)
	assert.Zero(t, cfg.Feasibility.EdgeCapacityDefault)
	assert.InDelta(t, 0.4, cfg.Feasibility.DensityThreshold, 1e-9)
	assert.Equal(t, 1, cfg.Feasibility.RevalidateWorkers)
	assert.Equal(t, []string{"sunday", "monday", "tuesday", "wednesday", "thursday"}, cfg.Timing.DefaultActiveDays)
	assert.Equal(t, 7, cfg.Timing.DefaultPeriodsPerDay)
	assert.Equal(t, "./exports", cfg.Export.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Export.LinkTTL)
	assert.Equal(t, cfg.JWT.Secret, cfg.Export.SigningSecret)
}

func TestLoadFeasibilityOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("FEASIBILITY_EDGE_CAPACITY_DEFAULT", "5")
	t.Setenv("FEASIBILITY_DENSITY_THRESHOLD", "1.7")
	t.Setenv("FEASIBILITY_CACHE_TTL", "garbage")
	t.Setenv("DEFAULT_ACTIVE_DAYS", " Monday, Tuesday ,")
	t.Setenv("DEFAULT_PERIODS_PER_DAY", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Feasibility.EdgeCapacityDefault)
	assert.InDelta(t, 0.4, cfg.Feasibility.DensityThreshold, 1e-9)
	assert.Equal(t, 10*time.Minute, cfg.Feasibility.CacheTTL)
	assert.Equal(t, []string{"monday", "tuesday"}, cfg.Timing.DefaultActiveDays)
	assert.Equal(t, 7, cfg.Timing.DefaultPeriodsPerDay)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
