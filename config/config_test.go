package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Setenv("ROUTING_API_KEY", "ors-key")
	t.Setenv("JWT_SECRET_KEY", "s3cret")

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.Timeout)
	assert.Equal(t, int32(10), cfg.Repositories.Postgres.MaxConns)

	assert.Equal(t, 3*time.Second, cfg.Planner.LookupTimeout)
	assert.Equal(t, 1.3, cfg.Planner.BudgetTolerance)
	assert.Equal(t, 15, cfg.Planner.PerInterestLimit)
	assert.Equal(t, 80, cfg.Planner.MaxCandidates)
	assert.Equal(t, time.Hour, cfg.Planner.CatalogCacheTTL)
	assert.Zero(t, cfg.Planner.CostSeed)

	assert.Equal(t, "ors-key", cfg.Routing.APIKey)
	assert.Equal(t, 24*time.Hour, cfg.Routing.CacheTTL)
	assert.Equal(t, "gemini-2.0-flash", cfg.Advisory.Model)
	assert.Equal(t, "s3cret", cfg.JWT.SecretKey)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}
