package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("REDIS_URL", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("HIERARCHY_ORPHAN_POLICY", "")
	t.Setenv("INTEGRITY_CHECK_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 25, cfg.DBMaxConns)
	assert.Equal(t, 10*time.Minute, cfg.CurrencyCacheTTL)
	assert.Equal(t, OrphanPolicyReattach, cfg.HierarchyOrphanPolicy)
	assert.Equal(t, time.Hour, cfg.IntegrityCheckInterval)
	assert.False(t, cfg.CacheEnabled())
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("CURRENCY_CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("HIERARCHY_ORPHAN_POLICY", "STRICT")
	t.Setenv("INTEGRITY_CHECK_INTERVAL", "0s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 90*time.Second, cfg.CurrencyCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, OrphanPolicyStrict, cfg.HierarchyOrphanPolicy)
	assert.Zero(t, cfg.IntegrityCheckInterval)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestValidate_RejectsUnknownOrphanPolicy(t *testing.T) {
	cfg := &Config{
		DatabaseURL:           "postgres://x",
		DBMaxConns:            1,
		RateLimitRPS:          1,
		RateLimitBurst:        1,
		HierarchyOrphanPolicy: "drop",
	}
	assert.ErrorContains(t, cfg.Validate(), "HIERARCHY_ORPHAN_POLICY")
}

func TestParseCurrencies(t *testing.T) {
	data := []byte(`
currencies:
  - code: gbp
    numeric_code: 826
    minor_unit: 2
    name: Pound Sterling
  - code: JPY
    numeric_code: 392
    minor_unit: 0
    name: Yen
`)
	cfg, err := ParseCurrencies(data)
	require.NoError(t, err)
	require.Len(t, cfg.Currencies, 2)
	assert.Equal(t, CurrencySeed{Code: "GBP", NumericCode: 826, MinorUnit: 2, Name: "Pound Sterling"}, cfg.Currencies[0])
	assert.Equal(t, 0, cfg.Currencies[1].MinorUnit)
}

func TestParseCurrencies_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "currencies: []", "at least one currency"},
		{"bad code", "currencies:\n  - {code: EURO, minor_unit: 2, name: Euro}", "must be 3 letters"},
		{"no name", "currencies:\n  - {code: EUR, minor_unit: 2}", "name is required"},
		{"minor unit", "currencies:\n  - {code: EUR, minor_unit: 9, name: Euro}", "minor_unit"},
		{"duplicate", "currencies:\n  - {code: EUR, minor_unit: 2, name: Euro}\n  - {code: eur, minor_unit: 2, name: Euro}", "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCurrencies([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
