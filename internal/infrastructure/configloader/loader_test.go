package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, "demo", cfg.CoinGecko.APIPlan)
	assert.Equal(t, 30, cfg.CoinGecko.RequestsPerMinute)
	assert.Equal(t, 60, cfg.Market.ListIntervalSeconds)
	assert.Equal(t, 120, cfg.Market.OverviewIntervalSeconds)
	assert.Equal(t, 6, cfg.Market.FeaturedCount)
	assert.Equal(t, StoreBackendFile, cfg.Store.Backend)
	assert.Equal(t, "cryptoPortfolio", cfg.Store.Key)
}

func TestLoadReadsYAMLAndEnvOverrides(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("COINGECKO_API_KEY", "secret")
	t.Setenv("CRYPTODASH_PORT", ":9090")

	path := writeConfig(t, `
coingecko:
  baseURL: http://localhost:1234/api/v3/
  apiPlan: pro
market:
  listIntervalSeconds: 15
store:
  backend: memory
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:1234/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, "pro", cfg.CoinGecko.APIPlan)
	assert.Equal(t, "secret", cfg.CoinGecko.APIKey)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 15, cfg.Market.ListIntervalSeconds)
	assert.Equal(t, StoreBackendMemory, cfg.Store.Backend)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")

	_, err := Load(writeConfig(t, "store:\n  backend: redis\n"))
	assert.ErrorContains(t, err, "redisAddr")

	_, err = Load(writeConfig(t, "store:\n  backend: s3\n"))
	assert.ErrorContains(t, err, "unknown store.backend")

	_, err = Load(writeConfig(t, "coingecko: [not, a, map]\n"))
	assert.ErrorContains(t, err, "failed to unmarshal")
}

func TestLoadReadsDotenvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("CRYPTODASH_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("ENV_FILE", envPath)
	t.Cleanup(func() { os.Unsetenv("CRYPTODASH_LOG_LEVEL") })

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
