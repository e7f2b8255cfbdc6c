package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskgate/internal/risk"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":9000", cfg.ListenAddress())
	require.NoError(t, cfg.Validate())
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "riskgate.json", `{
		"listen": {"address": "127.0.0.1", "port": 7001},
		"risk": {"buyThreshold": 10, "sellThreshold": 15},
		"admin": {"address": ":8081"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, NetworkTCP, cfg.Listen.Network)
	assert.Equal(t, "127.0.0.1:7001", cfg.ListenAddress())
	assert.Equal(t, risk.Limits{BuyThreshold: 10, SellThreshold: 15}, cfg.Risk)
	assert.Equal(t, DefaultQueueCapacity, cfg.Queue.Capacity)
	assert.Equal(t, ":8081", cfg.Admin.Address)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "bad.json", `{"listen":`))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	envPath := writeFile(t, ".env", "RISKGATE_BUY_THRESHOLD=20\nRISKGATE_SELL_THRESHOLD=30\nRISKGATE_PORT=7100\n")
	// variables already in the environment win over the file
	t.Setenv(EnvSellThreshold, "31")
	t.Setenv(EnvAdminAddress, "127.0.0.1:9100")
	t.Setenv(EnvBuyThreshold, "")
	t.Setenv(EnvPort, "")
	os.Unsetenv(EnvBuyThreshold)
	os.Unsetenv(EnvPort)

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envPath))
	assert.Equal(t, risk.Limits{BuyThreshold: 20, SellThreshold: 31}, cfg.Risk)
	assert.Equal(t, 7100, cfg.Listen.Port)
	assert.Equal(t, "127.0.0.1:9100", cfg.Admin.Address)
}

func TestApplyEnvInvalidNumber(t *testing.T) {
	t.Setenv(EnvQueueCapacity, "lots")
	cfg := Default()
	require.Error(t, cfg.ApplyEnv(writeFile(t, ".env", "")))
}

func TestApplyEnvMissingFile(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.ApplyEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestApplyArgs(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyArgs(nil))
	assert.Equal(t, Default(), cfg)

	require.NoError(t, cfg.ApplyArgs([]string{"10", "15", "12345"}))
	assert.Equal(t, risk.Limits{BuyThreshold: 10, SellThreshold: 15}, cfg.Risk)
	assert.Equal(t, 12345, cfg.Listen.Port)

	require.Error(t, cfg.ApplyArgs([]string{"10", "15"}))
	require.Error(t, cfg.ApplyArgs([]string{"-1", "15", "80"}))
	require.Error(t, cfg.ApplyArgs([]string{"1", "x", "80"}))
	require.Error(t, cfg.ApplyArgs([]string{"1", "2", "port"}))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port zero":      func(c *Config) { c.Listen.Port = 0 },
		"port too large": func(c *Config) { c.Listen.Port = 70000 },
		"unix no path":   func(c *Config) { c.Listen.Network = NetworkUnix },
		"bad network":    func(c *Config) { c.Listen.Network = "udp" },
		"zero queue":     func(c *Config) { c.Queue.Capacity = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Listen = ListenConfig{Network: NetworkUnix, Path: "/tmp/riskgate.sock"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/tmp/riskgate.sock", cfg.ListenAddress())
}
