package config

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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_NoPathReturnsDefault(t *testing.T) {
	t.Setenv("VOXEL_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvPath(t *testing.T) {
	path := writeConfig(t, "simulation:\n  tick_rate_hz: 60\n")
	t.Setenv("VOXEL_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 60.0, cfg.Simulation.TickRateHz)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
simulation:
  restitution: 0.5
  workers: 8
  max_ticks: 300
eventbus:
  backend: jetstream
  url: nats://nats:4222
storage:
  enabled: true
  path: /var/lib/battle
logging:
  console_level: DEBUG
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Simulation.Restitution)
	assert.Equal(t, 8, cfg.Simulation.Workers)
	assert.Equal(t, uint64(300), cfg.Simulation.MaxTicks)
	assert.Equal(t, 30.0, cfg.Simulation.TickRateHz, "Незаданные поля берутся из Default")
	assert.Equal(t, BackendJetStream, cfg.EventBus.Backend)
	assert.Equal(t, "BATTLE", cfg.EventBus.Stream)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "/var/lib/battle", cfg.Storage.Path)
	assert.Equal(t, "DEBUG", cfg.Logging.ConsoleLevel)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "simulation: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "simulation:\n  restitution: 1.5\n"))
	assert.ErrorContains(t, err, "restitution")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"default", func(c *Config) {}, true},
		{"zero tick rate", func(c *Config) { c.Simulation.TickRateHz = 0 }, false},
		{"negative restitution", func(c *Config) { c.Simulation.Restitution = -0.1 }, false},
		{"restitution one", func(c *Config) { c.Simulation.Restitution = 1 }, true},
		{"negative workers", func(c *Config) { c.Simulation.Workers = -1 }, false},
		{"unlimited workers", func(c *Config) { c.Simulation.Workers = 0 }, true},
		{"unknown backend", func(c *Config) { c.EventBus.Backend = "kafka" }, false},
		{"sample ratio above one", func(c *Config) { c.Telemetry.SampleRatio = 1.5 }, false},
		{"trace everything", func(c *Config) { c.Telemetry.SampleRatio = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestServerPorts_Fallback(t *testing.T) {
	t.Setenv("VOXEL_REST_PORT", "9090")
	t.Setenv("VOXEL_METRICS_PORT", "")

	s := ServerConfig{}
	assert.Equal(t, 9090, s.GetRESTPort(), "Порт из окружения")
	assert.Equal(t, 2112, s.GetMetricsPort(), "Порт по умолчанию")

	s.RESTPort = 7000
	assert.Equal(t, 7000, s.GetRESTPort(), "Порт из конфига важнее окружения")

	t.Setenv("VOXEL_REST_PORT", "abc")
	empty := ServerConfig{}
	assert.Equal(t, 8088, empty.GetRESTPort(), "Некорректное значение окружения игнорируется")
}
