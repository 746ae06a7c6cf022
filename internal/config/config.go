package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации симулятора.
// Отсутствующие в файле поля получают значения из Default().
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type SimulationConfig struct {
	TickRateHz         float64 `yaml:"tick_rate_hz"`
	Restitution        float64 `yaml:"restitution"`
	Workers            int     `yaml:"workers"`
	ProjectileLifetime float64 `yaml:"projectile_lifetime_seconds"`
	MaxTicks           uint64  `yaml:"max_ticks"` // 0: без ограничения
}

type CatalogConfig struct {
	Path string `yaml:"path"` // YAML-каталог типов вокселей, пусто: только встроенные
}

type EventBusConfig struct {
	Backend   string `yaml:"backend"` // memory | jetstream
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Capacity  int    `yaml:"capacity"`
}

type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // пусто: хранилище в памяти
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`     // host:port OTLP/HTTP, пусто: OTEL_EXPORTER_OTLP_ENDPOINT
	SampleRatio float64 `yaml:"sample_ratio"` // доля трассируемых тиков
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

// Бэкенды шины событий
const (
	BackendMemory    = "memory"
	BackendJetStream = "jetstream"
)

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRateHz:         30,
			Restitution:        0.8,
			Workers:            4,
			ProjectileLifetime: 5,
		},
		EventBus: EventBusConfig{
			Backend:   BackendMemory,
			URL:       "nats://127.0.0.1:4222",
			Stream:    "BATTLE",
			Retention: 24,
			Capacity:  1024,
		},
		Storage: StorageConfig{
			Path: "data",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-battle",
			SampleRatio: 0.1,
		},
		Logging: LoggingConfig{
			ConsoleLevel: "INFO",
			FileLevel:    "DEBUG",
		},
	}
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "VOXEL_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "VOXEL_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации поверх Default().
// Если path == "", пытается прочитать путь из ENV VOXEL_CONFIG;
// если и он пуст, возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфигурацию %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("конфигурация %s: %w", path, err)
	}
	return cfg, nil
}

// Validate проверяет значения, при которых симуляция не может работать
func (c *Config) Validate() error {
	s := c.Simulation
	if s.TickRateHz <= 0 {
		return fmt.Errorf("simulation.tick_rate_hz должен быть больше 0, получено %v", s.TickRateHz)
	}
	if s.Restitution < 0 || s.Restitution > 1 {
		return fmt.Errorf("simulation.restitution должен быть в [0,1], получено %v", s.Restitution)
	}
	if s.Workers < 0 {
		return fmt.Errorf("simulation.workers не может быть отрицательным: %d", s.Workers)
	}
	switch c.EventBus.Backend {
	case BackendMemory, BackendJetStream:
	default:
		return fmt.Errorf("неизвестный eventbus.backend: %q", c.EventBus.Backend)
	}
	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sample_ratio должен быть в [0,1], получено %v", r)
	}
	return nil
}
