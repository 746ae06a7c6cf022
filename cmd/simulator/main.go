package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-battle/internal/api"
	"github.com/annel0/voxel-battle/internal/config"
	"github.com/annel0/voxel-battle/internal/eventbus"
	"github.com/annel0/voxel-battle/internal/logging"
	"github.com/annel0/voxel-battle/internal/observability"
	"github.com/annel0/voxel-battle/internal/stats"
	"github.com/annel0/voxel-battle/internal/storage"
	"github.com/annel0/voxel-battle/internal/voxel"
	"github.com/annel0/voxel-battle/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	var (
		configPath = flag.String("config", "", "Путь к YAML-конфигурации (или VOXEL_CONFIG)")
		maxTicks   = flag.Uint64("ticks", 0, "Число тиков до остановки (0: из конфигурации)")
		restore    = flag.Bool("restore", false, "Восстановить мир из хранилища вместо демо-сцены")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *maxTicks > 0 {
		cfg.Simulation.MaxTicks = *maxTicks
	}

	if err := setupLogging(cfg.Logging); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *restore); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Симулятор успешно остановлен")
}

func setupLogging(lc config.LoggingConfig) error {
	consoleLevel, err := logging.ParseLevel(lc.ConsoleLevel)
	if err != nil {
		return err
	}
	fileLevel, err := logging.ParseLevel(lc.FileLevel)
	if err != nil {
		return err
	}
	logging.Configure(logging.Options{Dir: lc.Dir, ConsoleLevel: consoleLevel, FileLevel: fileLevel})
	return logging.InitDefaultLogger("simulator")
}

func run(ctx context.Context, cfg *config.Config, restore bool) error {
	logging.Info("🚀 Запуск симулятора воксельного боя...")

	// === КАТАЛОГ ===
	if cfg.Catalog.Path != "" {
		n, err := voxel.LoadCatalog(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		logging.Info("📦 Загружено типов вокселей: %d", n)
	}

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, observability.Options{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: api.Version,
			Endpoint:       cfg.Telemetry.Endpoint,
			SampleRatio:    cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			return fmt.Errorf("ошибка инициализации телеметрии: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logging.Warn("Ошибка остановки телеметрии: %v", err)
			}
		}()
	}

	// === ШИНА СОБЫТИЙ ===
	bus, err := openEventBus(cfg.EventBus)
	if err != nil {
		return err
	}
	eventbus.Init(bus)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn("Ошибка закрытия шины событий: %v", err)
		}
	}()

	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		return fmt.Errorf("ошибка подписки логгера событий: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	exporter := eventbus.NewMetricsExporter(bus, reg)
	if port := cfg.Server.GetMetricsPort(); port != cfg.Server.GetRESTPort() {
		exporter.StartHTTP(fmt.Sprintf(":%d", port), reg)
	} else {
		exporter.Start()
	}
	defer exporter.Stop()

	// === ХРАНИЛИЩЕ ===
	var repo storage.BodyRepo
	if cfg.Storage.Enabled {
		repo, err = openRepo(cfg.Storage)
		if err != nil {
			return err
		}
		defer repo.Close()
	}

	// === МИР ===
	w := world.New(world.Config{
		Restitution:        cfg.Simulation.Restitution,
		Workers:            cfg.Simulation.Workers,
		ProjectileLifetime: cfg.Simulation.ProjectileLifetime,
	}, world.WithEventBus(eventbus.Global()), world.WithMetrics(world.NewMetrics(reg)))

	if err := populate(ctx, w, repo, restore); err != nil {
		return err
	}

	// === REST API ===
	gin.SetMode(gin.ReleaseMode)
	processStats := stats.NewProcessStats()
	rest := api.NewRestServer(api.Config{
		Port:     fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		World:    w,
		Bus:      bus,
		Registry: reg,
		Stats:    processStats,
	})
	if err := rest.Start(); err != nil {
		return err
	}
	defer func() {
		if err := rest.Shutdown(context.Background()); err != nil {
			logging.Warn("%v", err)
		}
	}()

	// === ЦИКЛ СИМУЛЯЦИИ ===
	loopErr := simulate(ctx, w, cfg.Simulation, processStats)

	if repo != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.SaveWorld(saveCtx, w.Tick(), w.Bodies()); err != nil {
			logging.Error("❌ Ошибка сохранения мира: %v", err)
		}
	}
	return loopErr
}

func openEventBus(ec config.EventBusConfig) (eventbus.EventBus, error) {
	if ec.Backend == config.BackendJetStream {
		bus, err := eventbus.NewJetStreamBus(ec.URL, ec.Stream, time.Duration(ec.Retention)*time.Hour)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к JetStream: %w", err)
		}
		logging.Info("📡 Шина событий: JetStream %s (stream=%s)", ec.URL, ec.Stream)
		return bus, nil
	}
	logging.Info("📡 Шина событий: in-memory (capacity=%d)", ec.Capacity)
	return eventbus.NewMemoryBus(ec.Capacity), nil
}

func openRepo(sc config.StorageConfig) (storage.BodyRepo, error) {
	if sc.Path == "" {
		logging.Warn("⚠️  Используется in-memory хранилище тел")
		return storage.NewMemoryBodyRepo(), nil
	}
	return storage.NewBodyStore(sc.Path)
}

func populate(ctx context.Context, w *world.World, repo storage.BodyRepo, restore bool) error {
	if restore {
		if repo == nil {
			return errors.New("флаг -restore требует storage.enabled")
		}
		meta, bodies, err := repo.LoadWorld(ctx)
		if err != nil {
			return fmt.Errorf("ошибка восстановления мира: %w", err)
		}
		if len(bodies) > 0 {
			w.Restore(meta.Tick, bodies)
			logging.Info("♻️  Мир восстановлен: тик %d, тел %d", meta.Tick, len(bodies))
			return nil
		}
		logging.Warn("⚠️  Сохранённый мир пуст, строим демо-сцену")
	}

	BuildDemoScene(w, time.Now().UnixNano())
	logging.Info("🌌 Демо-сцена: тел %d, снарядов %d", len(w.Bodies()), len(w.Projectiles()))
	return nil
}

func simulate(ctx context.Context, w *world.World, sc config.SimulationConfig, ps *stats.ProcessStats) error {
	dt := 1 / sc.TickRateHz
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()
	status := time.NewTicker(time.Second)
	defer status.Stop()

	logging.Info("⏱️  Тик %.1f Гц, лимит тиков: %d", sc.TickRateHz, sc.MaxTicks)

	var last world.StepReport
	for {
		select {
		case <-ctx.Done():
			logging.Info("📡 Получен сигнал завершения на тике %d", w.Tick())
			return nil

		case <-status.C:
			snap := ps.Snapshot()
			logging.Info("📊 Тик %d | тел %d | снарядов %d | тик %s | CPU %.1f%% | RAM %.1f MB | uptime %s",
				w.Tick(), len(w.Bodies()), len(w.Projectiles()), last.Duration, snap.CPUPercent, snap.MemoryMB, snap.Uptime)

		case <-ticker.C:
			report, err := w.Step(ctx, dt)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("тик %d: %w", report.Tick, err)
			}
			last = report
			if report.Collisions > 0 || len(report.Spawned) > 0 {
				logging.Debug("💥 Тик %d: попаданий %d, разрушено %d, осколков %d, столкновений %d",
					report.Tick, report.Hits, report.DestroyedVoxels, len(report.Spawned), report.Collisions)
			}
			if sc.MaxTicks > 0 && report.Tick >= sc.MaxTicks {
				logging.Info("🏁 Достигнут лимит тиков: %d", sc.MaxTicks)
				return nil
			}
		}
	}
}
