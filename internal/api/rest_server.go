// Package api отдаёт состояние симуляции по HTTP
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/annel0/voxel-battle/internal/eventbus"
	"github.com/annel0/voxel-battle/internal/logging"
	"github.com/annel0/voxel-battle/internal/middleware"
	"github.com/annel0/voxel-battle/internal/stats"
	"github.com/annel0/voxel-battle/internal/world"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Version: версия сервера в /api/server
const Version = "v0.1.0"

// WorldView: то, что REST-серверу нужно от мира
type WorldView interface {
	Tick() uint64
	Snapshot() world.Snapshot
	BodyView(id uuid.UUID) (world.BodyView, error)
}

// Registry регистрирует и отдаёт метрики (обычно *prometheus.Registry)
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// RestServer представляет REST API сервер
type RestServer struct {
	router  *gin.Engine
	world   WorldView
	bus     eventbus.EventBus
	port    string
	metrics *stats.ProcessStats
	log     *logging.Logger

	mu         sync.Mutex
	httpServer *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string            // адрес для запуска сервера, например ":8088"
	World    WorldView         // источник состояния симуляции
	Bus      eventbus.EventBus // необязательно: статистика шины в /api/server
	Registry Registry          // реестр Prometheus для HTTP-метрик и /metrics
	Stats    *stats.ProcessStats
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Stats == nil {
		config.Stats = stats.NewProcessStats()
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	log := logging.GetServerLogger()

	// === Observability middleware ===
	router.Use(otelgin.Middleware("battle_api"))
	router.Use(middleware.NewRequestLogger(log).Handler())

	promMw := middleware.NewPrometheusMiddleware("battle_api", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Registry)

	server := &RestServer{
		router:  router,
		world:   config.World,
		bus:     config.Bus,
		port:    config.Port,
		metrics: config.Stats,
		log:     log,
	}

	// Настраиваем маршруты
	server.setupRoutes()

	return server
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := rs.router.Group("/api")
	{
		api.GET("/server", rs.handleServerInfo)
		api.GET("/bodies", rs.handleBodies)
		api.GET("/bodies/:id", rs.handleBody)
	}

	// Health check
	rs.router.GET("/health", rs.handleHealth)
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ServerInfo: данные /api/server
type ServerInfo struct {
	Version string          `json:"version"`
	Name    string          `json:"name"`
	Status  string          `json:"status"`
	Tick    uint64          `json:"tick"`
	Bodies  int             `json:"bodies"`
	Process stats.Snapshot  `json:"process"`
	Events  *eventbus.Stats `json:"events,omitempty"`
}

// handleServerInfo возвращает информацию о сервере
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	snap := rs.world.Snapshot()
	info := ServerInfo{
		Version: Version,
		Name:    "Voxel Battle Simulator",
		Status:  "running",
		Tick:    snap.Tick,
		Bodies:  len(snap.Bodies),
		Process: rs.metrics.Snapshot(),
	}
	if rs.bus != nil {
		busStats := rs.bus.Metrics()
		info.Events = &busStats
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    info,
	})
}

// handleBodies возвращает все тела мира в порядке добавления
func (rs *RestServer) handleBodies(c *gin.Context) {
	snap := rs.world.Snapshot()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Список тел получен",
		Data: map[string]interface{}{
			"tick":        snap.Tick,
			"bodies":      snap.Bodies,
			"total":       len(snap.Bodies),
			"projectiles": len(snap.Projectiles),
		},
	})
}

// handleBody возвращает одно тело
func (rs *RestServer) handleBody(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный ID тела",
		})
		return
	}

	view, err := rs.world.BodyView(id)
	if errors.Is(err, world.ErrBodyNotFound) {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Тело не найдено",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Внутренняя ошибка сервера",
		})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Тело найдено",
		Data:    view,
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"tick":   rs.world.Tick(),
		"time":   time.Now().Unix(),
	})
}

// Start запускает REST сервер в фоне. Ошибка занятого порта возвращается сразу.
func (rs *RestServer) Start() error {
	ln, err := net.Listen("tcp", rs.port)
	if err != nil {
		return fmt.Errorf("не удалось открыть порт REST API %s: %w", rs.port, err)
	}

	srv := &http.Server{
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	rs.mu.Lock()
	rs.httpServer = srv
	rs.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.log.Error("❌ Ошибка REST API сервера: %v", err)
		}
	}()

	rs.log.Info("✅ REST API сервер запущен на http://%s", ln.Addr())
	rs.log.Info("📋 Доступные эндпоинты:")
	rs.log.Info("   GET  /health          - Проверка состояния")
	rs.log.Info("   GET  /api/server      - Информация о сервере")
	rs.log.Info("   GET  /api/bodies      - Список тел")
	rs.log.Info("   GET  /api/bodies/:id  - Тело по ID")
	rs.log.Info("   GET  /metrics         - Метрики Prometheus")
	return nil
}

// Shutdown останавливает сервер, дожидаясь завершения запросов
func (rs *RestServer) Shutdown(ctx context.Context) error {
	rs.mu.Lock()
	srv := rs.httpServer
	rs.httpServer = nil
	rs.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при остановке HTTP сервера: %w", err)
	}
	rs.log.Info("✅ REST API сервер остановлен")
	return nil
}
