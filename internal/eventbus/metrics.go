package eventbus

import (
	"net/http"
	"sync"
	"time"

	"github.com/annel0/voxel-battle/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsExporter переносит Stats шины в Prometheus-метрики.
// Экспортер не делает предположений о конкретной реализации шины.
type MetricsExporter struct {
	bus      EventBus
	interval time.Duration
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu   sync.Mutex
	prev Stats

	// Prometheus metrics
	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg.
// Цикл обновления запускается через Start или StartHTTP.
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer) *MetricsExporter {
	me := &MetricsExporter{
		bus:      bus,
		interval: time.Second,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных сообщений.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Общее число доставленных сообщений подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Сообщений, отброшенных из-за ошибок или ограничения back-pressure.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "messages_inflight",
			Help:      "Количество сообщений, находящихся в очереди (не доставленных).",
		}),
	}

	reg.MustRegister(me.published, me.consumed, me.dropped, me.inflight)
	return me
}

// Start запускает периодическое обновление метрик. Метод неблокирующий.
func (m *MetricsExporter) Start() {
	go m.loop()
}

// StartHTTP дополнительно поднимает отдельный эндпоинт /metrics на addr (например, ":2112").
func (m *MetricsExporter) StartHTTP(addr string, gatherer prometheus.Gatherer) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	m.Start()
}

// Stop останавливает обновление метрик. HTTP-сервер при этом не завершается.
// Безопасен для повторного вызова; до Start не блокирует.
func (m *MetricsExporter) Stop() {
	m.stopOnce.Do(func() {
		close(m.quit)
	})
}

// Wait ожидает завершения цикла обновления после Stop
func (m *MetricsExporter) Wait() {
	<-m.done
}

// Refresh один раз переносит текущие Stats шины в метрики
func (m *MetricsExporter) Refresh() {
	stats := m.bus.Metrics()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Counter только растёт, поэтому прибавляем дельту к прошлому значению
	if stats.Published > m.prev.Published {
		m.published.Add(float64(stats.Published - m.prev.Published))
	}
	if stats.Consumed > m.prev.Consumed {
		m.consumed.Add(float64(stats.Consumed - m.prev.Consumed))
	}
	if stats.Dropped > m.prev.Dropped {
		m.dropped.Add(float64(stats.Dropped - m.prev.Dropped))
	}
	m.inflight.Set(float64(stats.InFlight))
	m.prev = stats
}

func (m *MetricsExporter) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer close(m.done)

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.quit:
			m.Refresh()
			return
		}
	}
}
