package world

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics: Prometheus-метрики симуляции
type Metrics struct {
	tickDuration prometheus.Histogram
	bodies       prometheus.Gauge
	projectiles  prometheus.Gauge
	hits         prometheus.Counter
	destroyed    prometheus.Counter
	splits       prometheus.Counter
	collisions   prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "battle",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика симуляции.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "battle",
			Name:      "bodies",
			Help:      "Число тел в мире.",
		}),
		projectiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "battle",
			Name:      "projectiles",
			Help:      "Число летящих снарядов.",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "battle",
			Name:      "voxel_hits_total",
			Help:      "Попадания снарядов в воксели.",
		}),
		destroyed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "battle",
			Name:      "voxels_destroyed_total",
			Help:      "Разрушенные воксели.",
		}),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "battle",
			Name:      "body_splits_total",
			Help:      "Осколки, отделившиеся от тел.",
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "battle",
			Name:      "collisions_total",
			Help:      "Столкновения пар тел.",
		}),
	}

	reg.MustRegister(m.tickDuration, m.bodies, m.projectiles, m.hits, m.destroyed, m.splits, m.collisions)
	return m
}

func (m *Metrics) observe(r StepReport, bodies, projectiles int) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(r.Duration.Seconds())
	m.bodies.Set(float64(bodies))
	m.projectiles.Set(float64(projectiles))
	m.hits.Add(float64(r.Hits))
	m.destroyed.Add(float64(r.DestroyedVoxels))
	m.splits.Add(float64(len(r.Spawned)))
	m.collisions.Add(float64(r.Collisions))
}
