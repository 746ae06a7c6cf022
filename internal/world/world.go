// Package world ведёт симуляцию боя: хранит тела и снаряды и выполняет тик
// в фиксированном порядке: движение, снаряды, раскол, столкновения.
package world

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/voxel-battle/internal/eventbus"
	"github.com/annel0/voxel-battle/internal/logging"
	"github.com/annel0/voxel-battle/internal/physics"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrBodyNotFound возвращается, если тела с таким ID нет в мире
var ErrBodyNotFound = errors.New("тело не найдено")

// Config: параметры симуляции
type Config struct {
	Restitution        float64 // коэффициент восстановления при столкновениях, [0,1]
	Workers            int     // параллельность узкой фазы, 0: без ограничения
	ProjectileLifetime float64 // время жизни снаряда в секундах
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		Restitution:        0.8,
		Workers:            4,
		ProjectileLifetime: 5,
	}
}

// Projectile: снаряд мгновенного попадания, летящий по прямой
type Projectile struct {
	ID       uuid.UUID  `json:"id"`
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Damage   float64    `json:"damage"`
	Age      float64    `json:"age"`
	Lifetime float64    `json:"lifetime"`
}

// StepReport: итоги одного тика
type StepReport struct {
	Tick            uint64        `json:"tick"`
	Hits            int           `json:"hits"`
	DestroyedVoxels int           `json:"destroyed_voxels"`
	Collisions      int           `json:"collisions"`
	Spawned         []uuid.UUID   `json:"spawned,omitempty"`
	Removed         []uuid.UUID   `json:"removed,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// Option настраивает World
type Option func(*World)

// WithEventBus задаёт шину для событий тика
func WithEventBus(bus eventbus.EventBus) Option {
	return func(w *World) { w.bus = bus }
}

// WithMetrics задаёт Prometheus-метрики
func WithMetrics(m *Metrics) Option {
	return func(w *World) { w.metrics = m }
}

// WithTracer задаёт трассировщик OpenTelemetry
func WithTracer(t trace.Tracer) Option {
	return func(w *World) { w.tracer = t }
}

// World: мир симуляции. Методы безопасны для конкурентного вызова;
// Step исключает все остальные операции на время тика.
type World struct {
	mu          sync.RWMutex
	cfg         Config
	bodies      map[uuid.UUID]*physics.Body
	order       []uuid.UUID // порядок добавления тел
	projectiles []*Projectile
	tick        uint64

	bus     eventbus.EventBus
	metrics *Metrics
	tracer  trace.Tracer
	log     *logging.Logger
}

// New создаёт пустой мир
func New(cfg Config, opts ...Option) *World {
	w := &World{
		cfg:    cfg,
		bodies: make(map[uuid.UUID]*physics.Body),
		tracer: otel.Tracer("github.com/annel0/voxel-battle/internal/world"),
		log:    logging.GetWorldLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Config возвращает параметры симуляции
func (w *World) Config() Config {
	return w.cfg
}

// Tick возвращает номер последнего выполненного тика
func (w *World) Tick() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// AddBody добавляет тело в мир
func (w *World) AddBody(b *physics.Body) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addBodyLocked(b)
}

func (w *World) addBodyLocked(b *physics.Body) {
	if _, exists := w.bodies[b.ID]; exists {
		return
	}
	w.bodies[b.ID] = b
	w.order = append(w.order, b.ID)
}

// RemoveBody удаляет тело из мира
func (w *World) RemoveBody(id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.bodies[id]; !exists {
		return fmt.Errorf("%w: %s", ErrBodyNotFound, id)
	}
	w.removeBodyLocked(id)
	return nil
}

func (w *World) removeBodyLocked(id uuid.UUID) {
	delete(w.bodies, id)
	for i, other := range w.order {
		if other == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Body возвращает тело по ID
func (w *World) Body(id uuid.UUID) (*physics.Body, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, exists := w.bodies[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBodyNotFound, id)
	}
	return b, nil
}

// Bodies возвращает тела в порядке добавления. Сами тела не копируются,
// поэтому изменять их можно только между тиками.
func (w *World) Bodies() []*physics.Body {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.bodiesLocked()
}

func (w *World) bodiesLocked() []*physics.Body {
	out := make([]*physics.Body, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.bodies[id])
	}
	return out
}

// Fire запускает снаряд. Пустой ID и нулевое время жизни заполняются.
func (w *World) Fire(p Projectile) uuid.UUID {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Lifetime <= 0 {
		p.Lifetime = w.cfg.ProjectileLifetime
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.projectiles = append(w.projectiles, &p)
	return p.ID
}

// Projectiles возвращает копии летящих снарядов
func (w *World) Projectiles() []Projectile {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Projectile, 0, len(w.projectiles))
	for _, p := range w.projectiles {
		out = append(out, *p)
	}
	return out
}

// Step выполняет один тик симуляции длительностью dt секунд
func (w *World) Step(ctx context.Context, dt float64) (StepReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	w.tick++
	report := StepReport{Tick: w.tick}

	ctx, span := w.tracer.Start(ctx, "world.Step", trace.WithAttributes(
		attribute.Int64("tick", int64(w.tick)),
		attribute.Int("bodies", len(w.bodies)),
		attribute.Int("projectiles", len(w.projectiles)),
	))
	defer span.End()

	var events []pendingEvent

	w.integrate(ctx, dt)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	events = append(events, w.advanceProjectiles(ctx, dt, &report)...)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	events = append(events, w.resolveSplits(ctx, &report)...)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	collisionEvents, err := w.resolveCollisions(ctx, &report)
	if err != nil {
		return report, err
	}
	events = append(events, collisionEvents...)

	report.Duration = time.Since(start)
	w.metrics.observe(report, len(w.bodies), len(w.projectiles))

	if err := w.publish(ctx, events); err != nil {
		return report, err
	}
	return report, nil
}

func (w *World) integrate(ctx context.Context, dt float64) {
	_, span := w.tracer.Start(ctx, "world.integrate")
	defer span.End()

	for _, id := range w.order {
		w.bodies[id].Integrate(dt)
	}
}

// advanceProjectiles продвигает снаряды. Снаряд попадает в ближайшее тело на
// своём отрезке за тик и исчезает; промахнувшийся летит дальше до истечения срока.
func (w *World) advanceProjectiles(ctx context.Context, dt float64, report *StepReport) []pendingEvent {
	_, span := w.tracer.Start(ctx, "world.projectiles")
	defer span.End()

	var events []pendingEvent
	alive := w.projectiles[:0]

	for _, p := range w.projectiles {
		seg := vec.Segment{Start: p.Position, End: p.Position.Add(p.Velocity.Mul(dt))}
		segBox := vec.EmptyBoxF().ExtendPoint(seg.Start).ExtendPoint(seg.End)

		var (
			target *physics.Body
			best   physics.RayHit
		)
		for _, id := range w.order {
			b := w.bodies[id]
			if !b.WorldBox().Touches(segBox) {
				continue
			}
			hit, ok := b.Raycast(seg)
			if ok && (target == nil || hit.Distance < best.Distance) {
				target, best = b, hit
			}
		}

		if target != nil && target.FirstVoxelHit(seg, p.Damage) {
			report.Hits++
			events = append(events, pendingEvent{
				eventType: EventVoxelHit,
				priority:  priorityHit,
				payload: VoxelHitEvent{
					Tick:         w.tick,
					BodyID:       target.ID,
					ProjectileID: p.ID,
					Coord:        best.Coord,
					Normal:       best.Normal,
					Damage:       p.Damage,
					Distance:     best.Distance,
				},
			})
			continue
		}

		p.Position = seg.End
		p.Age += dt
		if p.Age < p.Lifetime {
			alive = append(alive, p)
		}
	}

	// Хвост среза очищается, чтобы не удерживать снаряды
	for i := len(alive); i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = alive

	span.SetAttributes(attribute.Int("hits", report.Hits))
	return events
}

// resolveSplits очищает разрушенные воксели, регистрирует осколки и удаляет пустые тела
func (w *World) resolveSplits(ctx context.Context, report *StepReport) []pendingEvent {
	_, span := w.tracer.Start(ctx, "world.splits")
	defer span.End()

	var events []pendingEvent
	for _, b := range w.bodiesLocked() {
		result := b.Split()
		report.DestroyedVoxels += len(result.Destroyed)

		if len(result.Children) > 0 {
			ids := make([]uuid.UUID, 0, len(result.Children))
			for _, child := range result.Children {
				w.addBodyLocked(child)
				ids = append(ids, child.ID)
			}
			report.Spawned = append(report.Spawned, ids...)
			events = append(events, pendingEvent{
				eventType: EventBodySplit,
				priority:  prioritySplit,
				payload: BodySplitEvent{
					Tick:      w.tick,
					ParentID:  b.ID,
					ChildIDs:  ids,
					Destroyed: len(result.Destroyed),
				},
			})
			w.log.Debug("💥 Тело %s раскололось на %d осколков", b.ID, len(ids))
		}

		if b.IsEmpty() {
			w.removeBodyLocked(b.ID)
			report.Removed = append(report.Removed, b.ID)
			events = append(events, pendingEvent{
				eventType: EventBodyDestroyed,
				priority:  priorityDestroyed,
				payload:   BodyDestroyedEvent{Tick: w.tick, BodyID: b.ID},
			})
			w.log.Debug("🗑️ Тело %s уничтожено", b.ID)
		}
	}

	span.SetAttributes(
		attribute.Int("destroyed_voxels", report.DestroyedVoxels),
		attribute.Int("spawned", len(report.Spawned)),
	)
	return events
}

// resolveCollisions проверяет все пары тел параллельно, затем последовательно
// обновляет скорости, чтобы тело из нескольких пар не изменялось конкурентно.
func (w *World) resolveCollisions(ctx context.Context, report *StepReport) ([]pendingEvent, error) {
	ctx, span := w.tracer.Start(ctx, "world.collisions")
	defer span.End()

	bodies := w.bodiesLocked()
	var candidates []contact
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			candidates = append(candidates, contact{a: bodies[i], b: bodies[j]})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if w.cfg.Workers > 0 {
		g.SetLimit(w.cfg.Workers)
	}
	for i := range candidates {
		c := &candidates[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.pairs = physics.VoxelPairIntersections(c.a, c.b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var events []pendingEvent
	for _, c := range candidates {
		if len(c.pairs) == 0 {
			continue
		}
		physics.Respond(c.a, c.b, w.cfg.Restitution)
		report.Collisions++
		events = append(events, pendingEvent{
			eventType: EventBodyCollision,
			priority:  priorityCollision,
			payload: BodyCollisionEvent{
				Tick:      w.tick,
				A:         c.a.ID,
				B:         c.b.ID,
				Pairs:     len(c.pairs),
				VelocityA: c.a.Velocity,
				VelocityB: c.b.Velocity,
			},
		})
	}

	span.SetAttributes(attribute.Int("pairs", len(candidates)), attribute.Int("collisions", report.Collisions))
	return events, nil
}

func (w *World) publish(ctx context.Context, events []pendingEvent) error {
	if w.bus == nil || len(events) == 0 {
		return nil
	}
	correlation := fmt.Sprintf("tick-%d", w.tick)
	for _, e := range events {
		ev, err := eventbus.NewEnvelope(EventSource, e.eventType, e.priority, e.payload)
		if err != nil {
			return err
		}
		ev.CorrelationID = correlation
		if err := w.bus.Publish(ctx, ev); err != nil {
			return fmt.Errorf("ошибка публикации %s: %w", e.eventType, err)
		}
	}
	return nil
}

// BodyView: снимок тела только для чтения
type BodyView struct {
	ID       uuid.UUID        `json:"id"`
	Position mgl64.Vec3       `json:"position"`
	Velocity mgl64.Vec3       `json:"velocity"`
	Rotation physics.Rotation `json:"rotation"`
	Voxels   int              `json:"voxels"`
	Mass     float64          `json:"mass"`

	// CenterOfMass в мировых координатах
	CenterOfMass mgl64.Vec3 `json:"center_of_mass"`
	WorldBox     vec.BoxF   `json:"world_box"`
}

// Snapshot: согласованный снимок мира
type Snapshot struct {
	Tick        uint64       `json:"tick"`
	Bodies      []BodyView   `json:"bodies"`
	Projectiles []Projectile `json:"projectiles"`
}

// ViewOf строит снимок одного тела
func ViewOf(b *physics.Body) BodyView {
	return BodyView{
		ID:       b.ID,
		Position: b.Position(),
		Velocity: b.Velocity,
		Rotation: b.Rotation,
		Voxels:   b.Structure().Count(),
		Mass:     b.Mass(),
		WorldBox: b.WorldBox(),

		CenterOfMass: b.CenterOfMass(),
	}
}

// Snapshot возвращает снимок тел и снарядов между тиками
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := Snapshot{
		Tick:        w.tick,
		Bodies:      make([]BodyView, 0, len(w.order)),
		Projectiles: make([]Projectile, 0, len(w.projectiles)),
	}
	for _, id := range w.order {
		snap.Bodies = append(snap.Bodies, ViewOf(w.bodies[id]))
	}
	for _, p := range w.projectiles {
		snap.Projectiles = append(snap.Projectiles, *p)
	}
	return snap
}

// BodyView возвращает снимок тела по ID
func (w *World) BodyView(id uuid.UUID) (BodyView, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, exists := w.bodies[id]
	if !exists {
		return BodyView{}, fmt.Errorf("%w: %s", ErrBodyNotFound, id)
	}
	return ViewOf(b), nil
}

// Restore заменяет содержимое мира телами из снимка хранилища
func (w *World) Restore(tick uint64, bodies []*physics.Body) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.bodies = make(map[uuid.UUID]*physics.Body, len(bodies))
	w.order = w.order[:0]
	w.projectiles = nil
	w.tick = tick

	for _, b := range bodies {
		w.addBodyLocked(b)
	}
}
