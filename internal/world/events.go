package world

import (
	"github.com/annel0/voxel-battle/internal/physics"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Типы событий, публикуемых миром в шину
const (
	EventVoxelHit      = "voxel.hit"
	EventBodySplit     = "body.split"
	EventBodyDestroyed = "body.destroyed"
	EventBodyCollision = "body.collision"
)

// Приоритеты событий для back-pressure шины
const (
	priorityHit       = 2
	prioritySplit     = 6
	priorityDestroyed = 6
	priorityCollision = 4
)

// EventSource: имя источника событий мира
const EventSource = "world"

// VoxelHitEvent: попадание снаряда в воксель
type VoxelHitEvent struct {
	Tick         uint64    `json:"tick"`
	BodyID       uuid.UUID `json:"body_id"`
	ProjectileID uuid.UUID `json:"projectile_id"`
	Coord        vec.Vec3  `json:"coord"`
	Normal       vec.Vec3  `json:"normal"`
	Damage       float64   `json:"damage"`
	Distance     float64   `json:"distance"`
}

// BodySplitEvent: тело раскололось на части
type BodySplitEvent struct {
	Tick      uint64      `json:"tick"`
	ParentID  uuid.UUID   `json:"parent_id"`
	ChildIDs  []uuid.UUID `json:"child_ids"`
	Destroyed int         `json:"destroyed_voxels"`
}

// BodyDestroyedEvent: у тела не осталось вокселей, оно удалено из мира
type BodyDestroyedEvent struct {
	Tick   uint64    `json:"tick"`
	BodyID uuid.UUID `json:"body_id"`
}

// BodyCollisionEvent: отклик на столкновение двух тел
type BodyCollisionEvent struct {
	Tick      uint64     `json:"tick"`
	A         uuid.UUID  `json:"a"`
	B         uuid.UUID  `json:"b"`
	Pairs     int        `json:"pairs"`
	VelocityA mgl64.Vec3 `json:"velocity_a"`
	VelocityB mgl64.Vec3 `json:"velocity_b"`
}

// pendingEvent: событие, накопленное за тик до публикации
type pendingEvent struct {
	eventType string
	priority  int
	payload   any
}

// contact: результат узкой фазы для пары тел
type contact struct {
	a, b  *physics.Body
	pairs []physics.Pair
}
