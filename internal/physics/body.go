package physics

import (
	"github.com/annel0/voxel-battle/internal/logging"
	"github.com/annel0/voxel-battle/internal/structure"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/annel0/voxel-battle/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Rotation: угловые скорости тела в радианах в секунду.
// Крен вокруг локальной X, тангаж вокруг Y, рыскание вокруг Z.
type Rotation struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Rates возвращает скорости в порядке осей X, Y, Z
func (r Rotation) Rates() [3]float64 {
	return [3]float64{r.Roll, r.Pitch, r.Yaw}
}

// RotationFromRates собирает Rotation из скоростей по осям X, Y, Z
func RotationFromRates(rates [3]float64) Rotation {
	return Rotation{Roll: rates[0], Pitch: rates[1], Yaw: rates[2]}
}

// Body: твердое тело: структура, мировая матрица (репер) и скорости.
// Локальная координата (0,0,0) структуры: якорный воксель.
type Body struct {
	ID       uuid.UUID
	Repere   mgl64.Mat4
	Velocity mgl64.Vec3
	Rotation Rotation

	structure *structure.Structure
}

// NewBody создаёт тело из структуры и мировой матрицы
func NewBody(s *structure.Structure, repere mgl64.Mat4) *Body {
	if s == nil {
		s = structure.New()
	}
	return &Body{
		ID:        uuid.New(),
		Repere:    repere,
		structure: s,
	}
}

// NewBodyAt создаёт тело с якорем в точке position без поворота
func NewBodyAt(s *structure.Structure, position mgl64.Vec3) *Body {
	return NewBody(s, vec.Translate(position))
}

// Structure возвращает структуру тела
func (b *Body) Structure() *structure.Structure {
	return b.structure
}

// Position возвращает мировую позицию якоря
func (b *Body) Position() mgl64.Vec3 {
	return vec.Translation(b.Repere)
}

// IsEmpty возвращает true, если у тела не осталось вокселей
func (b *Body) IsEmpty() bool {
	return b.structure.IsEmpty()
}

// Mass возвращает массу тела, пропорциональную числу вокселей
func (b *Body) Mass() float64 {
	return float64(b.structure.Count())
}

// Momentum возвращает импульс тела
func (b *Body) Momentum() mgl64.Vec3 {
	return b.Velocity.Mul(b.Mass())
}

// LocalBounds возвращает объём бокса структуры в локальном пространстве
func (b *Body) LocalBounds() vec.BoxF {
	return b.structure.Box().Bounds()
}

// WorldBox возвращает AABB тела в мире. Считается заново при каждом вызове.
func (b *Body) WorldBox() vec.BoxF {
	return b.LocalBounds().Transform(b.Repere)
}

// Integrate продвигает кинематику на dt: перенос в мировом пространстве,
// приращения поворота в локальном (Z, затем Y, затем X).
func (b *Body) Integrate(dt float64) {
	translate := vec.Translate(b.Velocity.Mul(dt))
	rotate := mgl64.HomogRotate3DZ(b.Rotation.Yaw * dt).
		Mul4(mgl64.HomogRotate3DY(b.Rotation.Pitch * dt)).
		Mul4(mgl64.HomogRotate3DX(b.Rotation.Roll * dt))
	b.Repere = translate.Mul4(b.Repere).Mul4(rotate)
}

// ToLocal переводит отрезок из мира в локальное пространство тела
func (b *Body) ToLocal(seg vec.Segment) vec.Segment {
	return seg.Transform(b.Repere.Inv())
}

// RayHit описывает первое попадание отрезка в тело
type RayHit struct {
	Coord    vec.Vec3 `json:"coord"`    // локальная координата вокселя
	Normal   vec.Vec3 `json:"normal"`   // нормаль грани входа в локальном пространстве
	Distance float64  `json:"distance"` // мировое расстояние от начала отрезка
}

// Raycast ищет первый воксель вдоль мирового отрезка, не изменяя тело
func (b *Body) Raycast(seg vec.Segment) (RayHit, bool) {
	if b.structure.IsEmpty() {
		return RayHit{}, false
	}

	var hit RayHit
	found := b.structure.ForFirstVoxel(b.ToLocal(seg), func(c structure.Crossing, _ *voxel.Voxel) {
		hit = RayHit{
			Coord:    c.Coord,
			Normal:   c.Normal,
			Distance: c.T * seg.Length(),
		}
	})
	return hit, found
}

// FirstVoxelHit наносит damage первому вокселю на пути отрезка.
// За один вызов повреждается не больше одного вокселя.
func (b *Body) FirstVoxelHit(seg vec.Segment, damage float64) bool {
	return b.structure.ForFirstVoxel(b.ToLocal(seg), func(c structure.Crossing, v *voxel.Voxel) {
		v.Damage(damage)
		if log := logging.GetPhysicsLogger(); log.Enabled(logging.TRACE) {
			log.Trace("Попадание в тело %s: воксель %+v, прочность %.2f", b.ID, c.Coord, v.Life)
		}
	})
}

// CenterOfMass возвращает центр масс тела в мировых координатах
func (b *Body) CenterOfMass() mgl64.Vec3 {
	return vec.TransformPoint(b.Repere, b.structure.CenterOfMass())
}
