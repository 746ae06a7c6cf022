package physics

import (
	"github.com/annel0/voxel-battle/internal/logging"
	"github.com/annel0/voxel-battle/internal/structure"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// Pair: пара пересекающихся вокселей двух тел в их локальных координатах
type Pair struct {
	A vec.Vec3 `json:"a"`
	B vec.Vec3 `json:"b"`
}

// VoxelPairIntersections возвращает все пары занятых вокселей a и b, единичные
// кубы которых пересекаются в мире. Поиск спускается по кубам октодеревьев
// обоих тел, на каждом шаге деля больший куб на октанты и отбрасывая пустые
// и разделённые осью подкубы.
func VoxelPairIntersections(a, b *Body) []Pair {
	if a.IsEmpty() || b.IsEmpty() {
		return nil
	}
	if !a.WorldBox().Overlaps(b.WorldBox()) {
		return nil
	}

	n := narrowPhase{
		sa: a.structure,
		sb: b.structure,
		ta: a.Repere,
		tb: b.Repere,
	}
	n.descend(a.structure.IndexCube(), b.structure.IndexCube())
	return n.pairs
}

type narrowPhase struct {
	sa, sb *structure.Structure
	ta, tb mgl64.Mat4
	pairs  []Pair
}

func (n *narrowPhase) descend(ca, cb vec.Box3) {
	if !n.sa.HasAnyVoxelInBox(ca) || !n.sb.HasAnyVoxelInBox(cb) {
		return
	}
	if !OBBIntersect(ca.Bounds(), n.ta, cb.Bounds(), n.tb) {
		return
	}

	sizeA := ca.Size().X
	sizeB := cb.Size().X
	if sizeA == 1 && sizeB == 1 {
		// Оба куба единичные и заняты: пересечение уже подтверждено осями
		n.pairs = append(n.pairs, Pair{A: ca.Min, B: cb.Min})
		return
	}

	if sizeA >= sizeB {
		for _, child := range octants(ca) {
			n.descend(child, cb)
		}
		return
	}
	for _, child := range octants(cb) {
		n.descend(ca, child)
	}
}

// octants делит куб со стороной 2^k на восемь подкубов
func octants(cube vec.Box3) [8]vec.Box3 {
	half := cube.Size().X / 2
	var out [8]vec.Box3
	for i := 0; i < 8; i++ {
		origin := cube.Min
		if i&1 != 0 {
			origin.X += half
		}
		if i&2 != 0 {
			origin.Y += half
		}
		if i&4 != 0 {
			origin.Z += half
		}
		out[i] = vec.CubeBox(origin, half)
	}
	return out
}

// ResolveVelocities решает импульсный отклик двух масс с коэффициентом
// восстановления e: 1: упругий удар, 0: абсолютно неупругий.
func ResolveVelocities(massA float64, velA mgl64.Vec3, massB float64, velB mgl64.Vec3, e float64) (mgl64.Vec3, mgl64.Vec3) {
	total := massA + massB
	if total <= 0 {
		return velA, velB
	}
	momentum := velA.Mul(massA).Add(velB.Mul(massB))
	newA := divide(momentum.Add(velB.Sub(velA).Mul(massB*e)), total)
	newB := divide(momentum.Add(velA.Sub(velB).Mul(massA*e)), total)
	return newA, newB
}

func divide(v mgl64.Vec3, d float64) mgl64.Vec3 {
	return mgl64.Vec3{v[0] / d, v[1] / d, v[2] / d}
}

// Respond обновляет скорости двух тел без проверки пересечения.
// Угловой отклик и раздвижение тел не моделируются.
func Respond(a, b *Body, restitution float64) {
	a.Velocity, b.Velocity = ResolveVelocities(a.Mass(), a.Velocity, b.Mass(), b.Velocity, restitution)
}

// ApplyCollision обновляет скорости a и b, если их воксели пересекаются.
// Возвращает true, если отклик применён.
func ApplyCollision(a, b *Body, restitution float64) bool {
	pairs := VoxelPairIntersections(a, b)
	if len(pairs) == 0 {
		return false
	}
	Respond(a, b, restitution)
	logging.GetPhysicsLogger().Debug("Столкновение %s и %s: %d пар вокселей", a.ID, b.ID, len(pairs))
	return true
}
