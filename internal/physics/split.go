package physics

import (
	"math"

	"github.com/annel0/voxel-battle/internal/logging"
	"github.com/annel0/voxel-battle/internal/structure"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// SplitResult описывает итог очистки и раскола тела за тик
type SplitResult struct {
	Destroyed []vec.Vec3 // координаты разрушенных вокселей
	Children  []*Body    // новые тела из оторвавшихся частей
}

// ResolveSplit удаляет разрушенные воксели и отделяет части, потерявшие связь
// друг с другом. Компонента с якорем (0,0,0) остаётся в теле, остальные
// переносятся в новые тела. Вызывается один раз за тик после всех повреждений.
func (b *Body) ResolveSplit() []*Body {
	return b.Split().Children
}

// Split: ResolveSplit с координатами разрушенных вокселей
func (b *Body) Split() SplitResult {
	s := b.structure
	cleared := s.SweepDeadVoxels()
	if len(cleared) == 0 {
		return SplitResult{}
	}

	result := SplitResult{Destroyed: cleared}
	components := s.ConnectedComponents(s.OccupiedNeighbors(cleared))
	if len(components) > 1 {
		for _, component := range components {
			if containsAnchor(component) {
				continue
			}
			anchor := fragmentAnchor(component)
			child := DerivedFrom(s.Extract(component, anchor), anchor, b)
			result.Children = append(result.Children, child)
		}
	}
	s.RecalculateBox()

	if len(result.Children) > 0 {
		logging.GetPhysicsLogger().Debug("Тело %s раскололось: %d осколков, разрушено %d вокселей",
			b.ID, len(result.Children), len(cleared))
	}
	return result
}

// DerivedFrom создаёт тело из части родителя, смещённой на offset от его якоря.
// Родитель после создания не упоминается: кинематика копируется.
func DerivedFrom(s *structure.Structure, offset vec.Vec3, parent *Body) *Body {
	child := &Body{
		ID:        uuid.New(),
		Repere:    parent.Repere,
		Velocity:  parent.Velocity,
		Rotation:  parent.Rotation,
		structure: s,
	}
	if offset.IsZero() {
		return child
	}

	off := offset.Float()
	unit := off.Normalize()
	lenSq := off.Dot(off)
	axes := [3]mgl64.Vec3{vec.AxisX, vec.AxisY, vec.AxisZ}
	rates := parent.Rotation.Rates()

	// Центробежная добавка в локальном пространстве родителя
	var spin mgl64.Vec3
	var childRates [3]float64
	for i, axis := range axes {
		w := rates[i]
		spin = spin.Add(unit.Cross(axis.Mul(-1)).Mul(math.Sqrt(lenSq * w * w)))
		childRates[i] = w * math.Abs(unit.Dot(axis))
	}

	child.Repere = parent.Repere.Mul4(vec.Translate(off))
	child.Velocity = parent.Velocity.Add(vec.TransformDirection(parent.Repere, spin))
	child.Rotation = RotationFromRates(childRates)
	return child
}

func containsAnchor(component []vec.Vec3) bool {
	for _, c := range component {
		if c.IsZero() {
			return true
		}
	}
	return false
}

// fragmentAnchor выбирает воксель компоненты, ближайший к её центру масс.
// Компонента отсортирована в порядке сканирования, при равенстве берётся первый.
func fragmentAnchor(component []vec.Vec3) vec.Vec3 {
	var centroid mgl64.Vec3
	for _, c := range component {
		centroid = centroid.Add(c.Float())
	}
	centroid = centroid.Mul(1 / float64(len(component)))

	best := component[0]
	bestDist := math.Inf(1)
	for _, c := range component {
		d := c.Float().Sub(centroid)
		if dist := d.Dot(d); dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}
