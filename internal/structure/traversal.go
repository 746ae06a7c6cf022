package structure

import (
	"math"

	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/annel0/voxel-battle/internal/voxel"
)

// Action: решение посетителя обхода: продолжить или остановиться
type Action uint8

const (
	Continue Action = iota
	Stop
)

// Crossing описывает ячейку решетки, через которую проходит отрезок
type Crossing struct {
	Coord  vec.Vec3 // координата ячейки
	Normal vec.Vec3 // нормаль грани входа, нулевая для начальной ячейки
	T      float64  // параметр отрезка в точке входа, [0,1]
}

// TraverseSegment проходит решетку вдоль отрезка (DDA) и вызывает visit для
// каждой затронутой ячейки по порядку, включая ячейки вне бокса. Отрезок задан в
// локальном пространстве, где ячейка i покрывает [i-0.5, i+0.5). Возвращает true,
// если посетитель остановил обход.
func (s *Structure) TraverseSegment(seg vec.Segment, visit func(Crossing) Action) bool {
	return TraverseSegment(seg, visit)
}

// TraverseSegment: обход решетки без привязки к структуре
func TraverseSegment(seg vec.Segment, visit func(Crossing) Action) bool {
	var (
		cell, last vec.Vec3
		step       [3]int
		tMax       [3]float64
		tDelta     [3]float64
	)

	for a := 0; a < 3; a++ {
		p0 := seg.Start[a] + 0.5
		p1 := seg.End[a] + 0.5
		d := p1 - p0

		switch {
		case d > 0:
			step[a] = 1
			first := int(math.Floor(p0))
			cell = cell.WithAxis(a, first)
			last = last.WithAxis(a, int(math.Ceil(p1))-1)
			tMax[a] = (float64(first+1) - p0) / d
			tDelta[a] = 1 / d
		case d < 0:
			// Начало ровно на границе относится к ячейке по направлению движения
			step[a] = -1
			first := int(math.Ceil(p0)) - 1
			cell = cell.WithAxis(a, first)
			last = last.WithAxis(a, int(math.Floor(p1)))
			tMax[a] = (float64(first) - p0) / d
			tDelta[a] = -1 / d
		default:
			first := int(math.Floor(p0))
			cell = cell.WithAxis(a, first)
			last = last.WithAxis(a, first)
			tMax[a] = math.Inf(1)
			tDelta[a] = math.Inf(1)
		}
	}

	if visit(Crossing{Coord: cell}) == Stop {
		return true
	}

	remaining := 0
	for a := 0; a < 3; a++ {
		remaining += abs(last.Axis(a) - cell.Axis(a))
	}

	for ; remaining > 0; remaining-- {
		axis := -1
		for a := 0; a < 3; a++ {
			if cell.Axis(a) == last.Axis(a) {
				continue
			}
			if axis < 0 || tMax[a] < tMax[axis] {
				axis = a
			}
		}

		t := math.Min(math.Max(tMax[axis], 0), 1)
		cell = cell.WithAxis(axis, cell.Axis(axis)+step[axis])
		tMax[axis] += tDelta[axis]

		normal := vec.Vec3{}.WithAxis(axis, -step[axis])
		if visit(Crossing{Coord: cell, Normal: normal, T: t}) == Stop {
			return true
		}
	}
	return false
}

// ForFirstVoxel находит первый занятый воксель вдоль отрезка и вызывает для него fn.
// Возвращает false, если отрезок не задел ни одного вокселя.
func (s *Structure) ForFirstVoxel(seg vec.Segment, fn func(Crossing, *voxel.Voxel)) bool {
	if s.count == 0 {
		return false
	}
	return s.TraverseSegment(seg, func(c Crossing) Action {
		v, ok := s.Lookup(c.Coord)
		if !ok {
			return Continue
		}
		fn(c, v)
		return Stop
	})
}

// ForAllVoxels вызывает fn для каждого занятого вокселя вдоль отрезка.
// Возвращает число посещённых вокселей.
func (s *Structure) ForAllVoxels(seg vec.Segment, fn func(Crossing, *voxel.Voxel)) int {
	if s.count == 0 {
		return 0
	}
	visited := 0
	s.TraverseSegment(seg, func(c Crossing) Action {
		if v, ok := s.Lookup(c.Coord); ok {
			fn(c, v)
			visited++
		}
		return Continue
	})
	return visited
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
