// Package structure содержит плотную воксельную решетку тела и её разреженное
// зеркало в октодереве. Обе формы хранения обновляются только изнутри
// Structure и не могут разойтись.
package structure

import (
	"fmt"
	"iter"

	"github.com/annel0/voxel-battle/internal/octree"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/annel0/voxel-battle/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
)

// Structure: плотный массив вокселей над целочисленным боксом.
// Бокс растёт при добавлении и сжимается только через RecalculateBox.
type Structure struct {
	box   vec.Box3
	cells []*voxel.Voxel // z-major, затем y, затем x
	index *octree.Octree
	count int
}

// New создаёт пустую структуру
func New() *Structure {
	return &Structure{
		box:   vec.EmptyBox(),
		index: octree.New(),
	}
}

// Box возвращает текущий бокс структуры
func (s *Structure) Box() vec.Box3 {
	return s.box
}

// Count возвращает число занятых ячеек
func (s *Structure) Count() int {
	return s.count
}

// IsEmpty возвращает true, если в структуре нет вокселей
func (s *Structure) IsEmpty() bool {
	return s.count == 0
}

// Contains проверяет, лежит ли координата внутри бокса
func (s *Structure) Contains(c vec.Vec3) bool {
	return s.box.Contains(c)
}

// IndexCube возвращает куб октодерева: каноническую область разбиения
func (s *Structure) IndexCube() vec.Box3 {
	return s.index.Cube()
}

// offset возвращает индекс ячейки в массиве. Вызывающий проверяет бокс.
func (s *Structure) offset(c vec.Vec3) int {
	size := s.box.Size()
	dx := c.X - s.box.Min.X
	dy := c.Y - s.box.Min.Y
	dz := c.Z - s.box.Min.Z
	return (dz*size.Y+dy)*size.X + dx
}

// mustOffset: индекс с проверкой границ; выход за бокс означает ошибку вызывающего
func (s *Structure) mustOffset(c vec.Vec3) int {
	if !s.box.Contains(c) {
		panic(fmt.Sprintf("structure: координата %+v вне бокса %+v", c, s.box))
	}
	return s.offset(c)
}

// AddVoxel вставляет воксель, расширяя бокс при необходимости
func (s *Structure) AddVoxel(c vec.Vec3, v voxel.Voxel) {
	if !s.box.Contains(c) {
		s.resize(s.box.Extend(c))
	}
	i := s.offset(c)
	if s.cells[i] == nil {
		s.count++
	}
	stored := v
	s.cells[i] = &stored
	s.index.Add(c)
}

// RemoveVoxel очищает ячейку. Возвращает true, если ячейка была занята.
func (s *Structure) RemoveVoxel(c vec.Vec3) bool {
	i := s.mustOffset(c)
	if s.cells[i] == nil {
		return false
	}
	s.cells[i] = nil
	s.count--
	s.index.Remove(c)
	return true
}

// Voxel возвращает воксель в ячейке или nil. Паника, если c вне бокса.
func (s *Structure) Voxel(c vec.Vec3) *voxel.Voxel {
	return s.cells[s.mustOffset(c)]
}

// HasVoxel проверяет занятость ячейки. Паника, если c вне бокса.
func (s *Structure) HasVoxel(c vec.Vec3) bool {
	return s.cells[s.mustOffset(c)] != nil
}

// Lookup: чтение без требования к границам: вне бокса ячейка считается пустой
func (s *Structure) Lookup(c vec.Vec3) (*voxel.Voxel, bool) {
	if !s.box.Contains(c) {
		return nil, false
	}
	v := s.cells[s.offset(c)]
	return v, v != nil
}

// HasAnyVoxelInBox проверяет наличие вокселей в боксе через октодерево
func (s *Structure) HasAnyVoxelInBox(b vec.Box3) bool {
	return s.index.HasAnyVoxelInBox(b)
}

// IndexHasVoxel читает занятость из октодерева (для сверки с решеткой)
func (s *Structure) IndexHasVoxel(c vec.Vec3) bool {
	return s.index.HasVoxel(c)
}

// Voxels возвращает ленивую перезапускаемую последовательность занятых ячеек
// в фиксированном порядке сканирования: z, затем y, затем x.
func (s *Structure) Voxels() iter.Seq2[vec.Vec3, *voxel.Voxel] {
	return func(yield func(vec.Vec3, *voxel.Voxel) bool) {
		if s.count == 0 {
			return
		}
		b := s.box
		i := 0
		for z := b.Min.Z; z <= b.Max.Z; z++ {
			for y := b.Min.Y; y <= b.Max.Y; y++ {
				for x := b.Min.X; x <= b.Max.X; x++ {
					if v := s.cells[i]; v != nil {
						if !yield(vec.Vec3{X: x, Y: y, Z: z}, v) {
							return
						}
					}
					i++
				}
			}
		}
	}
}

// ForEachVoxel вызывает fn для каждой занятой ячейки в порядке сканирования
func (s *Structure) ForEachVoxel(fn func(c vec.Vec3, v *voxel.Voxel)) {
	for c, v := range s.Voxels() {
		fn(c, v)
	}
}

// Coords возвращает координаты всех вокселей в порядке сканирования
func (s *Structure) Coords() []vec.Vec3 {
	coords := make([]vec.Vec3, 0, s.count)
	for c := range s.Voxels() {
		coords = append(coords, c)
	}
	return coords
}

// CenterOfMass возвращает среднюю координату вокселей в локальном пространстве
func (s *Structure) CenterOfMass() mgl64.Vec3 {
	if s.count == 0 {
		return mgl64.Vec3{}
	}
	var sum mgl64.Vec3
	for c := range s.Voxels() {
		sum = sum.Add(c.Float())
	}
	return sum.Mul(1 / float64(s.count))
}

// RecalculateBox сжимает бокс до минимального, покрывающего все воксели
func (s *Structure) RecalculateBox() {
	tight := vec.EmptyBox()
	for c := range s.Voxels() {
		tight = tight.Extend(c)
	}
	if tight == s.box {
		return
	}
	s.resize(tight)
}

// resize переносит все ячейки в новый бокс. Стоимость O(объём).
func (s *Structure) resize(newBox vec.Box3) {
	old := s.box
	oldCells := s.cells

	s.box = newBox
	if newBox.IsEmpty() {
		s.cells = nil
		return
	}
	s.cells = make([]*voxel.Voxel, newBox.Volume())

	if old.IsEmpty() {
		return
	}
	i := 0
	for z := old.Min.Z; z <= old.Max.Z; z++ {
		for y := old.Min.Y; y <= old.Max.Y; y++ {
			for x := old.Min.X; x <= old.Max.X; x++ {
				if v := oldCells[i]; v != nil {
					s.cells[s.offset(vec.Vec3{X: x, Y: y, Z: z})] = v
				}
				i++
			}
		}
	}
}

// SweepDeadVoxels удаляет воксели с исчерпанной прочностью и возвращает их координаты
func (s *Structure) SweepDeadVoxels() []vec.Vec3 {
	var cleared []vec.Vec3
	for c, v := range s.Voxels() {
		if v.Dead() {
			cleared = append(cleared, c)
		}
	}
	for _, c := range cleared {
		s.RemoveVoxel(c)
	}
	return cleared
}

