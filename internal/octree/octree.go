// Package octree содержит разреженный индекс занятости воксельной решетки.
//
// Дерево покрывает куб со стороной 2^n. Каждая ячейка находится в одном из
// трёх состояний: пустая, заполненная или разбитая на 8 октантов. После каждой
// мутации однородные октанты схлопываются обратно в родителя, поэтому дерево
// всегда максимально компактно.
package octree

import (
	"github.com/annel0/voxel-battle/internal/vec"
)

// CellState: состояние ячейки дерева
type CellState uint8

const (
	Empty CellState = iota
	Full
	Partitioned
)

// String возвращает строковое представление состояния
func (s CellState) String() string {
	switch s {
	case Empty:
		return "Empty"
	case Full:
		return "Full"
	case Partitioned:
		return "Partitioned"
	default:
		return "Unknown"
	}
}

type node struct {
	state    CellState
	children *[8]node
}

// Octree: индекс занятости над целочисленной решеткой.
// Куб растёт по мере необходимости и никогда не сжимается.
type Octree struct {
	origin vec.Vec3 // минимальный угол куба
	size   int      // сторона куба (степень двойки), 0 для пустого дерева
	root   node
}

// New создаёт пустое дерево
func New() *Octree {
	return &Octree{}
}

// NewCovering создаёт пустое дерево, куб которого содержит бокс b
func NewCovering(b vec.Box3) *Octree {
	t := New()
	if !b.IsEmpty() {
		t.growToContain(b.Min)
		t.growToContain(b.Max)
	}
	return t
}

// Cube возвращает покрываемый деревом куб решетки
func (t *Octree) Cube() vec.Box3 {
	if t.size == 0 {
		return vec.EmptyBox()
	}
	return vec.CubeBox(t.origin, t.size)
}

// Size возвращает сторону куба
func (t *Octree) Size() int {
	return t.size
}

// RootState возвращает состояние корневой ячейки
func (t *Octree) RootState() CellState {
	return t.root.state
}

// Add отмечает ячейку c занятой, расширяя куб при необходимости
func (t *Octree) Add(c vec.Vec3) {
	t.growToContain(c)
	t.root.set(t.origin, t.size, c, Full)
}

// Remove отмечает ячейку c свободной. Ячейки вне куба и так свободны.
func (t *Octree) Remove(c vec.Vec3) {
	if !t.Cube().Contains(c) {
		return
	}
	t.root.set(t.origin, t.size, c, Empty)
}

// Clear удаляет все ячейки, сохраняя размер куба
func (t *Octree) Clear() {
	t.root = node{}
}

// HasVoxel проверяет занятость ячейки
func (t *Octree) HasVoxel(c vec.Vec3) bool {
	if !t.Cube().Contains(c) {
		return false
	}
	n := &t.root
	origin, size := t.origin, t.size
	for {
		switch n.state {
		case Empty:
			return false
		case Full:
			return true
		}
		size /= 2
		idx, childOrigin := octant(origin, size, c)
		n = &n.children[idx]
		origin = childOrigin
	}
}

// HasAnyVoxelInBox проверяет, есть ли хотя бы одна занятая ячейка в боксе b
func (t *Octree) HasAnyVoxelInBox(b vec.Box3) bool {
	if t.size == 0 {
		return false
	}
	return t.root.anyIn(t.origin, t.size, b)
}

// CountNodes возвращает число узлов дерева (для проверки компактности)
func (t *Octree) CountNodes() int {
	if t.size == 0 {
		return 0
	}
	return t.root.count()
}

// growToContain удваивает куб в сторону c, пока c не окажется внутри
func (t *Octree) growToContain(c vec.Vec3) {
	if t.size == 0 {
		t.origin = c
		t.size = 1
		return
	}
	for !t.Cube().Contains(c) {
		newOrigin := t.origin
		idx := 0
		if c.X < t.origin.X {
			newOrigin.X -= t.size
			idx |= 1
		}
		if c.Y < t.origin.Y {
			newOrigin.Y -= t.size
			idx |= 2
		}
		if c.Z < t.origin.Z {
			newOrigin.Z -= t.size
			idx |= 4
		}

		old := t.root
		t.root = node{}
		if old.state != Empty {
			t.root.state = Partitioned
			t.root.children = &[8]node{}
			t.root.children[idx] = old
		}
		t.origin = newOrigin
		t.size *= 2
	}
}

// octant выбирает дочернюю ячейку для c: три независимых сравнения с центром
func octant(origin vec.Vec3, half int, c vec.Vec3) (int, vec.Vec3) {
	idx := 0
	child := origin
	if c.X >= origin.X+half {
		idx |= 1
		child.X += half
	}
	if c.Y >= origin.Y+half {
		idx |= 2
		child.Y += half
	}
	if c.Z >= origin.Z+half {
		idx |= 4
		child.Z += half
	}
	return idx, child
}

// childOrigin возвращает угол октанта idx
func childOrigin(origin vec.Vec3, half, idx int) vec.Vec3 {
	child := origin
	if idx&1 != 0 {
		child.X += half
	}
	if idx&2 != 0 {
		child.Y += half
	}
	if idx&4 != 0 {
		child.Z += half
	}
	return child
}

func (n *node) set(origin vec.Vec3, size int, c vec.Vec3, target CellState) {
	if size == 1 {
		n.state = target
		n.children = nil
		return
	}
	if n.state == target {
		return
	}
	if n.state != Partitioned {
		n.partition()
	}

	half := size / 2
	idx, child := octant(origin, half, c)
	n.children[idx].set(child, half, c, target)
	n.merge()
}

// partition разбивает однородную ячейку на 8 октантов того же состояния
func (n *node) partition() {
	children := &[8]node{}
	for i := range children {
		children[i].state = n.state
	}
	n.children = children
	n.state = Partitioned
}

// merge схлопывает октанты, если все они в одном однородном состоянии
func (n *node) merge() {
	first := n.children[0].state
	if first == Partitioned {
		return
	}
	for i := 1; i < 8; i++ {
		if n.children[i].state != first {
			return
		}
	}
	n.state = first
	n.children = nil
}

func (n *node) anyIn(origin vec.Vec3, size int, b vec.Box3) bool {
	if n.state == Empty {
		return false
	}
	if !vec.CubeBox(origin, size).Intersects(b) {
		return false
	}
	if n.state == Full {
		return true
	}
	half := size / 2
	for i := range n.children {
		if n.children[i].anyIn(childOrigin(origin, half, i), half, b) {
			return true
		}
	}
	return false
}

func (n *node) count() int {
	total := 1
	if n.children != nil {
		for i := range n.children {
			total += n.children[i].count()
		}
	}
	return total
}
