package structure

import (
	"slices"

	"github.com/annel0/voxel-battle/internal/octree"
	"github.com/annel0/voxel-battle/internal/vec"
)

// ConnectedComponents разбивает занятые ячейки, достижимые из seeds, на
// компоненты 6-связности. Обход в ширину по явной очереди. Каждая компонента
// отсортирована в порядке сканирования; компоненты идут в порядке первых seeds.
// Пустые и уже посещённые seeds пропускаются.
func (s *Structure) ConnectedComponents(seeds []vec.Vec3) [][]vec.Vec3 {
	visited := make(map[vec.Vec3]struct{})
	var components [][]vec.Vec3

	for _, seed := range seeds {
		if _, seen := visited[seed]; seen {
			continue
		}
		if _, ok := s.Lookup(seed); !ok {
			continue
		}

		visited[seed] = struct{}{}
		queue := []vec.Vec3{seed}
		var component []vec.Vec3

		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			component = append(component, c)

			for _, d := range vec.Neighbors6 {
				n := c.Add(d)
				if _, seen := visited[n]; seen {
					continue
				}
				if _, ok := s.Lookup(n); !ok {
					continue
				}
				visited[n] = struct{}{}
				queue = append(queue, n)
			}
		}

		slices.SortFunc(component, compareScan)
		components = append(components, component)
	}
	return components
}

// OccupiedNeighbors возвращает занятых соседей по граням для набора ячеек без повторов
func (s *Structure) OccupiedNeighbors(coords []vec.Vec3) []vec.Vec3 {
	seen := make(map[vec.Vec3]struct{})
	var out []vec.Vec3
	for _, c := range coords {
		for _, d := range vec.Neighbors6 {
			n := c.Add(d)
			if _, dup := seen[n]; dup {
				continue
			}
			if _, ok := s.Lookup(n); !ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// Extract переносит воксели coords в новую структуру, локальное начало которой
// совпадает с anchor. Из исходной структуры воксели удаляются.
func (s *Structure) Extract(coords []vec.Vec3, anchor vec.Vec3) *Structure {
	box := vec.EmptyBox()
	for _, c := range coords {
		box = box.Extend(c.Sub(anchor))
	}
	out := New()
	out.index = octree.NewCovering(box)
	for _, c := range coords {
		v := s.Voxel(c)
		if v == nil {
			continue
		}
		out.AddVoxel(c.Sub(anchor), *v)
		s.RemoveVoxel(c)
	}
	return out
}

func compareScan(a, b vec.Vec3) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
