package structure

import (
	"math/rand"
	"testing"

	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/annel0/voxel-battle/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillBox(s *Structure, b vec.Box3, kind voxel.Kind) {
	for z := b.Min.Z; z <= b.Max.Z; z++ {
		for y := b.Min.Y; y <= b.Max.Y; y++ {
			for x := b.Min.X; x <= b.Max.X; x++ {
				s.AddVoxel(vec.Vec3{X: x, Y: y, Z: z}, voxel.New(kind))
			}
		}
	}
}

func TestStructure_GrowthKeepsVoxels(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New()
	inserted := make(map[vec.Vec3]voxel.Voxel)
	want := vec.EmptyBox()

	for i := 0; i < 300; i++ {
		c := vec.Vec3{X: rng.Intn(21) - 10, Y: rng.Intn(15) - 7, Z: rng.Intn(11) - 5}
		v := voxel.Voxel{Kind: voxel.HullKind, Life: float64(i + 1)}
		s.AddVoxel(c, v)
		inserted[c] = v
		want = want.Extend(c)

		require.Equal(t, want, s.Box(), "Бокс должен быть минимальным после вставки %+v", c)
	}

	assert.Equal(t, len(inserted), s.Count())
	for c, v := range inserted {
		got := s.Voxel(c)
		require.NotNil(t, got, "Воксель %+v потерян при росте", c)
		assert.Equal(t, v, *got)
	}
}

func TestStructure_RemoveDoesNotShrink(t *testing.T) {
	s := New()
	s.AddVoxel(vec.Vec3{X: -3}, voxel.New(voxel.HullKind))
	s.AddVoxel(vec.Vec3{X: 5, Y: 2}, voxel.New(voxel.HullKind))
	box := s.Box()

	assert.True(t, s.RemoveVoxel(vec.Vec3{X: 5, Y: 2}))
	assert.False(t, s.RemoveVoxel(vec.Vec3{X: 5, Y: 2}), "Повторное удаление ничего не меняет")
	assert.Equal(t, box, s.Box(), "Удаление не сжимает бокс")

	s.RecalculateBox()
	assert.Equal(t, vec.PointBox(vec.Vec3{X: -3}), s.Box())
	assert.True(t, s.HasVoxel(vec.Vec3{X: -3}))

	s.RemoveVoxel(vec.Vec3{X: -3})
	s.RecalculateBox()
	assert.True(t, s.Box().IsEmpty())
	assert.True(t, s.IsEmpty())
}

func TestStructure_OutOfBoxPanics(t *testing.T) {
	s := New()
	s.AddVoxel(vec.Vec3{}, voxel.New(voxel.HullKind))

	outside := vec.Vec3{X: 1}
	assert.Panics(t, func() { s.Voxel(outside) })
	assert.Panics(t, func() { s.HasVoxel(outside) })
	assert.Panics(t, func() { s.RemoveVoxel(outside) })

	_, ok := s.Lookup(outside)
	assert.False(t, ok, "Lookup не требует проверки границ")
}

func TestStructure_OctreeConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	s := New()

	for i := 0; i < 4000; i++ {
		c := vec.Vec3{X: rng.Intn(11) - 5, Y: rng.Intn(11) - 5, Z: rng.Intn(7) - 3}
		if rng.Intn(3) == 0 && s.Contains(c) {
			s.RemoveVoxel(c)
		} else {
			s.AddVoxel(c, voxel.New(voxel.RockKind))
		}
		if i%500 == 0 {
			s.RecalculateBox()
		}
	}

	box := s.Box()
	for z := -7; z <= 7; z++ {
		for y := -7; y <= 7; y++ {
			for x := -7; x <= 7; x++ {
				c := vec.Vec3{X: x, Y: y, Z: z}
				_, want := s.Lookup(c)
				require.Equal(t, want, s.IndexHasVoxel(c), "Индекс разошёлся с решеткой в %+v", c)
				if box.Contains(c) {
					require.Equal(t, want, s.HasVoxel(c))
				}
			}
		}
	}
}

func TestStructure_VoxelsScanOrder(t *testing.T) {
	s := New()
	fillBox(s, vec.Box3{Min: vec.Vec3{X: -1, Y: -1, Z: -1}, Max: vec.Vec3{X: 1, Y: 1, Z: 1}}, voxel.HullKind)
	s.RemoveVoxel(vec.Vec3{})

	var prev *vec.Vec3
	n := 0
	for c := range s.Voxels() {
		if prev != nil {
			require.True(t, prev.Less(c), "Порядок %+v -> %+v нарушен", *prev, c)
		}
		cc := c
		prev = &cc
		n++
	}
	assert.Equal(t, 26, n)

	// Последовательность перезапускается и поддерживает ранний выход
	first := 0
	for range s.Voxels() {
		first++
		break
	}
	assert.Equal(t, 1, first)
	assert.Len(t, s.Coords(), 26)
}

func sevenCellStructure() *Structure {
	s := New()
	fillBox(s, vec.Box3{Min: vec.Vec3{X: -2, Y: -1, Z: -1}, Max: vec.Vec3{X: 4, Y: 1, Z: 0}}, voxel.HullKind)
	return s
}

func TestTraverse_SevenCells(t *testing.T) {
	s := sevenCellStructure()
	seg := vec.Segment{Start: mgl64.Vec3{-10, 0, 0}, End: mgl64.Vec3{10, 0, 0}}

	var visited []vec.Vec3
	n := s.ForAllVoxels(seg, func(c Crossing, v *voxel.Voxel) {
		visited = append(visited, c.Coord)
	})

	expected := []vec.Vec3{{X: -2}, {X: -1}, {X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}}
	assert.Equal(t, 7, n)
	assert.Equal(t, expected, visited, "Отрезок проходит ровно 7 ячеек по возрастанию X")
}

func TestTraverse_FirstVoxelStops(t *testing.T) {
	s := sevenCellStructure()
	seg := vec.Segment{Start: mgl64.Vec3{-10, 0, 0}, End: mgl64.Vec3{10, 0, 0}}

	calls := 0
	var hit Crossing
	ok := s.ForFirstVoxel(seg, func(c Crossing, v *voxel.Voxel) {
		calls++
		hit = c
	})

	require.True(t, ok)
	assert.Equal(t, 1, calls, "Обход останавливается на первом вокселе")
	assert.Equal(t, vec.Vec3{X: -2}, hit.Coord)
	assert.Equal(t, vec.Vec3{X: -1}, hit.Normal, "Вход через грань -X")
	assert.InDelta(t, 0.375, hit.T, 1e-12)

	miss := vec.Segment{Start: mgl64.Vec3{-10, 5, 0}, End: mgl64.Vec3{10, 5, 0}}
	assert.False(t, s.ForFirstVoxel(miss, func(Crossing, *voxel.Voxel) { calls++ }))
	assert.Equal(t, 1, calls)
}

func TestTraverse_ReverseDirection(t *testing.T) {
	s := sevenCellStructure()
	seg := vec.Segment{Start: mgl64.Vec3{10, 0, 0}, End: mgl64.Vec3{-10, 0, 0}}

	var visited []int
	s.ForAllVoxels(seg, func(c Crossing, v *voxel.Voxel) {
		visited = append(visited, c.Coord.X)
	})
	assert.Equal(t, []int{4, 3, 2, 1, 0, -1, -2}, visited)
}

func TestTraverse_EdgeCases(t *testing.T) {
	collect := func(seg vec.Segment) []vec.Vec3 {
		var cells []vec.Vec3
		TraverseSegment(seg, func(c Crossing) Action {
			cells = append(cells, c.Coord)
			return Continue
		})
		return cells
	}

	tests := []struct {
		name string
		seg  vec.Segment
		want []vec.Vec3
	}{
		{
			name: "нулевая длина",
			seg:  vec.Segment{Start: mgl64.Vec3{0.2, 0.1, -0.3}, End: mgl64.Vec3{0.2, 0.1, -0.3}},
			want: []vec.Vec3{{}},
		},
		{
			name: "только ось Y",
			seg:  vec.Segment{Start: mgl64.Vec3{0, -1, 0}, End: mgl64.Vec3{0, 1, 0}},
			want: []vec.Vec3{{Y: -1}, {}, {Y: 1}},
		},
		{
			name: "старт на границе, движение вниз",
			seg:  vec.Segment{Start: mgl64.Vec3{0.5, 0, 0}, End: mgl64.Vec3{-1, 0, 0}},
			want: []vec.Vec3{{}, {X: -1}},
		},
		{
			name: "старт на границе, движение вверх",
			seg:  vec.Segment{Start: mgl64.Vec3{0.5, 0, 0}, End: mgl64.Vec3{2, 0, 0}},
			want: []vec.Vec3{{X: 1}, {X: 2}},
		},
		{
			name: "конец на границе",
			seg:  vec.Segment{Start: mgl64.Vec3{0, 0, 0}, End: mgl64.Vec3{1.5, 0, 0}},
			want: []vec.Vec3{{}, {X: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(tt.seg))
		})
	}
}

func TestTraverse_DiagonalIsConnected(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		seg := vec.Segment{
			Start: mgl64.Vec3{rng.Float64()*20 - 10, rng.Float64()*20 - 10, rng.Float64()*20 - 10},
			End:   mgl64.Vec3{rng.Float64()*20 - 10, rng.Float64()*20 - 10, rng.Float64()*20 - 10},
		}

		var cells []Crossing
		TraverseSegment(seg, func(c Crossing) Action {
			cells = append(cells, c)
			return Continue
		})

		require.NotEmpty(t, cells)
		for j := 1; j < len(cells); j++ {
			d := cells[j].Coord.Sub(cells[j-1].Coord)
			require.Equal(t, 1.0, d.DistanceTo(vec.Zero), "Соседние ячейки обхода делят грань")
			require.Equal(t, d.Neg(), cells[j].Normal)
			require.GreaterOrEqual(t, cells[j].T, cells[j-1].T, "Параметр входа не убывает")
		}
	}
}

func TestStructure_SweepDeadVoxels(t *testing.T) {
	s := New()
	fillBox(s, vec.Box3{Max: vec.Vec3{X: 2}}, voxel.HullKind)
	s.Voxel(vec.Vec3{X: 1}).Damage(100)

	cleared := s.SweepDeadVoxels()
	assert.Equal(t, []vec.Vec3{{X: 1}}, cleared)
	assert.Equal(t, 2, s.Count())
	assert.False(t, s.HasVoxel(vec.Vec3{X: 1}))
	assert.Empty(t, s.SweepDeadVoxels(), "Повторная очистка ничего не находит")
}

func TestStructure_ConnectedComponents(t *testing.T) {
	s := New()
	fillBox(s, vec.Box3{Max: vec.Vec3{X: 6}}, voxel.HullKind)
	s.RemoveVoxel(vec.Vec3{X: 3})
	s.AddVoxel(vec.Vec3{X: 10, Y: 10}, voxel.New(voxel.HullKind))

	seeds := []vec.Vec3{{X: 2}, {X: 4}, {X: 0}, {X: 3}, {X: 10, Y: 10}}
	components := s.ConnectedComponents(seeds)

	require.Len(t, components, 3, "Посещённые и пустые затравки пропускаются")
	assert.Equal(t, []vec.Vec3{{X: 0}, {X: 1}, {X: 2}}, components[0])
	assert.Equal(t, []vec.Vec3{{X: 4}, {X: 5}, {X: 6}}, components[1])
	assert.Equal(t, []vec.Vec3{{X: 10, Y: 10}}, components[2])

	neighbors := s.OccupiedNeighbors([]vec.Vec3{{X: 3}})
	assert.ElementsMatch(t, []vec.Vec3{{X: 2}, {X: 4}}, neighbors)
}

func TestStructure_Extract(t *testing.T) {
	s := New()
	fillBox(s, vec.Box3{Max: vec.Vec3{X: 5}}, voxel.HullKind)
	s.Voxel(vec.Vec3{X: 4}).Damage(3)

	child := s.Extract([]vec.Vec3{{X: 3}, {X: 4}, {X: 5}}, vec.Vec3{X: 4})

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 3, child.Count())
	assert.True(t, child.HasVoxel(vec.Zero), "Якорь становится началом координат")
	assert.Equal(t, 7.0, child.Voxel(vec.Zero).Life, "Воксель переносится вместе с повреждениями")
	assert.Equal(t, vec.Box3{Min: vec.Vec3{X: -1}, Max: vec.Vec3{X: 1}}, child.Box())

	_, stillThere := s.Lookup(vec.Vec3{X: 4})
	assert.False(t, stillThere, "Перенос, а не копирование")
	assert.False(t, s.IndexHasVoxel(vec.Vec3{X: 4}))
	assert.True(t, child.IndexHasVoxel(vec.Vec3{X: -1}), "Октодерево осколка покрывает его бокс")
	assert.True(t, child.IndexCube().Contains(vec.Vec3{X: 1}))
}

func TestStructure_CenterOfMass(t *testing.T) {
	s := New()
	assert.Equal(t, mgl64.Vec3{}, s.CenterOfMass(), "Пустая структура")

	fillBox(s, vec.Box3{Min: vec.Vec3{X: -1}, Max: vec.Vec3{X: 3}}, voxel.HullKind)
	assert.True(t, vec.ApproxEqual(mgl64.Vec3{1, 0, 0}, s.CenterOfMass(), 1e-12))

	s.RemoveVoxel(vec.Vec3{X: 3})
	assert.True(t, vec.ApproxEqual(mgl64.Vec3{0.5, 0, 0}, s.CenterOfMass(), 1e-12))
}
