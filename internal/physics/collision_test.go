package physics

import (
	"math/rand"
	"testing"

	"github.com/annel0/voxel-battle/internal/structure"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/annel0/voxel-battle/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomStructure(rng *rand.Rand, r int, fill float64) *structure.Structure {
	s := structure.New()
	s.AddVoxel(vec.Zero, voxel.New(voxel.HullKind))
	for z := -r; z <= r; z++ {
		for y := -r; y <= r; y++ {
			for x := -r; x <= r; x++ {
				if rng.Float64() < fill {
					s.AddVoxel(vec.Vec3{X: x, Y: y, Z: z}, voxel.New(voxel.HullKind))
				}
			}
		}
	}
	return s
}

// bruteForcePairs проверяет все пары вокселей напрямую
func bruteForcePairs(a, b *Body) []Pair {
	var pairs []Pair
	unit := vec.PointBox(vec.Zero).Bounds()
	for ca := range a.Structure().Voxels() {
		ta := a.Repere.Mul4(vec.Translate(ca.Float()))
		for cb := range b.Structure().Voxels() {
			tb := b.Repere.Mul4(vec.Translate(cb.Float()))
			if OBBIntersect(unit, ta, unit, tb) {
				pairs = append(pairs, Pair{A: ca, B: cb})
			}
		}
	}
	return pairs
}

func TestVoxelPairIntersections_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(21))

	total := 0
	for i := 0; i < 60; i++ {
		a := NewBody(randomStructure(rng, 2, 0.5), randomRepere(rng, 1))
		b := NewBody(randomStructure(rng, 2, 0.5), randomRepere(rng, 3))

		got := VoxelPairIntersections(a, b)
		want := bruteForcePairs(a, b)
		require.ElementsMatch(t, want, got, "Итерация %d", i)
		total += len(got)
	}
	assert.Greater(t, total, 0, "Выборка должна содержать столкновения")
}

func TestVoxelPairIntersections_SkipsEmptyCells(t *testing.T) {
	// Бокс структуры с дыркой в центре: пересечение боксов есть, вокселей нет
	s := cube(1)
	s.RemoveVoxel(vec.Zero)
	a := NewBodyAt(s, mgl64.Vec3{})
	b := NewBodyAt(bar(0, 0), mgl64.Vec3{})

	assert.Empty(t, VoxelPairIntersections(a, b))

	b.Repere = vec.Translate(mgl64.Vec3{0.7, 0, 0})
	assert.Equal(t, []Pair{{A: vec.Vec3{X: 1}, B: vec.Zero}}, VoxelPairIntersections(a, b))
}

func TestVoxelPairIntersections_Separated(t *testing.T) {
	a := NewBodyAt(cube(1), mgl64.Vec3{-2, 0, 0})
	b := NewBodyAt(cube(1), mgl64.Vec3{2, 0, 0})
	assert.Empty(t, VoxelPairIntersections(a, b))

	b.Repere = vec.Translate(mgl64.Vec3{1, 0, 0})
	assert.Empty(t, VoxelPairIntersections(a, b), "Касание гранями не считается пересечением")
}

func TestApplyCollision_ElasticSwap(t *testing.T) {
	a := NewBodyAt(cube(1), mgl64.Vec3{-1.2, 0, 0})
	b := NewBodyAt(cube(1), mgl64.Vec3{1.2, 0, 0})
	a.Velocity = mgl64.Vec3{1, 0, 0}

	require.NotEmpty(t, VoxelPairIntersections(a, b))
	require.True(t, ApplyCollision(a, b, 1.0))

	assert.Equal(t, mgl64.Vec3{0, 0, 0}, a.Velocity, "Равные массы обмениваются скоростями")
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, b.Velocity)
}

func TestApplyCollision_NoContact(t *testing.T) {
	a := NewBodyAt(cube(1), mgl64.Vec3{-5, 0, 0})
	b := NewBodyAt(cube(1), mgl64.Vec3{5, 0, 0})
	a.Velocity = mgl64.Vec3{1, 0, 0}

	assert.False(t, ApplyCollision(a, b, 1.0))
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, a.Velocity)
	assert.Equal(t, mgl64.Vec3{}, b.Velocity)
}

func TestResolveVelocities_ConservesMomentum(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	randVec := func() mgl64.Vec3 {
		return mgl64.Vec3{rng.Float64()*10 - 5, rng.Float64()*10 - 5, rng.Float64()*10 - 5}
	}

	for i := 0; i < 200; i++ {
		ma := 1 + rng.Float64()*100
		mb := 1 + rng.Float64()*100
		va, vb := randVec(), randVec()
		e := rng.Float64()

		na, nb := ResolveVelocities(ma, va, mb, vb, e)
		before := va.Mul(ma).Add(vb.Mul(mb))
		after := na.Mul(ma).Add(nb.Mul(mb))
		require.True(t, vec.ApproxEqual(before, after, 1e-9), "Импульс не сохранился: %v -> %v", before, after)
	}
}

func TestResolveVelocities_Inelastic(t *testing.T) {
	na, nb := ResolveVelocities(1, mgl64.Vec3{3, 0, 0}, 2, mgl64.Vec3{0, 0, 0}, 0)
	assert.True(t, vec.ApproxEqual(na, nb, 1e-12), "При e=0 тела движутся вместе")
	assert.True(t, vec.ApproxEqual(mgl64.Vec3{1, 0, 0}, na, 1e-12))
}
