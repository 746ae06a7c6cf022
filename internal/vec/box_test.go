package vec

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestBox3_ExtendFromEmpty(t *testing.T) {
	b := EmptyBox()
	assert.True(t, b.IsEmpty(), "Новый бокс должен быть пустым")
	assert.Equal(t, 0, b.Volume())

	b = b.Extend(Vec3{X: 2, Y: -1, Z: 0})
	assert.Equal(t, PointBox(Vec3{X: 2, Y: -1, Z: 0}), b)

	b = b.Extend(Vec3{X: -3, Y: 4, Z: 1})
	assert.Equal(t, Vec3{X: -3, Y: -1, Z: 0}, b.Min)
	assert.Equal(t, Vec3{X: 2, Y: 4, Z: 1}, b.Max)
	assert.Equal(t, Vec3{X: 6, Y: 6, Z: 2}, b.Size())
	assert.Equal(t, 72, b.Volume())
}

func TestBox3_ContainsAndIntersects(t *testing.T) {
	a := Box3{Min: Vec3{X: 0, Y: 0, Z: 0}, Max: Vec3{X: 3, Y: 3, Z: 3}}
	b := Box3{Min: Vec3{X: 3, Y: 3, Z: 3}, Max: Vec3{X: 5, Y: 5, Z: 5}}
	c := Box3{Min: Vec3{X: 4, Y: 0, Z: 0}, Max: Vec3{X: 5, Y: 1, Z: 1}}

	assert.True(t, a.Contains(Vec3{X: 3, Y: 0, Z: 2}))
	assert.False(t, a.Contains(Vec3{X: 4, Y: 0, Z: 2}))
	assert.True(t, a.Intersects(b), "Общая угловая ячейка считается пересечением")
	assert.False(t, a.Intersects(c))
	assert.False(t, a.Intersects(EmptyBox()))
}

func TestBox3_Bounds(t *testing.T) {
	b := Box3{Min: Vec3{X: -1, Y: 0, Z: 2}, Max: Vec3{X: 1, Y: 0, Z: 2}}
	f := b.Bounds()
	assert.Equal(t, mgl64.Vec3{-1.5, -0.5, 1.5}, f.Min)
	assert.Equal(t, mgl64.Vec3{1.5, 0.5, 2.5}, f.Max)
	assert.True(t, EmptyBox().Bounds().IsEmpty())
}

func TestBoxF_OverlapsStrict(t *testing.T) {
	a := BoxF{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	touching := BoxF{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}
	inside := BoxF{Min: mgl64.Vec3{0.25, 0.25, 0.25}, Max: mgl64.Vec3{0.75, 0.75, 0.75}}

	assert.False(t, a.Overlaps(touching), "Касание гранями не является пересечением")
	assert.False(t, touching.Overlaps(a))
	assert.True(t, a.Overlaps(inside))
	assert.True(t, inside.Overlaps(a))
	assert.False(t, a.Overlaps(EmptyBoxF()))
}

func TestBoxF_TouchesInclusive(t *testing.T) {
	a := BoxF{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	touching := BoxF{Min: mgl64.Vec3{1, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}
	flat := EmptyBoxF().ExtendPoint(mgl64.Vec3{-5, 0, 0.5}).ExtendPoint(mgl64.Vec3{5, 0, 0.5})
	apart := BoxF{Min: mgl64.Vec3{1.01, 0, 0}, Max: mgl64.Vec3{2, 1, 1}}

	assert.True(t, a.Touches(touching))
	assert.True(t, a.Touches(flat), "Вырожденный бокс на грани касается")
	assert.False(t, a.Overlaps(flat))
	assert.False(t, a.Touches(apart))
	assert.False(t, a.Touches(EmptyBoxF()))
}

func TestBoxF_TransformRotated(t *testing.T) {
	b := BoxF{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}
	m := Translate(mgl64.Vec3{10, 0, 0}).Mul4(mgl64.HomogRotate3DZ(math.Pi / 4))
	out := b.Transform(m)

	r := math.Sqrt2
	assert.InDelta(t, 10-r, out.Min[0], 1e-9)
	assert.InDelta(t, 10+r, out.Max[0], 1e-9)
	assert.InDelta(t, -r, out.Min[1], 1e-9)
	assert.InDelta(t, 1, out.Max[2], 1e-9)
}

func TestSegment_Transform(t *testing.T) {
	s := Segment{Start: mgl64.Vec3{0, 0, 0}, End: mgl64.Vec3{2, 0, 0}}
	m := Translate(mgl64.Vec3{0, 5, 0})
	out := s.Transform(m)

	assert.Equal(t, mgl64.Vec3{0, 5, 0}, out.Start)
	assert.Equal(t, mgl64.Vec3{2, 5, 0}, out.End)
	assert.InDelta(t, 2, out.Length(), 1e-12)
	assert.Equal(t, mgl64.Vec3{1, 5, 0}, out.PointAt(0.5))
}

func TestVec3_ScanOrder(t *testing.T) {
	a := Vec3{X: 5, Y: 0, Z: 0}
	b := Vec3{X: 0, Y: 1, Z: 0}
	c := Vec3{X: 0, Y: 0, Z: 1}

	assert.True(t, a.Less(b), "Y важнее X")
	assert.True(t, b.Less(c), "Z важнее Y")
	assert.False(t, c.Less(a))
}
