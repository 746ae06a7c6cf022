package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box3: целочисленный параллелепипед решетки, границы включительно.
// Пустой бокс имеет Min > Max хотя бы по одной оси.
type Box3 struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// EmptyBox возвращает бокс, не содержащий ни одной ячейки
func EmptyBox() Box3 {
	return Box3{Min: Vec3{X: 1, Y: 1, Z: 1}, Max: Vec3{}}
}

// PointBox возвращает бокс из одной ячейки
func PointBox(p Vec3) Box3 {
	return Box3{Min: p, Max: p}
}

// CubeBox возвращает куб с углом origin и ребром size
func CubeBox(origin Vec3, size int) Box3 {
	return Box3{Min: origin, Max: origin.Add(Vec3{X: size - 1, Y: size - 1, Z: size - 1})}
}

// IsEmpty проверяет, что бокс пуст
func (b Box3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Size возвращает число ячеек по каждой оси
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return Vec3{
		X: b.Max.X - b.Min.X + 1,
		Y: b.Max.Y - b.Min.Y + 1,
		Z: b.Max.Z - b.Min.Z + 1,
	}
}

// Volume возвращает число ячеек в боксе
func (b Box3) Volume() int {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Contains проверяет принадлежность ячейки боксу
func (b Box3) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Extend возвращает минимальный бокс, содержащий b и p
func (b Box3) Extend(p Vec3) Box3 {
	if b.IsEmpty() {
		return PointBox(p)
	}
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union возвращает минимальный бокс, содержащий оба бокса
func (b Box3) Union(other Box3) Box3 {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return Box3{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Intersects проверяет наличие общих ячеек
func (b Box3) Intersects(other Box3) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return b.Min.X <= other.Max.X && other.Min.X <= b.Max.X &&
		b.Min.Y <= other.Max.Y && other.Min.Y <= b.Max.Y &&
		b.Min.Z <= other.Max.Z && other.Min.Z <= b.Max.Z
}

// Bounds возвращает занимаемый ячейками объем в локальном пространстве.
// Ячейка (i,j,k) покрывает [i-0.5, i+0.5) по каждой оси.
func (b Box3) Bounds() BoxF {
	if b.IsEmpty() {
		return EmptyBoxF()
	}
	return BoxF{
		Min: mgl64.Vec3{float64(b.Min.X) - 0.5, float64(b.Min.Y) - 0.5, float64(b.Min.Z) - 0.5},
		Max: mgl64.Vec3{float64(b.Max.X) + 0.5, float64(b.Max.Y) + 0.5, float64(b.Max.Z) + 0.5},
	}
}

// BoxF: ось-ориентированный бокс с плавающими координатами
type BoxF struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// EmptyBoxF возвращает пустой бокс, пригодный для накопления точек через ExtendPoint
func EmptyBoxF() BoxF {
	inf := math.Inf(1)
	return BoxF{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty проверяет, что бокс пуст
func (b BoxF) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// ExtendPoint расширяет бокс до точки p
func (b BoxF) ExtendPoint(p mgl64.Vec3) BoxF {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
	return b
}

// Overlaps проверяет строгое пересечение. Касание гранями пересечением не считается.
func (b BoxF) Overlaps(other BoxF) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	for i := 0; i < 3; i++ {
		if b.Max[i] <= other.Min[i] || other.Max[i] <= b.Min[i] {
			return false
		}
	}
	return true
}

// Touches проверяет нестрогое пересечение: общая грань или ребро тоже считаются.
// Нужна для вырожденных боксов, например бокса осевого отрезка.
func (b BoxF) Touches(other BoxF) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	for i := 0; i < 3; i++ {
		if b.Max[i] < other.Min[i] || other.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Center возвращает центр бокса
func (b BoxF) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Corners возвращает восемь вершин бокса
func (b BoxF) Corners() [8]mgl64.Vec3 {
	var corners [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		corners[i] = c
	}
	return corners
}

// Transform переводит бокс в другую систему координат и возвращает его AABB
func (b BoxF) Transform(m mgl64.Mat4) BoxF {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBoxF()
	for _, c := range b.Corners() {
		out = out.ExtendPoint(TransformPoint(m, c))
	}
	return out
}
