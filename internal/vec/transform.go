package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Единичные оси локального пространства: крен вокруг X, тангаж вокруг Y, рыскание вокруг Z
var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

// TransformPoint применяет матрицу к точке (w = 1)
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection применяет матрицу к направлению (w = 0, без переноса)
func TransformDirection(m mgl64.Mat4, d mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// Translation возвращает перенос матрицы (позицию тела в мире)
func Translation(m mgl64.Mat4) mgl64.Vec3 {
	return m.Col(3).Vec3()
}

// LocalAxes возвращает три локальные оси матрицы в мировом пространстве
func LocalAxes(m mgl64.Mat4) [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
}

// Translate возвращает матрицу переноса на вектор v
func Translate(v mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(v[0], v[1], v[2])
}

// Normalize возвращает единичный вектор или нулевой, если длина почти нулевая
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// ApproxEqual сравнивает векторы с допуском eps
func ApproxEqual(a, b mgl64.Vec3, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
