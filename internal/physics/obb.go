// Package physics содержит твердые тела из вокселей: кинематику, попадания,
// раскол после повреждений, поиск пересекающихся пар вокселей и отклик на
// столкновение.
package physics

import (
	"math"

	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// AxisCount: число кандидатов в разделяющие оси для двух боксов
const AxisCount = 15

// BoxesProjectionAxes возвращает 15 кандидатов в разделяющие оси: три локальные
// оси a, три локальные оси b и девять их попарных векторных произведений.
// Оси нормированы; вырожденные произведения (параллельные оси) нулевые.
func BoxesProjectionAxes(a, b mgl64.Mat4) [AxisCount]mgl64.Vec3 {
	var axes [AxisCount]mgl64.Vec3
	aa := vec.LocalAxes(a)
	ba := vec.LocalAxes(b)

	for i := 0; i < 3; i++ {
		axes[i] = vec.Normalize(aa[i])
		axes[3+i] = vec.Normalize(ba[i])
	}
	n := 6
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axes[n] = vec.Normalize(aa[i].Cross(ba[j]))
			n++
		}
	}
	return axes
}

// OBBIntersect проверяет пересечение двух ориентированных боксов теоремой о
// разделяющей оси. Боксы заданы в локальных пространствах и переводятся в мир
// матрицами ta и tb. Касание пересечением не считается; нулевая ось не разделяет.
func OBBIntersect(boxA vec.BoxF, ta mgl64.Mat4, boxB vec.BoxF, tb mgl64.Mat4) bool {
	if boxA.IsEmpty() || boxB.IsEmpty() {
		return false
	}

	var cornersA, cornersB [8]mgl64.Vec3
	for i, c := range boxA.Corners() {
		cornersA[i] = vec.TransformPoint(ta, c)
	}
	for i, c := range boxB.Corners() {
		cornersB[i] = vec.TransformPoint(tb, c)
	}

	for _, axis := range BoxesProjectionAxes(ta, tb) {
		if axis == (mgl64.Vec3{}) {
			continue
		}
		minA, maxA := project(cornersA, axis)
		minB, maxB := project(cornersB, axis)
		if maxA <= minB || maxB <= minA {
			return false
		}
	}
	return true
}

func project(corners [8]mgl64.Vec3, axis mgl64.Vec3) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range corners {
		p := c.Dot(axis)
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	return lo, hi
}
