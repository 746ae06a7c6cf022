package vec

import "github.com/go-gl/mathgl/mgl64"

// Segment: отрезок прямой в трёхмерном пространстве
type Segment struct {
	Start mgl64.Vec3 `json:"start"`
	End   mgl64.Vec3 `json:"end"`
}

// Direction возвращает вектор от начала к концу (не нормализованный)
func (s Segment) Direction() mgl64.Vec3 {
	return s.End.Sub(s.Start)
}

// Length возвращает длину отрезка
func (s Segment) Length() float64 {
	return s.Direction().Len()
}

// PointAt возвращает точку при параметре t ∈ [0,1]
func (s Segment) PointAt(t float64) mgl64.Vec3 {
	return s.Start.Add(s.Direction().Mul(t))
}

// Transform переводит отрезок матрицей m
func (s Segment) Transform(m mgl64.Mat4) Segment {
	return Segment{
		Start: TransformPoint(m, s.Start),
		End:   TransformPoint(m, s.End),
	}
}
