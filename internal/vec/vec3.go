package vec

import "github.com/go-gl/mathgl/mgl64"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется как координата ячейки воксельной решетки.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Zero: начало координат решетки (якорный воксель структуры)
var Zero = Vec3{}

// Шесть направлений соседства по граням в фиксированном порядке
var Neighbors6 = [6]Vec3{
	{X: -1}, {X: 1},
	{Y: -1}, {Y: 1},
	{Z: -1}, {Z: 1},
}

// DistanceTo возвращает квадрат расстояния до другого вектора
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return float64(dx*dx + dy*dy + dz*dz)
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Neg возвращает противоположный вектор
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Min возвращает покомпонентный минимум
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{X: min(v.X, other.X), Y: min(v.Y, other.Y), Z: min(v.Z, other.Z)}
}

// Max возвращает покомпонентный максимум
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{X: max(v.X, other.X), Y: max(v.Y, other.Y), Z: max(v.Z, other.Z)}
}

// IsZero проверяет, что вектор нулевой
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Axis возвращает компоненту по индексу оси (0=X, 1=Y, 2=Z)
func (v Vec3) Axis(i int) int {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithAxis возвращает копию вектора с заменённой компонентой
func (v Vec3) WithAxis(i, value int) Vec3 {
	switch i {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// Float преобразует координату ячейки в точку локального пространства (центр ячейки)
func (v Vec3) Float() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

// Less задает порядок сканирования решетки: сначала Z, затем Y, затем X
func (v Vec3) Less(other Vec3) bool {
	if v.Z != other.Z {
		return v.Z < other.Z
	}
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.X < other.X
}
