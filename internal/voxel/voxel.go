package voxel

import "fmt"

// Voxel: единичный блок структуры: тип и оставшаяся прочность
type Voxel struct {
	Kind Kind    `json:"kind"`
	Life float64 `json:"life"`
}

// New создаёт воксель с максимальной прочностью его типа.
// Незарегистрированный тип: ошибка программиста, поэтому паника.
func New(kind Kind) Voxel {
	info, exists := Lookup(kind)
	if !exists {
		panic(fmt.Sprintf("voxel.New: %v: %d", ErrUnknownKind, kind))
	}
	return Voxel{Kind: kind, Life: info.MaxLife}
}

// Damage уменьшает прочность на amount
func (v *Voxel) Damage(amount float64) {
	v.Life -= amount
}

// Dead возвращает true, если прочность исчерпана
func (v Voxel) Dead() bool {
	return v.Life <= 0
}

// LifeFraction возвращает долю оставшейся прочности в диапазоне [0,1] (для отрисовки)
func (v Voxel) LifeFraction() float64 {
	info, exists := Lookup(v.Kind)
	if !exists || info.MaxLife <= 0 {
		return 0
	}
	f := v.Life / info.MaxLife
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

