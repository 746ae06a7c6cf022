package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина
const (
	noiseAlpha   = 2.0 // Сглаживание шума
	noiseBeta    = 2.0 // Частота шума
	noiseOctaves = 3   // Количество октав
)

// Noise: детерминированный генератор шума Перлина для одного сида
type Noise struct {
	seed   int64
	perlin *perlin.Perlin
}

// NewNoise создаёт генератор шума с указанным сидом
func NewNoise(seed int64) *Noise {
	return &Noise{
		seed:   seed,
		perlin: perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
	}
}

// Seed возвращает сид генератора
func (n *Noise) Seed() int64 {
	return n.seed
}

// Sample2D возвращает значение шума для указанных координат (от 0 до 1)
func (n *Noise) Sample2D(x, y float64) float64 {
	return normalize(n.perlin.Noise2D(x, y))
}

// Sample3D возвращает значение трёхмерного шума (от 0 до 1)
func (n *Noise) Sample3D(x, y, z float64) float64 {
	return normalize(n.perlin.Noise3D(x, y, z))
}

// normalize переводит шум из [-1, 1] в [0, 1] с отсечением выбросов
func normalize(v float64) float64 {
	v = (v + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
