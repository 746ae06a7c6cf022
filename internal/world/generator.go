package world

import (
	"math"

	"github.com/annel0/voxel-battle/internal/structure"
	"github.com/annel0/voxel-battle/internal/util"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/annel0/voxel-battle/internal/voxel"
)

// Пороги генерации обломков
const (
	IceShellStart = 0.75 // Доля радиуса, начиная с которой может появиться лёд
	IceNoiseMin   = 0.55 // Значение шума, выше которого во внешнем слое лёд
)

// DebrisGenerator строит структуры обломков на шуме Перлина
type DebrisGenerator struct {
	Seed       int64   // Сид для генерации шума
	NoiseScale float64 // Масштаб шума поверхности
	Roughness  float64 // Амплитуда неровностей относительно радиуса (от 0 до 1)

	noise *util.Noise
}

// NewDebrisGenerator создаёт генератор с настройками по умолчанию
func NewDebrisGenerator(seed int64) *DebrisGenerator {
	return &DebrisGenerator{
		Seed:       seed,
		NoiseScale: 0.35,
		Roughness:  0.3,
		noise:      util.NewNoise(seed),
	}
}

// Asteroid строит каменный астероид радиуса radius с неровной поверхностью и
// ледяной коркой. Результат связен и всегда содержит якорь (0,0,0).
func (g *DebrisGenerator) Asteroid(radius int) *structure.Structure {
	if radius < 0 {
		radius = 0
	}
	r := float64(radius)
	limit := int(math.Ceil(r * (1 + g.Roughness)))

	raw := structure.New()
	raw.AddVoxel(vec.Zero, voxel.New(voxel.RockKind))

	for z := -limit; z <= limit; z++ {
		for y := -limit; y <= limit; y++ {
			for x := -limit; x <= limit; x++ {
				c := vec.Vec3{X: x, Y: y, Z: z}
				dist := math.Sqrt(c.DistanceTo(vec.Zero))

				n := g.noise.Sample3D(float64(x)*g.NoiseScale, float64(y)*g.NoiseScale, float64(z)*g.NoiseScale)
				surface := r * (1 + g.Roughness*(2*n-1))
				if dist > surface {
					continue
				}

				kind := voxel.RockKind
				if dist >= r*IceShellStart && n > IceNoiseMin {
					kind = voxel.IceKind
				}
				raw.AddVoxel(c, voxel.New(kind))
			}
		}
	}

	// Оставляем только часть, связную с якорем
	components := raw.ConnectedComponents([]vec.Vec3{vec.Zero})
	return raw.Extract(components[0], vec.Zero)
}

// Block строит сплошной параллелепипед размера size с центром в якоре
func (g *DebrisGenerator) Block(size vec.Vec3, kind voxel.Kind) *structure.Structure {
	return Block(size, kind)
}

// Block строит сплошной параллелепипед размера size с центром в якоре
func Block(size vec.Vec3, kind voxel.Kind) *structure.Structure {
	s := structure.New()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return s
	}
	lo := vec.Vec3{X: -size.X / 2, Y: -size.Y / 2, Z: -size.Z / 2}
	hi := lo.Add(size).Sub(vec.Vec3{X: 1, Y: 1, Z: 1})
	for z := lo.Z; z <= hi.Z; z++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for x := lo.X; x <= hi.X; x++ {
				s.AddVoxel(vec.Vec3{X: x, Y: y, Z: z}, voxel.New(kind))
			}
		}
	}
	return s
}
