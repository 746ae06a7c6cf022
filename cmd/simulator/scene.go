package main

import (
	"github.com/annel0/voxel-battle/internal/physics"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/annel0/voxel-battle/internal/voxel"
	"github.com/annel0/voxel-battle/internal/world"
	"github.com/go-gl/mathgl/mgl64"
)

// Параметры демо-сцены
const (
	shipSize       = 4
	shipSpeed      = 3.0
	asteroidRadius = 5
	volleySize     = 6
	volleySpeed    = 40.0
	volleyDamage   = 12.0
)

// BuildDemoScene добавляет в мир два корабля на встречном курсе, астероид и залп снарядов
func BuildDemoScene(w *world.World, seed int64) {
	gen := world.NewDebrisGenerator(seed)

	left := physics.NewBodyAt(gen.Block(vec.Vec3{X: shipSize, Y: shipSize, Z: shipSize}, voxel.HullKind), mgl64.Vec3{-12, 0, 0})
	left.Velocity = mgl64.Vec3{shipSpeed, 0, 0}
	left.Rotation = physics.Rotation{Yaw: 0.1}

	right := physics.NewBodyAt(gen.Block(vec.Vec3{X: shipSize, Y: shipSize, Z: shipSize}, voxel.ArmorKind), mgl64.Vec3{12, 0.5, 0})
	right.Velocity = mgl64.Vec3{-shipSpeed, 0, 0}

	asteroid := physics.NewBodyAt(gen.Asteroid(asteroidRadius), mgl64.Vec3{0, 18, 0})
	asteroid.Velocity = mgl64.Vec3{0, -1.5, 0}
	asteroid.Rotation = physics.Rotation{Roll: 0.2, Pitch: -0.1}

	w.AddBody(left)
	w.AddBody(right)
	w.AddBody(asteroid)

	// Залп по астероиду снизу, веером по X
	for i := 0; i < volleySize; i++ {
		x := float64(i-volleySize/2) * 1.5
		w.Fire(world.Projectile{
			Position: mgl64.Vec3{x, -20, 0.25},
			Velocity: mgl64.Vec3{0, volleySpeed, 0},
			Damage:   volleyDamage,
		})
	}
}
