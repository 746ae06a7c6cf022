package main

import (
	"context"
	"testing"

	"github.com/annel0/voxel-battle/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDemoScene_Runs(t *testing.T) {
	w := world.New(world.DefaultConfig())
	BuildDemoScene(w, 3)

	require.Len(t, w.Bodies(), 3)
	assert.Len(t, w.Projectiles(), volleySize)

	var hits, collisions int
	for i := 0; i < 300; i++ {
		report, err := w.Step(context.Background(), 1.0/30)
		require.NoError(t, err)
		hits += report.Hits
		collisions += report.Collisions
	}
	assert.Greater(t, hits, 0, "Залп попадает в астероид")
	assert.Greater(t, collisions, 0, "Корабли сталкиваются")
}
