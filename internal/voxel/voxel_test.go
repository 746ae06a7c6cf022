package voxel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UsesMaxLife(t *testing.T) {
	v := New(ArmorKind)
	assert.Equal(t, ArmorKind, v.Kind)
	assert.Equal(t, 40.0, v.Life, "Воксель создается с максимальной прочностью типа")
	assert.Equal(t, 1.0, v.LifeFraction())
	assert.False(t, v.Dead())
}

func TestNew_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() { New(Kind(9999)) })
}

func TestVoxel_DamageUntilDead(t *testing.T) {
	v := New(HullKind)

	v.Damage(4)
	assert.InDelta(t, 0.6, v.LifeFraction(), 1e-12)
	assert.False(t, v.Dead())

	v.Damage(6)
	assert.True(t, v.Dead(), "Прочность 0 означает разрушение")

	v.Damage(5)
	assert.Equal(t, 0.0, v.LifeFraction(), "Доля прочности не уходит ниже нуля")
}

func TestKinds_SortedByID(t *testing.T) {
	kinds := Kinds()
	require.NotEmpty(t, kinds)
	for i := 1; i < len(kinds); i++ {
		assert.True(t, kinds[i-1].ID < kinds[i].ID, "Типы должны идти по возрастанию ID")
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kinds.yaml")
	content := `
kinds:
  - id: 200
    name: Shield
    max_life: 120
    mass: 4
  - id: 201
    name: Glass
    max_life: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	n, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	info, ok := Lookup(200)
	require.True(t, ok, "Тип Shield должен быть зарегистрирован")
	assert.Equal(t, "Shield", info.Name)
	assert.Equal(t, 120.0, New(200).Life)

	glass, ok := Lookup(201)
	require.True(t, ok)
	assert.Equal(t, 1.0, glass.Mass, "Масса по умолчанию равна единице")
}

func TestParseCatalog_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "нулевой id", content: "kinds:\n  - id: 0\n    max_life: 3\n"},
		{name: "нулевая прочность", content: "kinds:\n  - id: 300\n    max_life: 0\n"},
		{name: "битый yaml", content: "kinds: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.content))
			assert.Error(t, err)
		})
	}
	assert.False(t, IsValidKind(300), "Невалидный каталог не регистрируется частично")
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
