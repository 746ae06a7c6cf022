package storage

import (
	"encoding/json"
	"fmt"

	"github.com/annel0/voxel-battle/internal/physics"
	"github.com/annel0/voxel-battle/internal/structure"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/annel0/voxel-battle/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// VoxelRecord: воксель в снимке, координата локальная
type VoxelRecord struct {
	X    int        `json:"x"`
	Y    int        `json:"y"`
	Z    int        `json:"z"`
	Kind voxel.Kind `json:"kind"`
	Life float64    `json:"life"`
}

// BodySnapshot: сериализуемое состояние тела
type BodySnapshot struct {
	ID       uuid.UUID        `json:"id"`
	Repere   mgl64.Mat4       `json:"repere"`
	Velocity mgl64.Vec3       `json:"velocity"`
	Rotation physics.Rotation `json:"rotation"`
	Voxels   []VoxelRecord    `json:"voxels"`
}

// SnapshotOf снимает состояние тела. Воксели идут в порядке обхода структуры.
func SnapshotOf(b *physics.Body) BodySnapshot {
	snap := BodySnapshot{
		ID:       b.ID,
		Repere:   b.Repere,
		Velocity: b.Velocity,
		Rotation: b.Rotation,
		Voxels:   make([]VoxelRecord, 0, b.Structure().Count()),
	}
	for c, v := range b.Structure().Voxels() {
		snap.Voxels = append(snap.Voxels, VoxelRecord{X: c.X, Y: c.Y, Z: c.Z, Kind: v.Kind, Life: v.Life})
	}
	return snap
}

// Body восстанавливает тело из снимка. Типы вокселей должны быть в каталоге.
func (s BodySnapshot) Body() (*physics.Body, error) {
	st := structure.New()
	for _, r := range s.Voxels {
		if !voxel.IsValidKind(r.Kind) {
			return nil, fmt.Errorf("тело %s, воксель (%d,%d,%d): %w: %d", s.ID, r.X, r.Y, r.Z, voxel.ErrUnknownKind, r.Kind)
		}
		st.AddVoxel(vec.Vec3{X: r.X, Y: r.Y, Z: r.Z}, voxel.Voxel{Kind: r.Kind, Life: r.Life})
	}

	b := physics.NewBody(st, s.Repere)
	b.ID = s.ID
	b.Velocity = s.Velocity
	b.Rotation = s.Rotation
	return b, nil
}

// codec сериализует снимки в JSON и сжимает их zstd.
// EncodeAll и DecodeAll безопасны для конкурентного вызова.
type codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec() (*codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать zstd-кодер: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("не удалось создать zstd-декодер: %w", err)
	}
	return &codec{encoder: encoder, decoder: decoder}, nil
}

func (c *codec) marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации: %w", err)
	}
	return c.encoder.EncodeAll(data, nil), nil
}

func (c *codec) unmarshal(data []byte, v any) error {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("ошибка распаковки: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("ошибка десериализации: %w", err)
	}
	return nil
}

func (c *codec) close() {
	c.encoder.Close()
	c.decoder.Close()
}
