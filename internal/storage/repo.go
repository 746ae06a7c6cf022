// Package storage сохраняет снимки тел между запусками симуляции.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/annel0/voxel-battle/internal/physics"
	"github.com/google/uuid"
)

var (
	// ErrBodyNotFound возвращается, если снимка тела нет в хранилище
	ErrBodyNotFound = errors.New("снимок тела не найден")
	// ErrNotReady возвращается после закрытия хранилища
	ErrNotReady = errors.New("хранилище не готово")
)

// WorldMeta описывает последнее сохранение мира целиком
type WorldMeta struct {
	Tick    uint64      `json:"tick"`
	SavedAt time.Time   `json:"saved_at"`
	Bodies  []uuid.UUID `json:"bodies"`
}

// BodyRepo определяет интерфейс хранилища снимков тел.
// Реализации безопасны для конкурентного использования.
type BodyRepo interface {
	// SaveBody сохраняет (или перезаписывает) снимок тела
	SaveBody(ctx context.Context, b *physics.Body) error

	// LoadBody восстанавливает тело по ID. Если снимка нет, возвращает ErrBodyNotFound.
	LoadBody(ctx context.Context, id uuid.UUID) (*physics.Body, error)

	// DeleteBody удаляет снимок тела
	DeleteBody(ctx context.Context, id uuid.UUID) error

	// ListBodies возвращает ID всех сохранённых тел в порядке ключей
	ListBodies(ctx context.Context) ([]uuid.UUID, error)

	// SaveWorld заменяет все снимки телами bodies и запоминает номер тика
	SaveWorld(ctx context.Context, tick uint64, bodies []*physics.Body) error

	// LoadWorld восстанавливает тела последнего SaveWorld в сохранённом порядке
	LoadWorld(ctx context.Context) (WorldMeta, []*physics.Body, error)

	Close() error
}
