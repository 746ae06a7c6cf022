package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/voxel-battle/internal/physics"
	"github.com/google/uuid"
)

// MemoryBodyRepo реализует BodyRepo в памяти.
// Используется, когда путь к хранилищу не задан.
// ВНИМАНИЕ: Данные теряются при перезапуске!
type MemoryBodyRepo struct {
	mu     sync.RWMutex
	data   map[uuid.UUID]BodySnapshot
	meta   *WorldMeta
	closed bool
}

// NewMemoryBodyRepo создает новый репозиторий снимков в памяти
func NewMemoryBodyRepo() *MemoryBodyRepo {
	return &MemoryBodyRepo{
		data: make(map[uuid.UUID]BodySnapshot),
	}
}

func (r *MemoryBodyRepo) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.closed {
		return ErrNotReady
	}
	return nil
}

// SaveBody сохраняет снимок тела в памяти
func (r *MemoryBodyRepo) SaveBody(ctx context.Context, b *physics.Body) error {
	snap := SnapshotOf(b)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ctx); err != nil {
		return err
	}
	r.data[b.ID] = snap
	return nil
}

// LoadBody восстанавливает тело из памяти
func (r *MemoryBodyRepo) LoadBody(ctx context.Context, id uuid.UUID) (*physics.Body, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	snap, exists := r.data[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBodyNotFound, id)
	}
	// Body строит новую структуру, снимок в карте не разделяется
	return snap.Body()
}

// DeleteBody удаляет снимок тела из памяти
func (r *MemoryBodyRepo) DeleteBody(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ctx); err != nil {
		return err
	}
	if _, exists := r.data[id]; !exists {
		return fmt.Errorf("%w: %s", ErrBodyNotFound, id)
	}
	delete(r.data, id)
	return nil
}

// ListBodies возвращает ID тел, отсортированные как ключи Badger
func (r *MemoryBodyRepo) ListBodies(ctx context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(r.data))
	for id := range r.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// SaveWorld заменяет содержимое репозитория телами bodies
func (r *MemoryBodyRepo) SaveWorld(ctx context.Context, tick uint64, bodies []*physics.Body) error {
	data := make(map[uuid.UUID]BodySnapshot, len(bodies))
	meta := &WorldMeta{Tick: tick, SavedAt: time.Now().UTC(), Bodies: make([]uuid.UUID, 0, len(bodies))}
	for _, b := range bodies {
		data[b.ID] = SnapshotOf(b)
		meta.Bodies = append(meta.Bodies, b.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ctx); err != nil {
		return err
	}
	r.data = data
	r.meta = meta
	return nil
}

// LoadWorld восстанавливает тела последнего SaveWorld
func (r *MemoryBodyRepo) LoadWorld(ctx context.Context) (WorldMeta, []*physics.Body, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(ctx); err != nil {
		return WorldMeta{}, nil, err
	}
	if r.meta == nil {
		return WorldMeta{}, nil, nil
	}

	bodies := make([]*physics.Body, 0, len(r.meta.Bodies))
	for _, id := range r.meta.Bodies {
		snap, exists := r.data[id]
		if !exists {
			continue // удалено после SaveWorld
		}
		b, err := snap.Body()
		if err != nil {
			return *r.meta, nil, err
		}
		bodies = append(bodies, b)
	}
	return *r.meta, bodies, nil
}

// Count возвращает количество сохранённых снимков (для отладки)
func (r *MemoryBodyRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Close помечает репозиторий закрытым
func (r *MemoryBodyRepo) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
