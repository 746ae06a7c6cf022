package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/annel0/voxel-battle/internal/logging"
	"github.com/annel0/voxel-battle/internal/physics"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

const (
	bodyPrefix = "body:"
	worldKey   = "world:meta"
)

var (
	_ BodyRepo = (*BodyStore)(nil)
	_ BodyRepo = (*MemoryBodyRepo)(nil)
)

// BodyStore хранит снимки тел в BadgerDB
type BodyStore struct {
	db     *badger.DB
	dbPath string
	codec  *codec
	mutex  sync.RWMutex
	ready  bool
	log    *logging.Logger
}

// NewBodyStore открывает хранилище в каталоге dataPath/bodies
func NewBodyStore(dataPath string) (*BodyStore, error) {
	dbPath := filepath.Join(dataPath, "bodies")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB
	return openBodyStore(opts, dbPath)
}

// NewMemoryBodyStore открывает Badger без диска (для тестов)
func NewMemoryBodyStore() (*BodyStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBodyStore(opts, "")
}

func openBodyStore(opts badger.Options, dbPath string) (*BodyStore, error) {
	c, err := newCodec()
	if err != nil {
		return nil, err
	}

	db, err := badger.Open(opts)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	store := &BodyStore{
		db:     db,
		dbPath: dbPath,
		codec:  c,
		ready:  true,
		log:    logging.GetStorageLogger(),
	}
	store.log.Info("💾 Хранилище тел открыто: %s", displayPath(dbPath))
	return store, nil
}

func displayPath(p string) string {
	if p == "" {
		return "(in-memory)"
	}
	return p
}

func bodyKey(id uuid.UUID) []byte {
	return []byte(bodyPrefix + id.String())
}

// Close закрывает хранилище
func (s *BodyStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.ready {
		return nil
	}
	s.ready = false
	s.codec.close()
	return s.db.Close()
}

// acquire проверяет готовность и контекст; вызывающий держит RLock до release
func (s *BodyStore) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.RLock()
	if !s.ready {
		s.mutex.RUnlock()
		return ErrNotReady
	}
	return nil
}

func (s *BodyStore) release() {
	s.mutex.RUnlock()
}

// SaveBody сохраняет снимок тела
func (s *BodyStore) SaveBody(ctx context.Context, b *physics.Body) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	data, err := s.codec.marshal(SnapshotOf(b))
	if err != nil {
		return fmt.Errorf("тело %s: %w", b.ID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bodyKey(b.ID), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// LoadBody восстанавливает тело по ID
func (s *BodyStore) LoadBody(ctx context.Context, id uuid.UUID) (*physics.Body, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	var snap BodySnapshot
	if err := s.get(bodyKey(id), &snap); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBodyNotFound, id)
		}
		return nil, fmt.Errorf("тело %s: %w", id, err)
	}
	return snap.Body()
}

// LoadSnapshot возвращает снимок тела без восстановления структуры
func (s *BodyStore) LoadSnapshot(ctx context.Context, id uuid.UUID) (BodySnapshot, error) {
	if err := s.acquire(ctx); err != nil {
		return BodySnapshot{}, err
	}
	defer s.release()

	var snap BodySnapshot
	if err := s.get(bodyKey(id), &snap); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return BodySnapshot{}, fmt.Errorf("%w: %s", ErrBodyNotFound, id)
		}
		return BodySnapshot{}, err
	}
	return snap, nil
}

func (s *BodyStore) get(key []byte, v any) error {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return err
	}
	return s.codec.unmarshal(data, v)
}

// DeleteBody удаляет снимок тела
func (s *BodyStore) DeleteBody(ctx context.Context, id uuid.UUID) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(bodyKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrBodyNotFound, id)
			}
			return err
		}
		return txn.Delete(bodyKey(id))
	})
}

// ListBodies возвращает ID сохранённых тел
func (s *BodyStore) ListBodies(ctx context.Context) ([]uuid.UUID, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	keys, err := s.bodyKeys()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(keys))
	for _, key := range keys {
		id, err := uuid.Parse(string(key[len(bodyPrefix):]))
		if err != nil {
			s.log.Warn("Пропуск ключа %q: %v", key, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// bodyKeys возвращает ключи всех снимков тел
func (s *BodyStore) bodyKeys() ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(bodyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return keys, nil
}

// SaveWorld заменяет все снимки телами bodies
func (s *BodyStore) SaveWorld(ctx context.Context, tick uint64, bodies []*physics.Body) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	stale, err := s.bodyKeys()
	if err != nil {
		return err
	}

	meta := WorldMeta{Tick: tick, SavedAt: time.Now().UTC(), Bodies: make([]uuid.UUID, 0, len(bodies))}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	keep := make(map[string]struct{}, len(bodies))
	for _, b := range bodies {
		keep[string(bodyKey(b.ID))] = struct{}{}
	}
	for _, key := range stale {
		if _, ok := keep[string(key)]; ok {
			continue
		}
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("ошибка очистки снимков: %w", err)
		}
	}

	for _, b := range bodies {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := s.codec.marshal(SnapshotOf(b))
		if err != nil {
			return fmt.Errorf("тело %s: %w", b.ID, err)
		}
		if err := wb.Set(bodyKey(b.ID), data); err != nil {
			return fmt.Errorf("ошибка записи тела %s: %w", b.ID, err)
		}
		meta.Bodies = append(meta.Bodies, b.ID)
	}

	data, err := s.codec.marshal(meta)
	if err != nil {
		return err
	}
	if err := wb.Set([]byte(worldKey), data); err != nil {
		return err
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	s.log.Info("💾 Мир сохранён: тик %d, тел %d", tick, len(bodies))
	return nil
}

// LoadWorld восстанавливает тела последнего SaveWorld
func (s *BodyStore) LoadWorld(ctx context.Context) (WorldMeta, []*physics.Body, error) {
	if err := s.acquire(ctx); err != nil {
		return WorldMeta{}, nil, err
	}

	var meta WorldMeta
	err := s.get([]byte(worldKey), &meta)
	s.release()
	if errors.Is(err, badger.ErrKeyNotFound) {
		return WorldMeta{}, nil, nil
	}
	if err != nil {
		return WorldMeta{}, nil, fmt.Errorf("ошибка чтения мира: %w", err)
	}

	bodies := make([]*physics.Body, 0, len(meta.Bodies))
	for _, id := range meta.Bodies {
		b, err := s.LoadBody(ctx, id)
		if errors.Is(err, ErrBodyNotFound) {
			continue // удалено после SaveWorld
		}
		if err != nil {
			return meta, nil, err
		}
		bodies = append(bodies, b)
	}
	return meta, bodies, nil
}
