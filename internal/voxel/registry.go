package voxel

import (
	"errors"
	"sort"
	"sync"
)

// Kind представляет идентификатор типа вокселя
type Kind uint16

// Константы встроенных типов вокселей
const (
	// Конструкционные блоки корабля
	HullKind    Kind = 1 // Корпус
	ArmorKind   Kind = 2 // Броня
	EngineKind  Kind = 3 // Двигатель
	ReactorKind Kind = 4 // Реактор

	// Природные блоки обломков (начиная с 10)
	RockKind Kind = 10 // Камень
	IceKind  Kind = 11 // Лёд
)

// ErrUnknownKind возвращается, если тип вокселя не зарегистрирован
var ErrUnknownKind = errors.New("неизвестный тип вокселя")

// KindInfo описывает тип вокселя в каталоге
type KindInfo struct {
	ID      Kind    `yaml:"id" json:"id"`
	Name    string  `yaml:"name" json:"name"`
	MaxLife float64 `yaml:"max_life" json:"max_life"`
	Mass    float64 `yaml:"mass" json:"mass"`
}

var (
	registryMu sync.RWMutex
	registry   = make(map[Kind]KindInfo)
)

// Register добавляет (или заменяет) тип вокселя в каталоге
func Register(info KindInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[info.ID] = info
}

// Lookup возвращает описание типа по идентификатору
func Lookup(kind Kind) (KindInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	info, exists := registry[kind]
	return info, exists
}

// IsValidKind проверяет, зарегистрирован ли тип
func IsValidKind(kind Kind) bool {
	_, exists := Lookup(kind)
	return exists
}

// Kinds возвращает все зарегистрированные типы, отсортированные по ID
func Kinds() []KindInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]KindInfo, 0, len(registry))
	for _, info := range registry {
		kinds = append(kinds, info)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].ID < kinds[j].ID })
	return kinds
}

// Регистрируем встроенные типы при импорте пакета
func init() {
	Register(KindInfo{ID: HullKind, Name: "Hull", MaxLife: 10, Mass: 1})
	Register(KindInfo{ID: ArmorKind, Name: "Armor", MaxLife: 40, Mass: 2})
	Register(KindInfo{ID: EngineKind, Name: "Engine", MaxLife: 6, Mass: 1.5})
	Register(KindInfo{ID: ReactorKind, Name: "Reactor", MaxLife: 4, Mass: 3})
	Register(KindInfo{ID: RockKind, Name: "Rock", MaxLife: 25, Mass: 2.5})
	Register(KindInfo{ID: IceKind, Name: "Ice", MaxLife: 8, Mass: 0.9})
}
