package eventbus

import (
	"context"
	"sync"
)

var (
	globalMu  sync.RWMutex
	globalBus EventBus
)

// Init устанавливает глобальную шину.
func Init(bus EventBus) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalBus = bus
}

// Global возвращает глобальную шину или nil
func Global() EventBus {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalBus
}

// Publish отправляет событие в глобальную шину, если она инициализирована.
func Publish(ctx context.Context, ev *Envelope) error {
	bus := Global()
	if bus == nil {
		return nil
	}
	return bus.Publish(ctx, ev)
}
