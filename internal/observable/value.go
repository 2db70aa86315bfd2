// Package observable — значение с подписчиками: последнее значение плюс уведомления о смене.
package observable

import (
	"slices"
	"sync"
)

// Value хранит текущее значение и рассылает его подписчикам при каждом Set.
// Подписчики вызываются синхронно, в порядке вызовов Set.
// Колбэк не должен вызывать Set того же Value.
type Value[T any] struct {
	mu      sync.Mutex // состояние
	emitMu  sync.Mutex // порядок доставки
	current T
	nextID  int
	subs    map[int]func(T)
}

// New — Value с начальным значением.
func New[T any](initial T) *Value[T] {
	return &Value[T]{current: initial, subs: make(map[int]func(T))}
}

// Get — текущее значение.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set — заменить значение и уведомить подписчиков.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.current = next
	fns := v.snapshotSubs()
	// emitMu берётся до отпускания mu: два конкурентных Set доставляются в том же порядке,
	// в каком применились.
	v.emitMu.Lock()
	v.mu.Unlock()
	defer v.emitMu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Subscribe — подписка; fn сразу получает текущее значение. Возвращает отписку.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	cur := v.current
	v.emitMu.Lock()
	v.mu.Unlock()
	fn(cur)
	v.emitMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

// Subscribers — число активных подписок.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

func (v *Value[T]) snapshotSubs() []func(T) {
	ids := make([]int, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids) // порядок подписки
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, v.subs[id])
	}
	return fns
}
