// Package localstate — ключи и JSON-кодек поверх ports.StateStore.
// Нечитаемая запись удаляется и считается отсутствующей: повреждённый кэш не ломает загрузку.
package localstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gunvolt24/pos_terminal/internal/ports"
)

// Имена записей терминала.
const (
	KeyCart           = "cart"
	KeyPendingPayment = "mp_cart_items"
	KeyCurrentUser    = "current_user"
	KeyAuthToken      = "auth_token"
)

// Key — полный ключ записи: pos:<terminal>:<name>.
func Key(terminalID, name string) string {
	return "pos:" + terminalID + ":" + name
}

// Store — записи одного терминала.
type Store struct {
	store    ports.StateStore
	terminal string
	log      ports.Logger
}

func New(store ports.StateStore, terminalID string, log ports.Logger) *Store {
	return &Store{store: store, terminal: terminalID, log: log}
}

func (s *Store) TerminalID() string { return s.terminal }

// Load — читает запись name в dst. Возвращает false, если записи нет или она была повреждена.
// Ошибка — только при сбое самого хранилища.
func (s *Store) Load(ctx context.Context, name string, dst any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, Key(s.terminal, name))
	if err != nil {
		return false, fmt.Errorf("state get %s: %w", name, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.Discard(ctx, name, err)
		return false, nil
	}
	return true, nil
}

// Save — сериализует v в запись name.
func (s *Store) Save(ctx context.Context, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("state encode %s: %w", name, err)
	}
	if err := s.store.Set(ctx, Key(s.terminal, name), raw); err != nil {
		return fmt.Errorf("state set %s: %w", name, err)
	}
	return nil
}

// Remove — удаляет запись name.
func (s *Store) Remove(ctx context.Context, name string) error {
	if err := s.store.Remove(ctx, Key(s.terminal, name)); err != nil {
		return fmt.Errorf("state remove %s: %w", name, err)
	}
	return nil
}

// Discard — удаляет повреждённую (или нарушающую инвариант) запись с предупреждением в лог.
func (s *Store) Discard(ctx context.Context, name string, reason error) {
	s.log.Warnf(ctx, "discarding unreadable state %q: %v", name, reason)
	if err := s.Remove(ctx, name); err != nil {
		s.log.Warnf(ctx, "discard %q: %v", name, err)
	}
}
