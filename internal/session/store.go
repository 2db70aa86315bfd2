// Package session — текущая личность терминала: пользователь, роль и непрозрачный токен бэкенда.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/localstate"
	"github.com/Gunvolt24/pos_terminal/internal/observable"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
)

// Маршруты UI по ролям.
const (
	RouteLogin   = "/login"
	RouteAdmin   = "/admin/dashboard"
	RouteCashier = "/cajero/punto-venta"
)

// Store — сессия одного терминала. Значение заменяется только целиком.
type Store struct {
	auth  ports.AuthGateway
	state *localstate.Store
	log   ports.Logger
	cur   *observable.Value[*domain.Session]
}

func NewStore(auth ports.AuthGateway, state *localstate.Store, log ports.Logger) *Store {
	return &Store{
		auth:  auth,
		state: state,
		log:   log,
		cur:   observable.New[*domain.Session](nil),
	}
}

// Login — аутентификация через бэкенд; при успехе сессия заменяется и сохраняется.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ValidationError(domain.ErrMissingField, domain.MsgCredentials)
	}

	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		if _, ok := domain.AsError(err); ok {
			return nil, err
		}
		return nil, domain.GatewayError(0, "", domain.MsgBadCredentials, nil, err)
	}
	if resp == nil || resp.Token == "" || resp.User.ID == 0 {
		msg := ""
		if resp != nil {
			msg = resp.Message
		}
		return nil, domain.GatewayError(0, msg, domain.MsgBadCredentials, nil, domain.ErrNotAuthenticated)
	}

	sess := domain.NewSession(resp)
	if err := s.state.Save(ctx, localstate.KeyCurrentUser, resp.User); err != nil {
		s.log.Warnf(ctx, "session persist user: %v", err)
	}
	if err := s.state.Save(ctx, localstate.KeyAuthToken, resp.Token); err != nil {
		s.log.Warnf(ctx, "session persist token: %v", err)
	}

	s.cur.Set(sess)
	s.log.Infof(ctx, "login user=%d role=%s", sess.UserID, sess.Role)
	return copySession(sess), nil
}

// Logout — сброс сессии и удаление сохранённых записей.
func (s *Store) Logout(ctx context.Context) {
	for _, key := range []string{localstate.KeyAuthToken, localstate.KeyCurrentUser} {
		if err := s.state.Remove(ctx, key); err != nil {
			s.log.Warnf(ctx, "session remove %s: %v", key, err)
		}
	}
	if s.cur.Get() != nil {
		s.cur.Set(nil)
	}
}

// Restore — восстановление сессии из хранилища; неполная запись отбрасывается.
// При недоступном хранилище терминал остаётся без сессии.
func (s *Store) Restore(ctx context.Context) {
	var user domain.User
	okUser, err := s.state.Load(ctx, localstate.KeyCurrentUser, &user)
	if err != nil {
		s.log.Warnf(ctx, "session restore skipped: %v", err)
		return
	}
	var token string
	okToken, err := s.state.Load(ctx, localstate.KeyAuthToken, &token)
	if err != nil {
		s.log.Warnf(ctx, "session restore skipped: %v", err)
		return
	}

	switch {
	case !okUser && !okToken:
		return
	case !okUser || !okToken || token == "" || user.ID == 0:
		reason := errors.New("partial session record")
		s.state.Discard(ctx, localstate.KeyCurrentUser, reason)
		s.state.Discard(ctx, localstate.KeyAuthToken, reason)
		return
	}

	s.cur.Set(&domain.Session{
		UserID:   user.ID,
		Role:     user.Role,
		Token:    token,
		UserName: user.Name,
	})
}

// Current — копия текущей сессии или nil.
func (s *Store) Current() *domain.Session { return copySession(s.cur.Get()) }

// IsAuthenticated — есть и токен, и пользователь.
func (s *Store) IsAuthenticated() bool {
	cur := s.cur.Get()
	return cur != nil && cur.Token != "" && cur.UserID != 0
}

// Role — роль текущего пользователя; 0 без сессии.
func (s *Store) Role() domain.Role {
	if cur := s.cur.Get(); cur != nil {
		return cur.Role
	}
	return 0
}

func (s *Store) HasRole(r domain.Role) bool { return s.IsAuthenticated() && s.Role() == r }

func (s *Store) IsAdmin() bool { return s.HasRole(domain.RoleAdmin) }

func (s *Store) IsCashier() bool { return s.HasRole(domain.RoleCashier) }

// HomeRoute — стартовый экран для текущей роли.
func (s *Store) HomeRoute() string {
	switch {
	case s.IsAdmin():
		return RouteAdmin
	case s.IsCashier():
		return RouteCashier
	default:
		return RouteLogin
	}
}

// Subscribe — уведомления о смене сессии (nil — вышли).
func (s *Store) Subscribe(fn func(*domain.Session)) (unsubscribe func()) {
	return s.cur.Subscribe(func(sess *domain.Session) { fn(copySession(sess)) })
}

func copySession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
