package domain

// Role — роль пользователя в системе.
type Role int

const (
	RoleAdmin   Role = 1 // администратор: каталог, пользователи, отчёты
	RoleCashier Role = 2 // кассир: касса и история продаж
)

// String — человекочитаемое имя роли.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleCashier:
		return "Cajero"
	default:
		return "Desconocido"
	}
}

// User — пользователь, как его возвращает бэкенд.
type User struct {
	ID    int64  `json:"idUsuario"`
	Role  Role   `json:"idRol"`
	Name  string `json:"nombre"`
	Email string `json:"correo"`
	Phone string `json:"telefono,omitempty"`
}

// AuthResponse — ответ на логин.
type AuthResponse struct {
	Token     string `json:"token,omitempty"`
	User      User   `json:"user"`
	Message   string `json:"message,omitempty"`
	ExpiresIn int64  `json:"expiresIn,omitempty"`
}

// Session — текущая аутентифицированная личность терминала.
// Заменяется целиком при логине/логауте, частично не меняется.
type Session struct {
	UserID   int64  `json:"userId"`
	Role     Role   `json:"role"`
	Token    string `json:"-"`
	UserName string `json:"userName"`
}

// NewSession — сессия из ответа на логин.
func NewSession(resp *AuthResponse) *Session {
	return &Session{
		UserID:   resp.User.ID,
		Role:     resp.User.Role,
		Token:    resp.Token,
		UserName: resp.User.Name,
	}
}
