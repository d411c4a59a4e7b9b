package models

// Role — роль пользователя в системе.
type Role string

const (
	// RoleAdmin — администратор, проверяет оплату и управляет арендаторами.
	RoleAdmin Role = "admin"
	// RoleUser — арендатор (учреждение).
	RoleUser Role = "user"
)

// Profile — профиль учреждения, по одному на каждую учётную запись.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Institution string `json:"institution"`
	Subdomain   string `json:"subdomain"` // Только [a-z0-9-]
	Phone       string `json:"phone"`
	Role        Role   `json:"role"`
}

// Actor — пользователь, от имени которого выполняется операция.
// Роль берётся из свежего профиля, а не из токена.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin сообщает, обладает ли пользователь правами администратора.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RegisterRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	Institution string `json:"institution" validate:"required"`
	Subdomain   string `json:"subdomain" validate:"required,max=63"`
	Phone       string `json:"phone" validate:"required"`
	Plan        string `json:"plan" validate:"required,oneof=Starter Pro Enterprise"`
}

// AuthUser — учётная запись провайдера идентификации.
type AuthUser struct {
	ID           string
	Email        string
	PasswordHash string
}
