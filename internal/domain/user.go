package domain

import (
	"strings"
	"time"
)

// UserRole — закрытое перечисление ролей. Роль разбирается один раз на границе,
// дальше по коду передаётся только типизированное значение.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleUser    UserRole = "user"
)

// ParseUserRole нормализует строку роли к закрытому перечислению.
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case UserRoleAdmin:
		return UserRoleAdmin, nil
	case UserRoleManager:
		return UserRoleManager, nil
	case UserRoleUser:
		return UserRoleUser, nil
	default:
		return "", ErrRoleInvalid
	}
}

// User — минимальный срез identity, который нужен корзине и заказам.
// Аутентификация и управление учётными записями остаются за внешним сервисом.
type User struct {
	ID        string
	Email     string
	Role      UserRole
	CreatedAt time.Time
}
