// Package models содержит доменную модель пользователя системы.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

// User представляет зарегистрированного пользователя системы.
//
// Хэш пароля никогда не сериализуется в JSON-ответы.
type User struct {
	UID          string `json:"uid"`      // Уникальный идентификатор пользователя
	Email        string `json:"email"`    // Электронная почта
	Username     string `json:"username"` // Имя пользователя (уникальное)
	PasswordHash string `json:"-"`        // Хэш пароля пользователя
}
