// Package models содержит доменные структуры, описывающие игровую сессию,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

// Session представляет собой запланированную игру: площадка, дата,
// временное окно, создатель и список участников.
//
// Даты и время хранятся строками в форматах "2006-01-02" и "15:04" —
// ровно так они ходят по проводу и лежат в хранилище (DATE/TIME колонки).
type Session struct {
	ID           int64  `json:"id"`
	LocationName string `json:"location_name"` // Название площадки
	Date         string `json:"date"`          // Дата игры, формат 2006-01-02
	StartTime    string `json:"start_time"`    // Начало, формат 15:04
	EndTime      string `json:"end_time"`      // Конец, формат 15:04
	Note         string `json:"note,omitempty"`
	Creator      User   `json:"creator"`   // Создатель, неизменен после создания
	Attendees    []User `json:"attendees"` // Участники, множество без дубликатов
}

// SessionDraft используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Session.
type SessionDraft struct {
	LocationName string `json:"location_name" validate:"required"`                // Название площадки
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`     // Дата в формате 2006-01-02
	StartTime    string `json:"start_time" validate:"required,datetime=15:04"`    // Начало в формате 15:04
	EndTime      string `json:"end_time" validate:"required,datetime=15:04"`      // Конец в формате 15:04
	Note         string `json:"note"`                                             // Произвольная заметка
}

// Profile агрегированное представление пользователя: созданные им сессии
// и сессии, к которым он присоединился. Счётчики — просто длины списков.
type Profile struct {
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	CreatedSessions  []*Session `json:"created_sessions"`
	AttendedSessions []*Session `json:"attended_sessions"`
	CreatedCount     int        `json:"created_count"`
	AttendedCount    int        `json:"attended_count"`
}
