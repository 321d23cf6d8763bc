package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abdisalam/hoopup/internal/models"
)

// Общая часть SELECT для сессий: поля сессии плюс данные создателя.
// Дата и время отдаются строками в форматах 2006-01-02 и 15:04.
const sessionSelect = `SELECT s.id, s.location_name, to_char(s.date, 'YYYY-MM-DD'),
			      to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'),
			      s.note, u.uid, u.email, u.username
			  FROM sessions s
			  JOIN users u ON u.uid = s.creator_uid`

// CreateSession вставляет новую сессию и возвращает её ID.
func (s *Storage) CreateSession(ctx context.Context, sess models.Session, creatorUID string) (int64, error) {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO sessions (location_name, date, start_time, end_time, note, creator_uid)
			  VALUES ($1, $2::date, $3::time, $4::time, $5, $6::uuid)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		sess.LocationName, sess.Date, sess.StartTime, sess.EndTime, sess.Note,
		creatorUID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSession возвращает сессию по её ID вместе с создателем и участниками.
//
// Если сессия отсутствует, возвращает ErrSessionNotFound.
func (s *Storage) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	const op = "storage.GetSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := sessionSelect + ` WHERE s.id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Session
	if err := row.Scan(&result.ID, &result.LocationName, &result.Date,
		&result.StartTime, &result.EndTime, &result.Note,
		&result.Creator.UID, &result.Creator.Email, &result.Creator.Username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	attendees, err := s.listAttendees(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.Attendees = attendees
	return &result, nil
}

// UpdateSession обновляет поля сессии (площадка, дата, время, заметка)
// и возвращает количество изменённых строк. Создатель и участники не трогаются.
func (s *Storage) UpdateSession(ctx context.Context, sess models.Session, id int64) (int64, error) {
	const op = "storage.UpdateSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE sessions
			  SET location_name = $1, date = $2::date, start_time = $3::time,
			      end_time = $4::time, note = $5
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		sess.LocationName, sess.Date, sess.StartTime, sess.EndTime, sess.Note, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// DeleteSession удаляет сессию по ID и возвращает количество удалённых строк.
// Записи участников удаляются каскадно.
func (s *Storage) DeleteSession(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM sessions WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ListSessions возвращает список всех сессий без фильтрации и пагинации.
func (s *Storage) ListSessions(ctx context.Context) ([]*models.Session, error) {
	const op = "storage.ListSessions"
	return s.listSessionsWhere(ctx, op, ``)
}

// ListSessionsByCreator возвращает сессии, созданные пользователем.
func (s *Storage) ListSessionsByCreator(ctx context.Context, username string) ([]*models.Session, error) {
	const op = "storage.ListSessionsByCreator"
	return s.listSessionsWhere(ctx, op, ` WHERE u.username = $1`, username)
}

// ListSessionsByAttendee возвращает сессии, в которых пользователь участвует.
func (s *Storage) ListSessionsByAttendee(ctx context.Context, username string) ([]*models.Session, error) {
	const op = "storage.ListSessionsByAttendee"
	where := ` WHERE EXISTS (
			      SELECT 1 FROM session_attendees sa
			      JOIN users att ON att.uid = sa.user_uid
			      WHERE sa.session_id = s.id AND att.username = $1
			  )`
	return s.listSessionsWhere(ctx, op, where, username)
}

// AddAttendee добавляет пользователя в участники сессии.
// Повторное добавление — no-op за счёт ON CONFLICT DO NOTHING.
func (s *Storage) AddAttendee(ctx context.Context, sessionID int64, userUID string) error {
	const op = "storage.AddAttendee"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO session_attendees (session_id, user_uid)
			  VALUES ($1, $2::uuid)
			  ON CONFLICT DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, sessionID, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveAttendee убирает пользователя из участников сессии.
// Отсутствие записи не является ошибкой.
func (s *Storage) RemoveAttendee(ctx context.Context, sessionID int64, userUID string) error {
	const op = "storage.RemoveAttendee"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM session_attendees WHERE session_id = $1 AND user_uid = $2::uuid`
	if _, err := s.DB.ExecContext(ctx, query, sessionID, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// listSessionsWhere выполняет общий SELECT сессий с произвольным условием
// и подгружает участников для каждой найденной сессии.
func (s *Storage) listSessionsWhere(ctx context.Context, op, where string, args ...any) ([]*models.Session, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := sessionSelect + where + ` ORDER BY s.id`
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Session
	for rows.Next() {
		var item models.Session
		if err := rows.Scan(&item.ID, &item.LocationName, &item.Date,
			&item.StartTime, &item.EndTime, &item.Note,
			&item.Creator.UID, &item.Creator.Email, &item.Creator.Username); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, item := range result {
		attendees, err := s.listAttendees(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Attendees = attendees
	}
	return result, nil
}

// listAttendees возвращает участников сессии в стабильном порядке.
func (s *Storage) listAttendees(ctx context.Context, sessionID int64) ([]models.User, error) {
	query := `SELECT u.uid, u.email, u.username
			  FROM session_attendees sa
			  JOIN users u ON u.uid = sa.user_uid
			  WHERE sa.session_id = $1
			  ORDER BY u.username`
	rows, err := s.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var attendees []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UID, &u.Email, &u.Username); err != nil {
			return nil, err
		}
		attendees = append(attendees, u)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return attendees, nil
}
