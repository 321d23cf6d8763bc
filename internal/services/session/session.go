// Package services содержит бизнес-логику для управления игровыми сессиями:
// создание, чтение, обновление, удаление, присоединение и выход участников.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abdisalam/hoopup/internal/models"
)

// Ошибки бизнес-уровня.
var (
	// ErrValidation возвращается при некорректном черновике сессии
	// до какого-либо обращения к хранилищу.
	ErrValidation = errors.New("invalid session draft")
	// ErrNotCreator возвращается, когда изменить или удалить сессию
	// пытается не её создатель.
	ErrNotCreator = errors.New("only the creator can modify this session")
)

// SessionRepository определяет методы для работы с сессиями в хранилище.
type SessionRepository interface {
	// CreateSession добавляет новую сессию и возвращает её ID.
	CreateSession(ctx context.Context, sess models.Session, creatorUID string) (int64, error)
	// GetSession возвращает сессию по ID вместе с создателем и участниками.
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	// UpdateSession обновляет поля сессии по ID.
	UpdateSession(ctx context.Context, sess models.Session, id int64) (int64, error)
	// DeleteSession удаляет сессию по ID.
	DeleteSession(ctx context.Context, id int64) (int64, error)
	// ListSessions возвращает список всех сессий.
	ListSessions(ctx context.Context) ([]*models.Session, error)
	// AddAttendee добавляет участника, повторное добавление — no-op.
	AddAttendee(ctx context.Context, sessionID int64, userUID string) error
	// RemoveAttendee убирает участника, отсутствие записи — не ошибка.
	RemoveAttendee(ctx context.Context, sessionID int64, userUID string) error
	// GetUserByUsername возвращает пользователя по имени.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// SessionService реализует бизнес-логику работы с сессиями, включая кеширование чтений.
type SessionService struct {
	repo  SessionRepository
	cache Cache
	log   *slog.Logger
}

// NewSessionService создает новый экземпляр SessionService.
func NewSessionService(repo SessionRepository, cache Cache, log *slog.Logger) *SessionService {
	return &SessionService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// IsCreator сообщает, является ли пользователь создателем сессии.
// Проверка — простое сравнение имён, без обращения к хранилищу.
func IsCreator(sess *models.Session, username string) bool {
	if sess == nil || username == "" {
		return false
	}
	return sess.Creator.Username == username
}

// ListAll возвращает все сессии без фильтрации и пагинации.
func (s *SessionService) ListAll(ctx context.Context) ([]*models.Session, error) {
	return s.repo.ListSessions(ctx)
}

// Create валидирует черновик, назначает создателем пользователя username,
// сохраняет сессию и возвращает её в сохранённом виде.
func (s *SessionService) Create(ctx context.Context, username string, draft models.SessionDraft) (*models.Session, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	creator, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	sess := models.Session{
		LocationName: draft.LocationName,
		Date:         draft.Date,
		StartTime:    draft.StartTime,
		EndTime:      draft.EndTime,
		Note:         draft.Note,
	}
	id, err := s.repo.CreateSession(ctx, sess, creator.UID)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new session", slog.Int64("id", id), slog.String("creator", username))

	created, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(id, created)
	return created, nil
}

// Read возвращает сессию по ID, используя кеш или репозиторий.
func (s *SessionService) Read(ctx context.Context, id int64) (*models.Session, error) {
	var cached *models.Session
	cacheKey := sessionKey(id)
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found && cached != nil {
		return cached, nil
	}

	result, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(id, result)
	return result, nil
}

// Update обновляет площадку, дату, время и заметку сессии.
// Разрешено только создателю; создатель и участники не изменяются.
func (s *SessionService) Update(ctx context.Context, id int64, username string, draft models.SessionDraft) (*models.Session, error) {
	existing, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsCreator(existing, username) {
		return nil, ErrNotCreator
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	sess := models.Session{
		LocationName: draft.LocationName,
		Date:         draft.Date,
		StartTime:    draft.StartTime,
		EndTime:      draft.EndTime,
		Note:         draft.Note,
	}
	if _, err := s.repo.UpdateSession(ctx, sess, id); err != nil {
		return nil, err
	}
	s.log.Info("updated session", slog.Int64("id", id))

	updated, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(id, updated)
	return updated, nil
}

// Remove удаляет сессию. Разрешено только создателю.
func (s *SessionService) Remove(ctx context.Context, id int64, username string) error {
	existing, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if !IsCreator(existing, username) {
		return ErrNotCreator
	}

	cacheKey := sessionKey(id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	if _, err := s.repo.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.log.Info("deleted session", slog.Int64("id", id))
	return nil
}

// Join добавляет пользователя targetUsername в участники сессии.
// Повторное присоединение — no-op, сессия возвращается без изменений.
func (s *SessionService) Join(ctx context.Context, id int64, targetUsername string) (*models.Session, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.GetUserByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	for _, attendee := range sess.Attendees {
		if attendee.UID == target.UID {
			return sess, nil
		}
	}

	if err := s.repo.AddAttendee(ctx, id, target.UID); err != nil {
		return nil, err
	}
	s.log.Info("user joined session", slog.Int64("id", id), slog.String("username", targetUsername))

	return s.refresh(ctx, id)
}

// Leave убирает пользователя targetUsername из участников сессии.
// Выход без членства — no-op, не ошибка.
func (s *SessionService) Leave(ctx context.Context, id int64, targetUsername string) (*models.Session, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.GetUserByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	member := false
	for _, attendee := range sess.Attendees {
		if attendee.UID == target.UID {
			member = true
			break
		}
	}
	if !member {
		return sess, nil
	}

	if err := s.repo.RemoveAttendee(ctx, id, target.UID); err != nil {
		return nil, err
	}
	s.log.Info("user left session", slog.Int64("id", id), slog.String("username", targetUsername))

	return s.refresh(ctx, id)
}

// refresh перечитывает сессию из хранилища и обновляет кеш.
func (s *SessionService) refresh(ctx context.Context, id int64) (*models.Session, error) {
	updated, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(id, updated)
	return updated, nil
}

func (s *SessionService) cacheSet(id int64, sess *models.Session) {
	cacheKey := sessionKey(id)
	if err := s.cache.Set(cacheKey, sess, time.Hour); err != nil {
		s.log.Warn("failed to cache session", slog.String("key", cacheKey), slog.Any("err", err))
	}
}

func sessionKey(id int64) string {
	return fmt.Sprintf("session:%d", id)
}

// validateDraft проверяет обязательные поля черновика.
// Порядок start_time и end_time не проверяется.
func validateDraft(draft models.SessionDraft) error {
	if strings.TrimSpace(draft.LocationName) == "" {
		return fmt.Errorf("%w: location_name must not be blank", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", draft.Date); err != nil {
		return fmt.Errorf("%w: date must be in format 2006-01-02", ErrValidation)
	}
	if _, err := time.Parse("15:04", draft.StartTime); err != nil {
		return fmt.Errorf("%w: start_time must be in format 15:04", ErrValidation)
	}
	if _, err := time.Parse("15:04", draft.EndTime); err != nil {
		return fmt.Errorf("%w: end_time must be in format 15:04", ErrValidation)
	}
	return nil
}
