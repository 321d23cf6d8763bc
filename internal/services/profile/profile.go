// Package services содержит бизнес-логику агрегации профиля пользователя:
// созданные им сессии и сессии, к которым он присоединился.
package services

import (
	"context"
	"log/slog"

	"github.com/abdisalam/hoopup/internal/models"
)

// ProfileRepository определяет методы хранилища, нужные для сборки профиля.
type ProfileRepository interface {
	// GetUserByUsername возвращает пользователя по имени.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// ListSessionsByCreator возвращает сессии, созданные пользователем.
	ListSessionsByCreator(ctx context.Context, username string) ([]*models.Session, error)
	// ListSessionsByAttendee возвращает сессии, в которых пользователь участвует.
	ListSessionsByAttendee(ctx context.Context, username string) ([]*models.Session, error)
}

// ProfileService собирает сводное представление пользователя.
type ProfileService struct {
	repo ProfileRepository
	log  *slog.Logger
}

// NewProfileService создает новый экземпляр ProfileService.
func NewProfileService(repo ProfileRepository, log *slog.Logger) *ProfileService {
	return &ProfileService{
		repo: repo,
		log:  log,
	}
}

// Get возвращает профиль пользователя username.
//
// Счётчики — длины списков, отдельно они нигде не хранятся.
func (s *ProfileService) Get(ctx context.Context, username string) (*models.Profile, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.ListSessionsByCreator(ctx, username)
	if err != nil {
		return nil, err
	}
	attended, err := s.repo.ListSessionsByAttendee(ctx, username)
	if err != nil {
		return nil, err
	}

	s.log.Info("profile assembled",
		slog.String("username", username),
		slog.Int("created", len(created)),
		slog.Int("attended", len(attended)),
	)
	return &models.Profile{
		Username:         user.Username,
		Email:            user.Email,
		CreatedSessions:  created,
		AttendedSessions: attended,
		CreatedCount:     len(created),
		AttendedCount:    len(attended),
	}, nil
}
