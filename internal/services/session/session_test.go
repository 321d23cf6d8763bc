package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/abdisalam/hoopup/internal/models"
	"github.com/abdisalam/hoopup/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSession(ctx context.Context, sess models.Session, creatorUID string) (int64, error) {
	args := m.Called(ctx, sess, creatorUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *RepoMock) UpdateSession(ctx context.Context, sess models.Session, id int64) (int64, error) {
	args := m.Called(ctx, sess, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) DeleteSession(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ListSessions(ctx context.Context) ([]*models.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *RepoMock) AddAttendee(ctx context.Context, sessionID int64, userUID string) error {
	return m.Called(ctx, sessionID, userUID).Error(0)
}

func (m *RepoMock) RemoveAttendee(ctx context.Context, sessionID int64, userUID string) error {
	return m.Called(ctx, sessionID, userUID).Error(0)
}

func (m *RepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validDraft() models.SessionDraft {
	return models.SessionDraft{
		LocationName: "Court A",
		Date:         "2024-01-01",
		StartTime:    "18:00",
		EndTime:      "19:00",
	}
}

func aliceSession() *models.Session {
	return &models.Session{
		ID:           42,
		LocationName: "Court A",
		Date:         "2024-01-01",
		StartTime:    "18:00",
		EndTime:      "19:00",
		Creator:      models.User{UID: "uid-alice", Username: "alice", Email: "alice@example.com"},
	}
}

func TestIsCreator(t *testing.T) {
	sess := aliceSession()

	tests := []struct {
		name     string
		sess     *models.Session
		username string
		want     bool
	}{
		{name: "creator matches", sess: sess, username: "alice", want: true},
		{name: "other user", sess: sess, username: "bob", want: false},
		{name: "empty username", sess: sess, username: "", want: false},
		{name: "nil session", sess: nil, username: "alice", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCreator(tt.sess, tt.username))
		})
	}
}

func TestSessionService_Create(t *testing.T) {
	tests := []struct {
		name       string
		draft      models.SessionDraft
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "success create",
			draft: models.SessionDraft{
				LocationName: "Court A",
				Date:         "2024-01-01",
				StartTime:    "18:00",
				EndTime:      "19:00",
				Note:         "bring a ball",
			},
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{UID: "uid-alice", Username: "alice"}, nil).Once()
				r.On("CreateSession", mock.Anything, mock.MatchedBy(func(s models.Session) bool {
					return s.LocationName == "Court A" && s.Date == "2024-01-01" &&
						s.StartTime == "18:00" && s.EndTime == "19:00"
				}), "uid-alice").Return(int64(42), nil).Once()
				r.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
				c.On("Set", "session:42", mock.Anything, time.Hour).Return(nil).Once()
			},
		},
		{
			name: "blank location rejected",
			draft: models.SessionDraft{
				LocationName: "   ",
				Date:         "2024-01-01",
				StartTime:    "18:00",
				EndTime:      "19:00",
			},
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			wantErr:    ErrValidation,
		},
		{
			name: "malformed date rejected",
			draft: models.SessionDraft{
				LocationName: "Court A",
				Date:         "01-2024",
				StartTime:    "18:00",
				EndTime:      "19:00",
			},
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			wantErr:    ErrValidation,
		},
		{
			name: "missing start time rejected",
			draft: models.SessionDraft{
				LocationName: "Court A",
				Date:         "2024-01-01",
				EndTime:      "19:00",
			},
			setupMocks: func(_ *RepoMock, _ *CacheMock) {},
			wantErr:    ErrValidation,
		},
		{
			name:  "acting user not resolvable",
			draft: validDraft(),
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").
					Return(nil, repository.ErrUserNotFound).Once()
			},
			wantErr: repository.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			svc := NewSessionService(repo, cache, newNoopLogger())

			got, err := svc.Create(context.Background(), "alice", tt.draft)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "alice", got.Creator.Username)
				assert.Equal(t, int64(42), got.ID)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

// Порядок start_time и end_time не проверяется: end раньше start — допустимый черновик.
func TestSessionService_Create_EndBeforeStartAllowed(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("GetUserByUsername", mock.Anything, "alice").
		Return(&models.User{UID: "uid-alice", Username: "alice"}, nil).Once()
	repo.On("CreateSession", mock.Anything, mock.Anything, "uid-alice").Return(int64(42), nil).Once()
	repo.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
	cache.On("Set", "session:42", mock.Anything, time.Hour).Return(nil).Once()
	svc := NewSessionService(repo, cache, newNoopLogger())

	draft := validDraft()
	draft.StartTime = "19:00"
	draft.EndTime = "18:00"

	_, err := svc.Create(context.Background(), "alice", draft)
	require.NoError(t, err)
}

func TestSessionService_Read(t *testing.T) {
	t.Run("cache miss falls back to repository", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "session:42", mock.Anything).Return(false, nil).Once()
		repo.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
		cache.On("Set", "session:42", mock.Anything, time.Hour).Return(nil).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		got, err := svc.Read(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.ID)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("unknown session", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "session:7", mock.Anything).Return(false, nil).Once()
		repo.On("GetSession", mock.Anything, int64(7)).Return(nil, repository.ErrSessionNotFound).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		_, err := svc.Read(context.Background(), 7)
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})
}

func TestSessionService_Update(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    error
	}{
		{
			name:     "success update by creator",
			username: "alice",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				r.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Twice()
				r.On("UpdateSession", mock.Anything, mock.Anything, int64(42)).Return(int64(1), nil).Once()
				c.On("Set", "session:42", mock.Anything, time.Hour).Return(nil).Once()
			},
		},
		{
			name:     "forbidden for non-creator",
			username: "bob",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
			},
			wantErr: ErrNotCreator,
		},
		{
			name:     "session not found",
			username: "alice",
			setupMocks: func(r *RepoMock, _ *CacheMock) {
				r.On("GetSession", mock.Anything, int64(42)).Return(nil, repository.ErrSessionNotFound).Once()
			},
			wantErr: repository.ErrSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)
			svc := NewSessionService(repo, cache, newNoopLogger())

			_, err := svc.Update(context.Background(), 42, tt.username, validDraft())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				// Запись не должна меняться при отказе.
				repo.AssertNotCalled(t, "UpdateSession", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSessionService_Remove(t *testing.T) {
	t.Run("creator removes session", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
		cache.On("Invalidate", "session:42").Return(nil).Once()
		repo.On("DeleteSession", mock.Anything, int64(42)).Return(int64(1), nil).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		require.NoError(t, svc.Remove(context.Background(), 42, "alice"))
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("non-creator gets forbidden and session survives", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		err := svc.Remove(context.Background(), 42, "bob")
		assert.ErrorIs(t, err, ErrNotCreator)
		repo.AssertNotCalled(t, "DeleteSession", mock.Anything, mock.Anything)
	})
}

func TestSessionService_Join(t *testing.T) {
	bob := &models.User{UID: "uid-bob", Username: "bob", Email: "bob@example.com"}

	t.Run("first join adds attendee", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		joined := aliceSession()
		joined.Attendees = []models.User{*bob}

		repo.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
		repo.On("GetUserByUsername", mock.Anything, "bob").Return(bob, nil).Once()
		repo.On("AddAttendee", mock.Anything, int64(42), "uid-bob").Return(nil).Once()
		repo.On("GetSession", mock.Anything, int64(42)).Return(joined, nil).Once()
		cache.On("Set", "session:42", mock.Anything, time.Hour).Return(nil).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		got, err := svc.Join(context.Background(), 42, "bob")
		require.NoError(t, err)
		require.Len(t, got.Attendees, 1)
		assert.Equal(t, "bob", got.Attendees[0].Username)
		repo.AssertExpectations(t)
	})

	t.Run("second join is a no-op", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		joined := aliceSession()
		joined.Attendees = []models.User{*bob}

		repo.On("GetSession", mock.Anything, int64(42)).Return(joined, nil).Once()
		repo.On("GetUserByUsername", mock.Anything, "bob").Return(bob, nil).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		got, err := svc.Join(context.Background(), 42, "bob")
		require.NoError(t, err)
		require.Len(t, got.Attendees, 1)
		repo.AssertNotCalled(t, "AddAttendee", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown session", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetSession", mock.Anything, int64(7)).Return(nil, repository.ErrSessionNotFound).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		_, err := svc.Join(context.Background(), 7, "bob")
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})

	t.Run("unknown target user", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
		repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, repository.ErrUserNotFound).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		_, err := svc.Join(context.Background(), 42, "ghost")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}

func TestSessionService_Leave(t *testing.T) {
	bob := &models.User{UID: "uid-bob", Username: "bob", Email: "bob@example.com"}

	t.Run("member leaves", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		joined := aliceSession()
		joined.Attendees = []models.User{*bob}

		repo.On("GetSession", mock.Anything, int64(42)).Return(joined, nil).Once()
		repo.On("GetUserByUsername", mock.Anything, "bob").Return(bob, nil).Once()
		repo.On("RemoveAttendee", mock.Anything, int64(42), "uid-bob").Return(nil).Once()
		repo.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
		cache.On("Set", "session:42", mock.Anything, time.Hour).Return(nil).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		got, err := svc.Leave(context.Background(), 42, "bob")
		require.NoError(t, err)
		assert.Empty(t, got.Attendees)
		repo.AssertExpectations(t)
	})

	t.Run("leave without membership is a no-op", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetSession", mock.Anything, int64(42)).Return(aliceSession(), nil).Once()
		repo.On("GetUserByUsername", mock.Anything, "bob").Return(bob, nil).Once()
		svc := NewSessionService(repo, cache, newNoopLogger())

		got, err := svc.Leave(context.Background(), 42, "bob")
		require.NoError(t, err)
		assert.Empty(t, got.Attendees)
		repo.AssertNotCalled(t, "RemoveAttendee", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSessionService_ListAll(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("ListSessions", mock.Anything).
		Return([]*models.Session{aliceSession()}, nil).Once()
	svc := NewSessionService(repo, cache, newNoopLogger())

	got, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	repo.AssertExpectations(t)
}

func TestSessionService_ListAll_Error(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("ListSessions", mock.Anything).Return(nil, errors.New("db error")).Once()
	svc := NewSessionService(repo, cache, newNoopLogger())

	_, err := svc.ListAll(context.Background())
	assert.Error(t, err)
}
