package join

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/abdisalam/hoopup/internal/models"
	"github.com/abdisalam/hoopup/internal/storage/repository"
)

// MockService реализует интерфейс join.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Join(ctx context.Context, id int64, targetUsername string) (*models.Session, error) {
	args := m.Called(ctx, id, targetUsername)
	if res := args.Get(0); res != nil {
		return res.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestJoinHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	joined := &models.Session{
		ID:           42,
		LocationName: "Court A",
		Date:         "2024-01-01",
		StartTime:    "18:00",
		EndTime:      "19:00",
		Creator:      models.User{UID: "uid-alice", Username: "alice"},
		Attendees:    []models.User{{UID: "uid-bob", Username: "bob"}},
	}

	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное присоединение",
			id:   "42",
			body: `{"username":"bob"}`,
			setupMock: func(m *MockService) {
				m.On("Join", mock.Anything, int64(42), "bob").Return(joined, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"username":"bob"`,
		},
		{
			name: "повторное присоединение возвращает ту же сессию",
			id:   "42",
			body: `{"username":"bob"}`,
			setupMock: func(m *MockService) {
				m.On("Join", mock.Anything, int64(42), "bob").Return(joined, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "некорректный id",
			id:             "abc",
			body:           `{"username":"bob"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid id"`,
		},
		{
			name:           "пустое имя пользователя",
			id:             "42",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Username is a required field`,
		},
		{
			name: "сессия не найдена",
			id:   "777",
			body: `{"username":"bob"}`,
			setupMock: func(m *MockService) {
				m.On("Join", mock.Anything, int64(777), "bob").
					Return(nil, repository.ErrSessionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"session not found"`,
		},
		{
			name: "пользователь не найден",
			id:   "42",
			body: `{"username":"ghost"}`,
			setupMock: func(m *MockService) {
				m.On("Join", mock.Anything, int64(42), "ghost").
					Return(nil, repository.ErrUserNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"user not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/sessions/"+tt.id+"/join", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
