package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	args := m.Called(ctx, id, currentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, visibleOnly bool, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, visibleOnly, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByIDs(ctx context.Context, ids []uint, currentUserID uint) ([]*models.Post, error) {
	args := m.Called(ctx, ids, currentUserID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) SetVisibility(ctx context.Context, id uint, visible bool) error {
	args := m.Called(ctx, id, visible)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	args := m.Called(ctx, userID, postIDs)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockPostRepository) Like(ctx context.Context, userID, postID uint) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockPostRepository) Unlike(ctx context.Context, userID, postID uint) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

// newFeedTestServer wires a Server with mocked feed repositories.
// adminIDs lists user IDs treated as admins.
func newFeedTestServer(postRepo *MockPostRepository, commentRepo *MockCommentRepository, adminIDs ...uint) *Server {
	s := &Server{}
	isAdmin := func(_ context.Context, userID uint) (bool, error) {
		for _, id := range adminIDs {
			if id == userID {
				return true, nil
			}
		}
		return false, nil
	}
	s.feedService = service.NewFeedService(postRepo, commentRepo, isAdmin)
	s.commentRepo = commentRepo
	return s
}

func authAs(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func TestCreatePost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	s := newFeedTestServer(mockRepo, new(MockCommentRepository))

	app := fiber.New()
	app.Use(authAs(1))
	app.Post("/posts", s.CreatePost)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"title":   "New Post",
				"content": "Hello everyone",
			},
			mockSetup: func() {
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				mockRepo.On("GetByID", mock.Anything, mock.Anything, uint(1)).
					Return(&models.Post{ID: 1, Title: "New Post"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Title",
			body: map[string]string{
				"content": "Hello everyone",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Missing Content",
			body: map[string]string{
				"title": "New Post",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetPost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	s := newFeedTestServer(mockRepo, new(MockCommentRepository))

	app := fiber.New()
	app.Get("/posts/:id", s.GetPost)

	t.Run("Found", func(t *testing.T) {
		mockRepo.On("GetByID", mock.Anything, uint(1), uint(0)).
			Return(&models.Post{ID: 1, Title: "Picnic", LikesCount: 2, CommentsCount: 3}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/posts/1", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var post models.Post
		_ = json.NewDecoder(resp.Body).Decode(&post)
		assert.Equal(t, 2, post.LikesCount)
		assert.Equal(t, 3, post.CommentsCount)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockRepo.On("GetByID", mock.Anything, uint(42), uint(0)).
			Return(nil, assert.AnError).Once()

		req := httptest.NewRequest(http.MethodGet, "/posts/42", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/abc", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestToggleLike(t *testing.T) {
	mockRepo := new(MockPostRepository)
	s := newFeedTestServer(mockRepo, new(MockCommentRepository))

	app := fiber.New()
	app.Use(authAs(5))
	app.Post("/posts/:id/like", s.ToggleLike)

	t.Run("Like when not yet liked", func(t *testing.T) {
		mockRepo.On("GetByID", mock.Anything, uint(1), uint(5)).
			Return(&models.Post{ID: 1, LikesCount: 1}, nil).Twice()
		mockRepo.On("IsLiked", mock.Anything, uint(5), uint(1)).Return(false, nil).Once()
		mockRepo.On("Like", mock.Anything, uint(5), uint(1)).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/posts/1/like", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockRepo.AssertCalled(t, "Like", mock.Anything, uint(5), uint(1))
	})

	t.Run("Unlike when already liked", func(t *testing.T) {
		mockRepo.On("GetByID", mock.Anything, uint(2), uint(5)).
			Return(&models.Post{ID: 2}, nil).Twice()
		mockRepo.On("IsLiked", mock.Anything, uint(5), uint(2)).Return(true, nil).Once()
		mockRepo.On("Unlike", mock.Anything, uint(5), uint(2)).Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/posts/2/like", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockRepo.AssertCalled(t, "Unlike", mock.Anything, uint(5), uint(2))
	})
}

func TestSetPostVisibility(t *testing.T) {
	mockRepo := new(MockPostRepository)
	s := newFeedTestServer(mockRepo, new(MockCommentRepository), 9)

	app := fiber.New()

	adminApp := fiber.New()
	adminApp.Use(authAs(9))
	adminApp.Put("/posts/:id/visibility", s.SetPostVisibility)

	app.Use(authAs(5))
	app.Put("/posts/:id/visibility", s.SetPostVisibility)

	t.Run("Admin hides a post", func(t *testing.T) {
		mockRepo.On("SetVisibility", mock.Anything, uint(1), false).Return(nil).Once()
		mockRepo.On("GetByID", mock.Anything, uint(1), uint(9)).
			Return(&models.Post{ID: 1, Visible: false}, nil).Once()

		body := []byte(`{"visible": false}`)
		req := httptest.NewRequest(http.MethodPut, "/posts/1/visibility", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := adminApp.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Non-admin forbidden", func(t *testing.T) {
		body := []byte(`{"visible": false}`)
		req := httptest.NewRequest(http.MethodPut, "/posts/1/visibility", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Missing visible field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/posts/1/visibility", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := adminApp.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeletePost(t *testing.T) {
	mockRepo := new(MockPostRepository)
	s := newFeedTestServer(mockRepo, new(MockCommentRepository))

	app := fiber.New()
	app.Use(authAs(5))
	app.Delete("/posts/:id", s.DeletePost)

	t.Run("Author deletes own post", func(t *testing.T) {
		mockRepo.On("GetByID", mock.Anything, uint(1), uint(5)).
			Return(&models.Post{ID: 1, AuthorID: 5}, nil).Once()
		mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/posts/1", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("Non-author forbidden", func(t *testing.T) {
		mockRepo.On("GetByID", mock.Anything, uint(2), uint(5)).
			Return(&models.Post{ID: 2, AuthorID: 77}, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/posts/2", nil)
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestCreateComment(t *testing.T) {
	mockRepo := new(MockPostRepository)
	mockComments := new(MockCommentRepository)
	s := newFeedTestServer(mockRepo, mockComments)

	app := fiber.New()
	app.Use(authAs(5))
	app.Post("/posts/:id/comments", s.CreateComment)

	t.Run("Success", func(t *testing.T) {
		mockRepo.On("GetByID", mock.Anything, uint(1), uint(5)).
			Return(&models.Post{ID: 1}, nil).Once()
		mockComments.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		mockComments.On("GetByID", mock.Anything, mock.Anything).
			Return(&models.Comment{ID: 3, PostID: 1, Content: "Amen"}, nil).Once()
		mockComments.On("CountByPost", mock.Anything, uint(1)).Return(int64(4), nil).Once()

		body := []byte(`{"content": "Amen"}`)
		req := httptest.NewRequest(http.MethodPost, "/posts/1/comments", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("Empty content", func(t *testing.T) {
		body := []byte(`{"content": "   "}`)
		req := httptest.NewRequest(http.MethodPost, "/posts/1/comments", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
