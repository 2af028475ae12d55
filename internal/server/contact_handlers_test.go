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

// MockContactRepository is a mock of the ContactRepository interface
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, message *models.ContactMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockContactRepository) GetByID(ctx context.Context, id uint) (*models.ContactMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactMessage), args.Error(1)
}

func (m *MockContactRepository) List(ctx context.Context) ([]*models.ContactMessage, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.ContactMessage), args.Error(1)
}

func (m *MockContactRepository) MarkRead(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContactRepository) UnreadCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newContactTestServer(mockRepo *MockContactRepository) *Server {
	s := &Server{}
	s.contactService = service.NewContactService(mockRepo)
	return s
}

func TestSubmitContactMessage(t *testing.T) {
	mockRepo := new(MockContactRepository)
	s := newContactTestServer(mockRepo)

	app := fiber.New()
	app.Post("/contact", s.SubmitContactMessage)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"name":    "Maria",
				"email":   "maria@example.com",
				"message": "Please pray for my family",
			},
			mockSetup: func() {
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Invalid email",
			body: map[string]string{
				"name":    "Maria",
				"email":   "not-an-email",
				"message": "Hello",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Empty message",
			body: map[string]string{
				"name":    "Maria",
				"email":   "maria@example.com",
				"message": "  ",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetUnreadContactCount(t *testing.T) {
	mockRepo := new(MockContactRepository)
	s := newContactTestServer(mockRepo)

	app := fiber.New()
	app.Get("/admin/contact-messages/unread-count", s.GetUnreadContactCount)

	mockRepo.On("UnreadCount", mock.Anything).Return(int64(5), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/admin/contact-messages/unread-count", nil)
	resp, _ := app.Test(req)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int64
	_ = json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, int64(5), body["unread"])
}

func TestMarkContactMessageRead(t *testing.T) {
	mockRepo := new(MockContactRepository)
	s := newContactTestServer(mockRepo)

	app := fiber.New()
	app.Post("/admin/contact-messages/:id/read", s.MarkContactMessageRead)

	mockRepo.On("MarkRead", mock.Anything, uint(3)).Return(nil).Once()
	mockRepo.On("GetByID", mock.Anything, uint(3)).
		Return(&models.ContactMessage{ID: 3, Read: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/admin/contact-messages/3/read", nil)
	resp, _ := app.Test(req)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var msg models.ContactMessage
	_ = json.NewDecoder(resp.Body).Decode(&msg)
	assert.True(t, msg.Read)
}
