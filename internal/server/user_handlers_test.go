package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"newswire/internal/config"
	"newswire/internal/models"
	"newswire/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// setupHandlerTest wires a Fiber app to mocked repositories. Middleware is
// omitted; these tests exercise routing and handler behavior only.
func setupHandlerTest() (*fiber.App, *MockUserRepository, *MockPostRepository, *MockCommentRepository) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	commentRepo := new(MockCommentRepository)

	srv := &Server{
		config:      &config.Config{Port: "3001"},
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, userRepo, postRepo, commentRepo
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBody
}

func TestGetUsers(t *testing.T) {
	app, userRepo, _, _ := setupHandlerTest()

	userRepo.On("List", mock.Anything).Return([]models.User{
		{ID: 1, Username: "alice", Email: "alice@example.com"},
		{ID: 2, Username: "bob", Email: "bob@example.com"},
	}, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var users []models.User
	require.NoError(t, json.Unmarshal(body, &users))
	assert.Len(t, users, 2)
	userRepo.AssertExpectations(t)
}

func TestGetUser(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("GetByIDWithActivity", mock.Anything, uint(1)).Return(&models.User{
			ID: 1, Username: "alice", Email: "alice@example.com",
		}, nil)

		resp, body := doJSON(t, app, http.MethodGet, "/api/users/1", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "alice")
	})

	t.Run("Not found", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("GetByIDWithActivity", mock.Anything, uint(99)).
			Return(nil, models.NewNotFoundError("user", uint(99)))

		resp, body := doJSON(t, app, http.MethodGet, "/api/users/99", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, string(body), "No user found with this id (99)")
	})

	t.Run("Non-numeric id", func(t *testing.T) {
		app, _, _, _ := setupHandlerTest()
		resp, _ := doJSON(t, app, http.MethodGet, "/api/users/abc", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateUser(t *testing.T) {
	t.Run("Success responds 200 without password", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) {
				u := args.Get(1).(*models.User)
				u.ID = 1
				u.Password = "$2a$10$fakedhashvalue"
			}).Return(nil)

		resp, body := doJSON(t, app, http.MethodPost, "/api/users", fiber.Map{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "password1234",
		})
		// Successful creates respond 200, not 201.
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "alice")
		assert.NotContains(t, string(body), "password")
		assert.NotContains(t, string(body), "$2a$10$fakedhashvalue")
	})

	t.Run("Constraint failure responds 500", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
			Return(models.NewValidationError("password must be at least 4 characters long"))

		resp, body := doJSON(t, app, http.MethodPost, "/api/users", fiber.Map{
			"username": "alice",
			"email":    "alice@example.com",
			"password": "abc",
		})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, string(body), "at least 4 characters")
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password1234"), 10)
	require.NoError(t, err)
	stored := &models.User{ID: 1, Username: "alice", Email: "alice@example.com", Password: string(hash)}

	t.Run("Success", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

		resp, body := doJSON(t, app, http.MethodPost, "/api/users/login", fiber.Map{
			"email":    "alice@example.com",
			"password": "password1234",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "You are now logged in")
	})

	t.Run("Wrong password", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

		resp, body := doJSON(t, app, http.MethodPost, "/api/users/login", fiber.Map{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "Incorrect password")
		assert.Contains(t, string(body), "UNAUTHORIZED")
	})

	t.Run("Unknown email", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

		resp, body := doJSON(t, app, http.MethodPost, "/api/users/login", fiber.Map{
			"email":    "ghost@example.com",
			"password": "password1234",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "No user with that email address")
		assert.Contains(t, string(body), "UNAUTHORIZED")
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("Update", mock.Anything, uint(1), mock.AnythingOfType("repository.UserUpdate")).
			Return(&models.User{ID: 1, Username: "renamed", Email: "alice@example.com"}, nil)

		resp, body := doJSON(t, app, http.MethodPut, "/api/users/1", fiber.Map{
			"username": "renamed",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "renamed")
	})

	t.Run("Not found", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("Update", mock.Anything, uint(99), mock.AnythingOfType("repository.UserUpdate")).
			Return(nil, models.NewNotFoundError("user", uint(99)))

		resp, _ := doJSON(t, app, http.MethodPut, "/api/users/99", fiber.Map{
			"username": "renamed",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("Delete", mock.Anything, uint(1)).Return(int64(1), nil)

		resp, body := doJSON(t, app, http.MethodDelete, "/api/users/1", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]int64
		require.NoError(t, json.Unmarshal(body, &result))
		assert.Equal(t, int64(1), result["deleted"])
	})

	t.Run("Not found", func(t *testing.T) {
		app, userRepo, _, _ := setupHandlerTest()
		userRepo.On("Delete", mock.Anything, uint(99)).
			Return(int64(0), models.NewNotFoundError("user", uint(99)))

		resp, _ := doJSON(t, app, http.MethodDelete, "/api/users/99", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

var _ repository.UserRepository = (*MockUserRepository)(nil)
var _ repository.PostRepository = (*MockPostRepository)(nil)
var _ repository.CommentRepository = (*MockCommentRepository)(nil)
