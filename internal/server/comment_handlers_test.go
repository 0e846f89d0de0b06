package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"newswire/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetComments(t *testing.T) {
	app, _, _, commentRepo := setupHandlerTest()

	commentRepo.On("List", mock.Anything).Return([]*models.Comment{
		{ID: 1, CommentText: "first!", UserID: 1, PostID: 1},
	}, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/comments", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "first!")
}

func TestCreateComment(t *testing.T) {
	t.Run("Success responds 200", func(t *testing.T) {
		app, _, _, commentRepo := setupHandlerTest()
		commentRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Comment")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Comment).ID = 1
			}).Return(nil)

		resp, body := doJSON(t, app, http.MethodPost, "/api/comments", fiber.Map{
			"comment_text": "well said",
			"user_id":      1,
			"post_id":      1,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "well said")
	})

	t.Run("Missing text responds 500", func(t *testing.T) {
		app, _, _, commentRepo := setupHandlerTest()
		commentRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Comment")).
			Return(models.NewValidationError("comment_text is required"))

		resp, body := doJSON(t, app, http.MethodPost, "/api/comments", fiber.Map{
			"user_id": 1,
			"post_id": 1,
		})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, string(body), "comment_text")
	})
}

func TestDeleteComment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		app, _, _, commentRepo := setupHandlerTest()
		commentRepo.On("Delete", mock.Anything, uint(1)).Return(int64(1), nil)

		resp, body := doJSON(t, app, http.MethodDelete, "/api/comments/1", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]int64
		require.NoError(t, json.Unmarshal(body, &result))
		assert.Equal(t, int64(1), result["deleted"])
	})

	t.Run("Not found", func(t *testing.T) {
		app, _, _, commentRepo := setupHandlerTest()
		commentRepo.On("Delete", mock.Anything, uint(99)).
			Return(int64(0), models.NewNotFoundError("comment", uint(99)))

		resp, _ := doJSON(t, app, http.MethodDelete, "/api/comments/99", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
