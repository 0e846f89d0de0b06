// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"newswire/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments returns all comments, newest first, with commenting usernames.
func (s *Server) GetComments(c *fiber.Ctx) error {
	comments, err := s.commentRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(comments)
}

// CreateComment creates a comment from comment_text, user_id and post_id.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		CommentText string `json:"comment_text"`
		UserID      uint   `json:"user_id"`
		PostID      uint   `json:"post_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment := &models.Comment{
		CommentText: req.CommentText,
		UserID:      req.UserID,
		PostID:      req.PostID,
	}
	if err := s.commentRepo.Create(c.UserContext(), comment); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(comment)
}

// DeleteComment removes a comment by id and returns the deleted row count.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.commentRepo.Delete(c.UserContext(), id)
	if err != nil {
		if isNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"deleted": count})
}
