// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"newswire/internal/middleware"
	"newswire/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPosts returns all posts, newest first, each with its derived vote_count,
// the author's username and nested comments.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(posts)
}

// GetPost returns a single post by id with the same shape as the listing.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.UserContext(), id)
	if err != nil {
		if isNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(post)
}

// CreatePost creates a post from title, post_url and user_id.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title   string `json:"title"`
		PostURL string `json:"post_url"`
		UserID  uint   `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post := &models.Post{
		Title:   req.Title,
		PostURL: req.PostURL,
		UserID:  req.UserID,
	}
	if err := s.postRepo.Create(c.UserContext(), post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(post)
}

// UpvotePost records a vote for a (user, post) pair and returns the post with
// its freshly recomputed vote_count. Any failure, a duplicate vote included,
// maps to 400.
func (s *Server) UpvotePost(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"user_id"`
		PostID uint `json:"post_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postRepo.Upvote(c.UserContext(), req.UserID, req.PostID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	middleware.VotesCastTotal.Inc()
	return c.JSON(post)
}

// UpdatePost updates a post's title. Other fields, created_at included, are
// immutable through this endpoint.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title string `json:"title"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postRepo.UpdateTitle(c.UserContext(), id, req.Title)
	if err != nil {
		if isNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(post)
}

// DeletePost removes a post by id and returns the deleted row count.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.postRepo.Delete(c.UserContext(), id)
	if err != nil {
		if isNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"deleted": count})
}
