// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"newswire/internal/middleware"
	"newswire/internal/models"
	"newswire/internal/repository"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetUsers returns all users with the password column excluded.
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.userRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(users)
}

// GetUser returns one user together with their posts, comments and voted posts.
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByIDWithActivity(c.UserContext(), id)
	if err != nil {
		if isNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(user)
}

// CreateUser registers a new user. The password is hashed before the record is
// stored; the response object carries the hash internally but never serializes it.
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	// Field-constraint failures surface with the same 500 status as any other
	// persistence error; the API performs no finer classification on create.
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(user)
}

// Login verifies an email/password pair. No session or token is issued; this
// is stateless per-request verification only.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		middleware.LoginAttemptsTotal.WithLabelValues("no_such_user").Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewUnauthorizedError("No user with that email address"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		middleware.LoginAttemptsTotal.WithLabelValues("bad_password").Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewUnauthorizedError("Incorrect password"))
	}

	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(fiber.Map{
		"user":    user,
		"message": "You are now logged in",
	})
}

// UpdateUser applies a partial update to a user and always sends a response.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.Update(c.UserContext(), id, repository.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if isNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(user)
}

// DeleteUser removes a user by id and returns the deleted row count. Posts and
// comments cascade at the database level; vote rows stay behind and are simply
// never joined again.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.userRepo.Delete(c.UserContext(), id)
	if err != nil {
		if isNotFound(err) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"deleted": count})
}
