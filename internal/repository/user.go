// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"newswire/internal/models"
	"newswire/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost is the adaptive cost factor used when hashing passwords.
const bcryptCost = 10

// UserUpdate carries the fields of a partial user update. Nil fields are left
// untouched.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDWithActivity(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uint, update UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Select("id", "username", "email", "created_at", "updated_at").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByIDWithActivity(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", id)
		}
		return nil, models.NewInternalError(err)
	}

	// "Voted posts" is a many-to-many through votes; expressed here as an
	// explicit join rather than a GORM association.
	var voted []models.Post
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN votes ON votes.post_id = posts.id").
		Where("votes.user_id = ?", id).
		Order("votes.created_at DESC").
		Find(&voted).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	user.VotedPosts = voted

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Create validates the user's fields, hashes the password and inserts the row.
// The hashing step happens here, at the call site of the insert, so the
// plaintext never reaches durable storage. After Create returns, user.Password
// holds the hash.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.Username == "" {
		return models.NewValidationError("username is required")
	}
	if err := validation.ValidateEmail(user.Email); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(user.Password); err != nil {
		return models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("a user with this email already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Update applies a partial update. A supplied password is re-hashed; the
// stored hash is never regenerated otherwise.
func (r *userRepository) Update(ctx context.Context, id uint, update UserUpdate) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", id)
		}
		return nil, models.NewInternalError(err)
	}

	if update.Username != nil {
		if *update.Username == "" {
			return nil, models.NewValidationError("username is required")
		}
		user.Username = *update.Username
	}
	if update.Email != nil {
		if err := validation.ValidateEmail(*update.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = *update.Email
	}
	if update.Password != nil {
		if err := validation.ValidatePassword(*update.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcryptCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if err := r.db.WithContext(ctx).Save(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewValidationError("a user with this email already exists")
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, models.NewNotFoundError("user", id)
	}
	return result.RowsAffected, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports
	// "UNIQUE constraint failed".
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
