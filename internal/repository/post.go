// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"newswire/internal/models"
	"newswire/internal/validation"

	"gorm.io/gorm"
)

// voteCountSelect appends the derived vote_count column to post queries as a
// correlated subquery, so the count is computed at read time and never stored.
const voteCountSelect = "posts.*, " +
	"(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id) AS vote_count"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	List(ctx context.Context) ([]*models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	UpdateTitle(ctx context.Context, id uint, title string) (*models.Post, error)
	Delete(ctx context.Context, id uint) (int64, error)
	Upvote(ctx context.Context, userID, postID uint) (*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds the vote_count subquery and the eager loads every post
// read carries: the owning user's username and the post's comments with each
// commenting user's username.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.
		Select(voteCountSelect).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		})
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.applyPostDetails(r.db.WithContext(ctx).Model(&models.Post{})).
		Order("posts.created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.applyPostDetails(r.db.WithContext(ctx).Model(&models.Post{})).
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Title == "" {
		return models.NewValidationError("title is required")
	}
	if err := validation.ValidateURL(post.PostURL); err != nil {
		return models.NewValidationError(err.Error())
	}

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateTitle changes a post's title; all other columns, created_at included,
// stay untouched.
func (r *postRepository) UpdateTitle(ctx context.Context, id uint, title string) (*models.Post, error) {
	if title == "" {
		return nil, models.NewValidationError("title is required")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("title", title)
	if result.Error != nil {
		return nil, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, models.NewNotFoundError("post", id)
	}

	return r.GetByID(ctx, id)
}

func (r *postRepository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, models.NewNotFoundError("post", id)
	}
	return result.RowsAffected, nil
}

// Upvote records a vote for the (user, post) pair and re-fetches the post with
// the recomputed vote_count. The two steps deliberately run outside a single
// transaction: a crash in between leaves the vote durable and the caller
// recovers the count by re-querying.
func (r *postRepository) Upvote(ctx context.Context, userID, postID uint) (*models.Post, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Count(&count).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if count == 0 {
		return nil, models.NewNotFoundError("post", postID)
	}

	vote := models.Vote{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Create(&vote).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewValidationError("this user has already voted on this post")
		}
		return nil, models.NewInternalError(err)
	}

	return r.GetByID(ctx, postID)
}
