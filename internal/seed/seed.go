// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"newswire/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	NumComments int
	ShouldClean bool
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db: db,
		r:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with a hashed demo password.
func (f *Factory) CreateUser(password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		Password: string(hashed),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post owned by the given user with a created_at spread
// over the past maxDays days so listings look lived-in.
func (f *Factory) CreatePost(user *models.User, maxDays int) (*models.Post, error) {
	if maxDays <= 0 {
		maxDays = 30
	}
	post := &models.Post{
		Title:   gofakeit.Sentence(5),
		PostURL: gofakeit.URL(),
		UserID:  user.ID,
	}
	daysBack := f.r.Intn(maxDays)
	hoursBack := f.r.Intn(24)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by the given user on the given post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		CommentText: gofakeit.Sentence(10),
		UserID:      user.ID,
		PostID:      post.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateVote records a vote, ignoring duplicate (user, post) pairs.
func (f *Factory) CreateVote(user *models.User, post *models.Post) error {
	vote := &models.Vote{UserID: user.ID, PostID: post.ID}
	if err := f.db.Create(vote).Error; err != nil {
		// duplicate pairs are expected when seeding random votes
		return nil
	}
	return nil
}

// Run seeds the database with demo users, posts, votes and comments.
func Run(db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		if err := db.Exec("DELETE FROM votes").Error; err != nil {
			return fmt.Errorf("cleaning votes: %w", err)
		}
		if err := db.Exec("DELETE FROM comments").Error; err != nil {
			return fmt.Errorf("cleaning comments: %w", err)
		}
		if err := db.Exec("DELETE FROM posts").Error; err != nil {
			return fmt.Errorf("cleaning posts: %w", err)
		}
		if err := db.Exec("DELETE FROM users").Error; err != nil {
			return fmt.Errorf("cleaning users: %w", err)
		}
	}

	f := NewFactory(db)

	// Posts need owners and comments need posts; refuse combinations that
	// would leave nothing to pick from.
	if opts.NumUsers <= 0 && (opts.NumPosts > 0 || opts.NumComments > 0) {
		return fmt.Errorf("cannot seed posts or comments without users")
	}
	if opts.NumPosts <= 0 && opts.NumComments > 0 {
		return fmt.Errorf("cannot seed comments without posts")
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser("password1234")
		if err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, u)
	}
	log.Printf("Seeded %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		owner := users[f.r.Intn(len(users))]
		p, err := f.CreatePost(owner, 30)
		if err != nil {
			return fmt.Errorf("seeding post: %w", err)
		}
		posts = append(posts, p)
	}
	log.Printf("Seeded %d posts", len(posts))

	for i := 0; i < opts.NumComments; i++ {
		author := users[f.r.Intn(len(users))]
		post := posts[f.r.Intn(len(posts))]
		if _, err := f.CreateComment(author, post); err != nil {
			return fmt.Errorf("seeding comment: %w", err)
		}
	}
	log.Printf("Seeded %d comments", opts.NumComments)

	votes := 0
	for _, post := range posts {
		for _, user := range users {
			if f.r.Intn(3) == 0 {
				if err := f.CreateVote(user, post); err != nil {
					return fmt.Errorf("seeding vote: %w", err)
				}
				votes++
			}
		}
	}
	log.Printf("Seeded ~%d votes", votes)

	return nil
}
