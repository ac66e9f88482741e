package seed

import (
	"context"
	"fmt"
	"log"

	"fluss/internal/models"
	"fluss/internal/repository"

	"gorm.io/gorm"
)

// Seeder populates the database with generated users, posts and fame votes.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder for the given database.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 100
	}
	if opts.FameCasts < 0 {
		opts.FameCasts = 0
	}
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// Run executes a full seeding pass.
func (s *Seeder) Run(ctx context.Context) error {
	if s.opts.Clean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	users, err := s.seedUsers(s.opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	posts, err := s.seedPosts(users, s.opts.NumPosts)
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	if err := s.seedFame(ctx, users, posts, s.opts.FameCasts); err != nil {
		return fmt.Errorf("seed fame: %w", err)
	}

	log.Printf("seed: done (%d users, %d posts, %d fame casts)",
		len(users), len(posts), s.opts.FameCasts)
	return nil
}

// ClearAll removes all seeded entities. Ordering respects foreign keys.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{&models.Fame{}, &models.Post{}, &models.User{}} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	log.Println("seed: cleared existing data")
	return nil
}

func (s *Seeder) seedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	log.Printf("seed: created %d users", len(users))
	return users, nil
}

func (s *Seeder) seedPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		owner := users[s.factory.rand.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(owner))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// seedFame casts random votes through the fame repository so the
// denormalized tallies stay consistent with the ledger.
func (s *Seeder) seedFame(ctx context.Context, users []*models.User, posts []*models.Post, n int) error {
	if len(users) == 0 || len(posts) == 0 || n == 0 {
		return nil
	}

	fameRepo := repository.NewFameRepository(s.db)
	for i := 0; i < n; i++ {
		voter := users[s.factory.rand.Intn(len(users))]
		post := posts[s.factory.rand.Intn(len(posts))]

		value := models.FameUp
		// Downvotes are rarer than upvotes in organic traffic.
		if s.factory.rand.Intn(4) == 0 {
			value = models.FameDown
		}

		if _, _, err := fameRepo.Cast(ctx, voter.ID, post.ID, value); err != nil {
			return err
		}
	}
	return nil
}
