package seed

import (
	"fmt"
	"log"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// Seed populates the database with test data: a social mesh of users,
// posts with engagement, messages and notifications. The first created
// user is promoted to admin so moderation endpoints are exercisable.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil
	}

	// Promote the first user so there is always one working admin login.
	admin := users[0]
	if err := db.Model(&models.Profile{}).
		Where("user_id = ?", admin.ID).
		Update("role", models.RoleAdmin).Error; err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	log.Printf("Admin user: %s (%s)", admin.Username, admin.Email)

	// Follow mesh: each user follows a handful of others.
	for _, u := range users {
		for j := 0; j < 3 && len(users) > 1; j++ {
			target := users[f.rng.Intn(len(users))]
			if err := f.CreateFollow(u, target); err != nil {
				return fmt.Errorf("create follow: %w", err)
			}
		}
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rng.Intn(len(users))]
		post, err := f.CreatePost(author)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}

	// Engagement: comments and likes on random posts.
	for _, post := range posts {
		for j := 0; j < f.rng.Intn(4); j++ {
			commenter := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(commenter, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
		}
		for j := 0; j < f.rng.Intn(6); j++ {
			liker := users[f.rng.Intn(len(users))]
			if err := f.CreateLike(liker, post); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
		}
	}

	// A few direct messages between random pairs.
	for i := 0; i < opts.NumUsers; i++ {
		sender := users[f.rng.Intn(len(users))]
		receiver := users[f.rng.Intn(len(users))]
		if sender.ID == receiver.ID {
			continue
		}
		if _, err := f.CreateMessage(sender, receiver); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		if err := f.CreateNotification(receiver, fmt.Sprintf("New message from %s.", sender.Username)); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
	}

	log.Printf("Seeding complete: %d users, %d posts", len(users), len(posts))
	return nil
}

// clearData removes all rows in dependency order.
func clearData(db *gorm.DB) error {
	tables := []interface{}{
		&models.Notification{},
		&models.ActivityLog{},
		&models.Report{},
		&models.Message{},
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
		&models.Block{},
		&models.Post{},
		&models.Profile{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}
