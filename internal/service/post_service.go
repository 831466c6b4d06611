package service

import (
	"context"
	"fmt"
	"time"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"gorm.io/gorm"
)

const (
	maxPostLength    = 2000
	maxCommentLength = 1000
)

// ActivityRecorder appends audit-trail entries for user actions.
type ActivityRecorder interface {
	LogActivity(ctx context.Context, userID uint, action string) error
	// LogActivityTx writes the entry through an open transaction so it
	// commits or rolls back together with the triggering write.
	LogActivityTx(ctx context.Context, tx *gorm.DB, userID uint, action string) error
}

// PostService handles posts, comments and likes. Every mutating operation
// runs in a single transaction covering the write and its side effects
// (activity log entry, notification).
type PostService struct {
	db       *gorm.DB
	posts    repository.PostRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	users    repository.UserRepository
	notifier Notifier
	recorder ActivityRecorder

	// isVisible decides whether a viewer may see an author's content.
	isVisible func(ctx context.Context, viewerID, authorID uint) (bool, error)
	// isAdmin decides whether a user holds the admin role.
	isAdmin func(ctx context.Context, userID uint) (bool, error)
}

// NewPostService creates a new post service
func NewPostService(
	db *gorm.DB,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
	notifier Notifier,
	recorder ActivityRecorder,
	isVisible func(ctx context.Context, viewerID, authorID uint) (bool, error),
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		db:        db,
		posts:     posts,
		comments:  comments,
		likes:     likes,
		users:     users,
		notifier:  notifier,
		recorder:  recorder,
		isVisible: isVisible,
		isAdmin:   isAdmin,
	}
}

// CreatePost publishes a new post and records it in the activity log, both
// in one transaction.
func (s *PostService) CreatePost(ctx context.Context, userID uint, content, imageRef string) (*models.Post, error) {
	if content == "" {
		return nil, models.NewValidationError("Post content cannot be empty")
	}
	if len(content) > maxPostLength {
		return nil, models.NewValidationError("Post content must be at most 2000 characters")
	}

	post := &models.Post{
		Content:  content,
		ImageRef: imageRef,
		UserID:   userID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.posts.WithTx(tx).Create(ctx, post); err != nil {
			return err
		}
		return s.recorder.LogActivityTx(ctx, tx, userID, fmt.Sprintf("Created post %d", post.ID))
	})
	if err != nil {
		return nil, txError(err)
	}
	return post, nil
}

// visiblePost loads a post and enforces the viewer's visibility. A hidden
// post is reported as not found, identical to a missing one.
func (s *PostService) visiblePost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	visible, err := s.isVisible(ctx, viewerID, post.UserID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// GetPost returns a single post with its derived counts.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	return s.visiblePost(ctx, viewerID, postID)
}

// AddComment attaches a comment to a visible post, records it in the
// activity log and notifies the post's author, all in one transaction.
// Commenting on one's own post produces no notification.
func (s *PostService) AddComment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, models.NewValidationError("Comment content cannot be empty")
	}
	if len(content) > maxCommentLength {
		return nil, models.NewValidationError("Comment content must be at most 1000 characters")
	}

	post, err := s.visiblePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	var author *models.User
	if post.UserID != userID {
		if author, err = s.users.GetByID(ctx, userID); err != nil {
			return nil, err
		}
	}

	comment := &models.Comment{
		Content: content,
		UserID:  userID,
		PostID:  postID,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.comments.WithTx(tx).Create(ctx, comment); err != nil {
			return err
		}
		if err := s.recorder.LogActivityTx(ctx, tx, userID, fmt.Sprintf("Commented on post %d", postID)); err != nil {
			return err
		}
		if author != nil {
			message := fmt.Sprintf("%s commented on your post.", author.Username)
			return s.notifier.NotifyTx(ctx, tx, post.UserID, message, "comment")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}
	return comment, nil
}

// ListComments returns a visible post's comments, oldest first.
func (s *PostService) ListComments(ctx context.Context, viewerID, postID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, limit, offset)
}

// ToggleLike flips the caller's like on a post and returns the resulting
// state. A fresh like notifies the post's author in the same transaction;
// liking one's own post does not notify.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	post, err := s.visiblePost(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	var liker *models.User
	if post.UserID != userID {
		if liker, err = s.users.GetByID(ctx, userID); err != nil {
			return false, err
		}
	}

	liked := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		likes := s.likes.WithTx(tx)
		created, err := likes.Insert(ctx, userID, postID)
		if err != nil {
			return err
		}
		if !created {
			// Already liked; the toggle removes it.
			_, err := likes.Remove(ctx, userID, postID)
			return err
		}
		liked = true
		if liker != nil {
			message := fmt.Sprintf("%s liked your post.", liker.Username)
			return s.notifier.NotifyTx(ctx, tx, post.UserID, message, "like")
		}
		return nil
	})
	if err != nil {
		return false, txError(err)
	}
	return liked, nil
}

// ListFeed returns the posts visible to the viewer, newest first.
func (s *PostService) ListFeed(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	start := time.Now()
	posts, err := s.posts.ListFeed(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	observability.FeedQueryLatency.Observe(time.Since(start).Seconds())
	return posts, nil
}

// ListUserPosts returns one author's posts, subject to the viewer's
// visibility.
func (s *PostService) ListUserPosts(ctx context.Context, viewerID, authorID uint, limit, offset int) ([]*models.Post, error) {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return nil, err
	}
	visible, err := s.isVisible(ctx, viewerID, authorID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewForbiddenError("You cannot view this user's posts")
	}
	return s.posts.ListByUser(ctx, authorID, viewerID, limit, offset)
}

// DeletePost soft-deletes a post and records the deletion in the activity
// log, in one transaction. Only the author or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, callerID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID, callerID)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		admin, err := s.isAdmin(ctx, callerID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("Only the author or an admin can delete a post")
		}
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.posts.WithTx(tx).Delete(ctx, postID); err != nil {
			return err
		}
		return s.recorder.LogActivityTx(ctx, tx, callerID, fmt.Sprintf("Deleted post %d", postID))
	})
	return txError(err)
}
