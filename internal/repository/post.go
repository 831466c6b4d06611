package repository

import (
	"context"
	"errors"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	ListFeed(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID uint, currentUserID uint, limit, offset int) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	// WithTx binds the repository to an open transaction.
	WithTx(tx *gorm.DB) PostRepository
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{db: tx}
}

// withCounts selects posts together with the derived likes_count,
// comments_count and liked columns. Like is the single source of truth for
// endorsements; counts are never persisted on the post row.
func (r *postRepository) withCounts(ctx context.Context, currentUserID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(`posts.*,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count,
			EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked`,
			currentUserID)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	if err := r.withCounts(ctx, currentUserID).
		Preload("User").
		First(&post, "posts.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// visibleAuthors is the predicate excluding posts whose author the viewer may
// not see: a block in either direction always hides, and a private profile
// hides unless the viewer follows the author. The viewer's own posts are
// always included.
const visibleAuthors = `posts.user_id = ? OR (
	NOT EXISTS (
		SELECT 1 FROM blocks
		WHERE (blocks.blocker_id = posts.user_id AND blocks.blocked_id = ?)
		   OR (blocks.blocker_id = ? AND blocks.blocked_id = posts.user_id)
	)
	AND (
		NOT EXISTS (
			SELECT 1 FROM profiles
			WHERE profiles.user_id = posts.user_id AND profiles.is_private
		)
		OR EXISTS (
			SELECT 1 FROM follows
			WHERE follows.follower_id = ? AND follows.following_id = posts.user_id
		)
	)
)`

func (r *postRepository) ListFeed(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.withCounts(ctx, viewerID).
		Where(visibleAuthors, viewerID, viewerID, viewerID, viewerID).
		Preload("User").
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, currentUserID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.withCounts(ctx, currentUserID).
		Where("posts.user_id = ?", userID).
		Preload("User").
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
