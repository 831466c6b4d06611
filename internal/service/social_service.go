package service

import (
	"context"
	"errors"
	"fmt"

	"ripple/internal/models"
	"ripple/internal/repository"

	"gorm.io/gorm"
)

// SocialService handles the follow and block graphs.
type SocialService struct {
	db       *gorm.DB
	users    repository.UserRepository
	profiles repository.ProfileRepository
	follows  repository.FollowRepository
	blocks   repository.BlockRepository
	notifier Notifier
}

// NewSocialService creates a new social service
func NewSocialService(db *gorm.DB, users repository.UserRepository, profiles repository.ProfileRepository, follows repository.FollowRepository, blocks repository.BlockRepository, notifier Notifier) *SocialService {
	return &SocialService{
		db:       db,
		users:    users,
		profiles: profiles,
		follows:  follows,
		blocks:   blocks,
		notifier: notifier,
	}
}

// Follow creates a follow edge. Re-following is a silent no-op; a new edge
// notifies the target in the same transaction.
func (s *SocialService) Follow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return models.NewInvalidOperationError("Cannot follow yourself")
	}
	follower, err := s.users.GetByID(ctx, followerID)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, followingID); err != nil {
		return err
	}

	blocked, err := s.blocks.ExistsBetween(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if blocked {
		return models.NewInvalidOperationError("Cannot follow this user")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, txErr := s.follows.WithTx(tx).Insert(ctx, followerID, followingID)
		if txErr != nil {
			return txErr
		}
		if !created {
			return nil
		}
		message := fmt.Sprintf("%s started following you.", follower.Username)
		return s.notifier.NotifyTx(ctx, tx, followingID, message, "follow")
	})
	return txError(err)
}

// Unfollow removes a follow edge. Removing a non-existent edge succeeds.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return models.NewInvalidOperationError("Cannot unfollow yourself")
	}
	_, err := s.follows.Remove(ctx, followerID, followingID)
	return err
}

// Block creates a block edge, severs any follow relationship between the
// two users and, when the edge is new, notifies the blocked user, all in
// one transaction.
func (s *SocialService) Block(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return models.NewInvalidOperationError("Cannot block yourself")
	}
	blocker, err := s.users.GetByID(ctx, blockerID)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, blockedID); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, txErr := s.blocks.WithTx(tx).Insert(ctx, blockerID, blockedID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.follows.WithTx(tx).RemoveBetween(ctx, blockerID, blockedID); txErr != nil {
			return txErr
		}
		if !created {
			return nil
		}
		message := fmt.Sprintf("You have been blocked by %s.", blocker.Username)
		return s.notifier.NotifyTx(ctx, tx, blockedID, message, "block")
	})
	return txError(err)
}

// Unblock removes a block edge. Removing a non-existent edge succeeds.
func (s *SocialService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return models.NewInvalidOperationError("Cannot unblock yourself")
	}
	_, err := s.blocks.Remove(ctx, blockerID, blockedID)
	return err
}

// IsVisible reports whether viewerID may see authorID's content. Blocks in
// either direction hide everything; a private profile is visible only to
// its followers. A user always sees their own content.
func (s *SocialService) IsVisible(ctx context.Context, viewerID, authorID uint) (bool, error) {
	if viewerID == authorID {
		return true, nil
	}

	blocked, err := s.blocks.ExistsBetween(ctx, viewerID, authorID)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, nil
	}

	profile, err := s.profiles.GetByUserID(ctx, authorID)
	if err != nil {
		var appErr *models.AppError
		// No profile row yet means the account never opted into privacy.
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return true, nil
		}
		return false, err
	}
	if !profile.IsPrivate {
		return true, nil
	}
	return s.follows.Exists(ctx, viewerID, authorID)
}

// ListFollowers returns the users following userID.
func (s *SocialService) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.follows.ListFollowers(ctx, userID, limit, offset)
}

// ListFollowing returns the users userID follows.
func (s *SocialService) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.follows.ListFollowing(ctx, userID, limit, offset)
}

// ListBlocked returns the caller's active blocks.
func (s *SocialService) ListBlocked(ctx context.Context, userID uint, limit, offset int) ([]models.Block, error) {
	return s.blocks.ListByBlocker(ctx, userID, limit, offset)
}
