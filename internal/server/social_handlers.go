package server

import (
	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	followerID := currentUserID(c)
	followingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.socialService.Follow(c.Context(), followerID, followingID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Following"})
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	followerID := currentUserID(c)
	followingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.socialService.Unfollow(c.Context(), followerID, followingID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unfollowed"})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	users, svcErr := s.socialService.ListFollowers(c.Context(), userID, p.Limit, p.Offset)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(fiber.Map{"followers": users})
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	users, svcErr := s.socialService.ListFollowing(c.Context(), userID, p.Limit, p.Offset)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(fiber.Map{"following": users})
}

// BlockUser handles POST /api/users/:id/block
func (s *Server) BlockUser(c *fiber.Ctx) error {
	blockerID := currentUserID(c)
	blockedID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.socialService.Block(c.Context(), blockerID, blockedID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Blocked"})
}

// UnblockUser handles DELETE /api/users/:id/block
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	blockerID := currentUserID(c)
	blockedID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.socialService.Unblock(c.Context(), blockerID, blockedID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unblocked"})
}

// GetBlockedUsers handles GET /api/blocks
func (s *Server) GetBlockedUsers(c *fiber.Ctx) error {
	userID := currentUserID(c)
	p := parsePagination(c, 20)

	blocks, err := s.socialService.ListBlocked(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"blocks": blocks})
}
