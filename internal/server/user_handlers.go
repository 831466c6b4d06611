package server

import (
	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userService.GetUser(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	profile, err := s.userService.GetOrCreateProfile(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":    user,
		"profile": profile,
	})
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Bio        *string `json:"bio"`
		PictureRef *string `json:"picture_ref"`
		IsPrivate  *bool   `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.userService.UpdateProfile(c.Context(), userID, service.ProfileUpdate{
		Bio:        req.Bio,
		PictureRef: req.PictureRef,
		IsPrivate:  req.IsPrivate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(profile)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUser(c.Context(), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	visible, err := s.socialService.IsVisible(c.Context(), viewerID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if !visible {
		// The account itself stays discoverable; only profile details are withheld.
		return c.JSON(fiber.Map{
			"user":    user,
			"private": true,
		})
	}

	profile, err := s.userService.GetOrCreateProfile(c.Context(), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":    user,
		"profile": profile,
	})
}

// SearchUsers handles GET /api/users/search?q=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	p := parsePagination(c, 20)

	users, err := s.userService.SearchUsers(c.Context(), query, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"users": users})
}

// SetUserRole handles POST /api/admin/users/:id/role
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if !req.Role.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid role"))
	}

	profile, err := s.userService.GetOrCreateProfile(c.Context(), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	profile.Role = req.Role
	if err := s.profileRepo.Update(c.Context(), profile); err != nil {
		return respondServiceError(c, err)
	}
	cache.InvalidateUser(c.Context(), targetID)

	return c.JSON(profile)
}
