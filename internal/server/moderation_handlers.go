package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReport handles POST /api/reports
func (s *Server) CreateReport(c *fiber.Ctx) error {
	reporterID := currentUserID(c)

	var req struct {
		PostID         *uint  `json:"post_id"`
		CommentID      *uint  `json:"comment_id"`
		ReportedUserID *uint  `json:"reported_user_id"`
		Reason         string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationService.Report(c.Context(), reporterID, service.ReportInput{
		PostID:         req.PostID,
		CommentID:      req.CommentID,
		ReportedUserID: req.ReportedUserID,
		Reason:         req.Reason,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReports handles GET /api/admin/reports
func (s *Server) GetReports(c *fiber.Ctx) error {
	callerID := currentUserID(c)
	status := models.ReportStatus(c.Query("status"))
	p := parsePagination(c, 20)

	reports, err := s.moderationService.ListReports(c.Context(), callerID, status, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"reports": reports})
}

// ResolveReport handles POST /api/admin/reports/:id/resolve
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	callerID := currentUserID(c)
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status models.ReportStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, svcErr := s.moderationService.ResolveReport(c.Context(), callerID, reportID, req.Status)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(report)
}
