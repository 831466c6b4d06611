package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendMessage handles POST /api/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	senderID := currentUserID(c)

	var req struct {
		ReceiverID uint   `json:"receiver_id"`
		Content    string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ReceiverID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("receiver_id is required"))
	}

	message, err := s.messageService.SendMessage(c.Context(), senderID, req.ReceiverID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetInbox handles GET /api/messages/inbox
func (s *Server) GetInbox(c *fiber.Ctx) error {
	userID := currentUserID(c)
	p := parsePagination(c, 20)

	messages, err := s.messageService.ListInbox(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"messages": messages})
}

// GetSentMessages handles GET /api/messages/sent
func (s *Server) GetSentMessages(c *fiber.Ctx) error {
	userID := currentUserID(c)
	p := parsePagination(c, 20)

	messages, err := s.messageService.ListSent(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"messages": messages})
}
