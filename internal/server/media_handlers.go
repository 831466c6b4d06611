package server

import (
	"io"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media. The uploaded file is content-addressed
// and the returned ref can be attached to posts and profiles.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A file upload is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	ref, err := s.blobs.Store(c.Context(), content, fileHeader.Filename)
	if err != nil {
		return respondServiceError(c, err)
	}

	url, err := s.blobs.Resolve(ref)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ref": ref,
		"url": url,
	})
}
