package server

import (
	"fmt"
	"io"
	"strings"

	"koinonia/internal/models"
	"koinonia/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxUploadSize = 10 << 20 // 10 MB

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"audio/mpeg": true,
	"audio/ogg":  true,
}

// UploadMedia handles POST /api/uploads. Accepts a multipart form with a
// "file" field. Images are scaled down and re-encoded as JPEG plus WebP
// before storage; audio is stored as-is.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	if s.s3 == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fmt.Errorf("media storage not configured")))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A file is required"))
	}

	if fileHeader.Size > maxUploadSize {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("File too large (max 10 MB)"))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unsupported file type"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer file.Close()

	if strings.HasPrefix(contentType, "image/") {
		return s.uploadImage(c, file)
	}

	url, err := s.s3.Upload(file, fileHeader.Filename, contentType)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url": url,
	})
}

func (s *Server) uploadImage(c *fiber.Ctx, file io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if len(data) > maxUploadSize {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("File too large (max 10 MB)"))
	}

	processed, err := storage.ProcessImage(data)
	if err != nil {
		return respondServiceError(c, err)
	}

	baseKey := "media/" + uuid.NewString()
	url, err := s.s3.UploadBytes(processed.JPEG, baseKey+".jpg", "image/jpeg")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	webpURL, err := s.s3.UploadBytes(processed.WebP, baseKey+".webp", "image/webp")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url":      url,
		"webp_url": webpURL,
		"width":    processed.Width,
		"height":   processed.Height,
	})
}
