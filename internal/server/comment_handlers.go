package server

import (
	"github.com/gofiber/fiber/v2"

	"koinonia/internal/feed"
	"koinonia/internal/models"
	"koinonia/internal/service"
)

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	comments, err := s.feedService.ListComments(ctx, postID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.feedService.AddComment(ctx, service.AddCommentInput{
		AuthorID: userID,
		PostID:   postID,
		Content:  req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	count, countErr := s.commentRepo.CountByPost(ctx, postID)
	payload := feed.PostEventPayload{PostID: postID}
	if countErr == nil {
		commentsCount := int(count)
		payload.CommentsCount = &commentsCount
	}
	s.publishFeedEvent(feed.EventCommentCreated, payload)

	return c.Status(fiber.StatusCreated).JSON(comment)
}
