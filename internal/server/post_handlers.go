package server

import (
	"koinonia/internal/feed"

	"github.com/gofiber/fiber/v2"

	"koinonia/internal/models"
	"koinonia/internal/service"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title     string   `json:"title"`
		Content   string   `json:"content"`
		Category  string   `json:"category,omitempty"`
		MediaURLs []string `json:"media_urls,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.feedService.CreatePost(ctx, service.CreatePostInput{
		AuthorID:  userID,
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		MediaURLs: req.MediaURLs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(feed.EventPostCreated, feed.PostEventPayload{PostID: post.ID})

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, _ := s.optionalUserID(c)

	posts, err := s.feedService.ListFeed(ctx, service.ListFeedInput{CurrentUserID: userID})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetAllPostsAdmin handles GET /api/admin/posts, returning hidden posts too.
func (s *Server) GetAllPostsAdmin(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	posts, err := s.feedService.ListFeed(ctx, service.ListFeedInput{
		CurrentUserID: userID,
		IncludeHidden: true,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetFeedSnapshot handles GET /api/feed, serving the bridge's live snapshot.
// A failed refresh leaves the bridge in the error state with the last good
// snapshot retained; that snapshot is still served, flagged as stale, so
// clients can render it while showing the problem.
func (s *Server) GetFeedSnapshot(c *fiber.Ctx) error {
	posts, state, err := s.feedBridge.Snapshot()
	if state == feed.StateError {
		if len(posts) == 0 {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable,
				models.NewInternalError(err))
		}
		return c.JSON(fiber.Map{
			"state": state.String(),
			"posts": posts,
			"error": "feed refresh failed; data may be stale",
		})
	}
	return c.JSON(fiber.Map{
		"state": state.String(),
		"posts": posts,
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := s.optionalUserID(c)

	post, err := s.feedService.GetPost(ctx, id, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post not found"))
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title     string   `json:"title"`
		Content   string   `json:"content"`
		Category  string   `json:"category,omitempty"`
		MediaURLs []string `json:"media_urls,omitempty"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.feedService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:    userID,
		PostID:    postID,
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		MediaURLs: req.MediaURLs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(feed.EventPostUpdated, feed.PostEventPayload{PostID: post.ID})

	return c.JSON(post)
}

// SetPostVisibility handles PUT /api/posts/:id/visibility
func (s *Server) SetPostVisibility(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Visible *bool `json:"visible"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil || req.Visible == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("visible is required"))
	}

	post, err := s.feedService.SetVisibility(ctx, userID, postID, *req.Visible)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(feed.EventPostVisibility, feed.PostEventPayload{
		PostID:  post.ID,
		Visible: req.Visible,
	})

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.feedService.DeletePost(ctx, userID, postID); err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(feed.EventPostDeleted, feed.PostEventPayload{PostID: postID})

	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like.
// If the post is already liked it is unliked, and vice versa.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.feedService.ToggleLike(ctx, userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishFeedEvent(feed.EventPostLiked, feed.PostEventPayload{
		PostID:     post.ID,
		LikesCount: &post.LikesCount,
	})

	return c.JSON(post)
}
