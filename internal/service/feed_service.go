// Package service contains the business logic layer between handlers and
// repositories.
package service

import (
	"context"
	"strings"

	"koinonia/internal/cache"
	"koinonia/internal/models"
	"koinonia/internal/repository"
)

type FeedService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreatePostInput struct {
	AuthorID  uint
	Title     string
	Content   string
	Category  string
	MediaURLs []string
}

type UpdatePostInput struct {
	UserID    uint
	PostID    uint
	Title     string
	Content   string
	Category  string
	MediaURLs []string
}

type ListFeedInput struct {
	CurrentUserID uint
	IncludeHidden bool
}

type AddCommentInput struct {
	AuthorID uint
	PostID   uint
	Content  string
}

func NewFeedService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		isAdmin:     isAdmin,
	}
}

const maxPostTitleLen = 200
const maxPostContentLen = 10000
const maxCommentContentLen = 2000

func (s *FeedService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxPostTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultPostCategory
	}

	post := &models.Post{
		Title:     title,
		Content:   content,
		Category:  category,
		MediaURLs: in.MediaURLs,
		AuthorID:  in.AuthorID,
		Visible:   true,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.AuthorID)
}

// ListFeed returns posts newest first. Regular members only see visible
// posts; admins may request hidden ones too so they can moderate in place.
// Each audience's listing is cached anonymously and the requester's liked
// flags are filled in afterwards.
func (s *FeedService) ListFeed(ctx context.Context, in ListFeedInput) ([]*models.Post, error) {
	audience := "members"
	visibleOnly := true
	if in.IncludeHidden {
		admin, err := s.adminCheck(ctx, in.CurrentUserID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewUnauthorizedError("Admin access required")
		}
		audience = "admin"
		visibleOnly = false
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.FeedListKey(audience), &posts, cache.FeedListTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.postRepo.List(ctx, visibleOnly, 0)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if err := s.fillLikedFlags(ctx, in.CurrentUserID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// fillLikedFlags marks which of the listed posts the user has liked. The
// cached listing is computed for an anonymous viewer, so the flags cannot
// come from the cache.
func (s *FeedService) fillLikedFlags(ctx context.Context, userID uint, posts []*models.Post) error {
	if userID == 0 || len(posts) == 0 {
		return nil
	}
	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}
	likedIDs, err := s.postRepo.LikedPostIDs(ctx, userID, postIDs)
	if err != nil {
		return err
	}
	likedMap := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		likedMap[id] = true
	}
	for _, p := range posts {
		p.Liked = likedMap[p.ID]
	}
	return nil
}

func (s *FeedService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

func (s *FeedService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		if len(title) > maxPostTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		post.Title = title
	}
	if content := strings.TrimSpace(in.Content); content != "" {
		if len(content) > maxPostContentLen {
			return nil, models.NewValidationError("Content too long (max 10000 characters)")
		}
		post.Content = content
	}
	if category := strings.TrimSpace(in.Category); category != "" {
		post.Category = category
	}
	if in.MediaURLs != nil {
		post.MediaURLs = in.MediaURLs
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// SetVisibility applies a moderation decision. The caller states the intended
// final state rather than toggling, so two moderators acting at once converge
// on the same result.
func (s *FeedService) SetVisibility(ctx context.Context, userID, postID uint, visible bool) (*models.Post, error) {
	admin, err := s.adminCheck(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, models.NewUnauthorizedError("Admin access required")
	}

	if err := s.postRepo.SetVisibility(ctx, postID, visible); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *FeedService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		admin, err := s.adminCheck(ctx, userID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewUnauthorizedError("You can only delete your own posts")
		}
	}

	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike flips the user's like on the post and returns the post with
// fresh counters.
func (s *FeedService) ToggleLike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	isLiked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if isLiked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
	} else {
		if err := s.postRepo.Like(ctx, userID, postID); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *FeedService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentContentLen {
		return nil, models.NewValidationError("Content too long (max 2000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, in.PostID, in.AuthorID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		AuthorID: in.AuthorID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, in.PostID)
	cache.InvalidateFeedLists(ctx)

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments loads a post's conversation on demand, oldest first.
func (s *FeedService) ListComments(ctx context.Context, postID uint, currentUserID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, currentUserID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *FeedService) adminCheck(ctx context.Context, userID uint) (bool, error) {
	if s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}
