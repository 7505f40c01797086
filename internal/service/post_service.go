package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"blogora/internal/dto"
	"blogora/internal/model"
	"blogora/internal/repository"
	"blogora/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, req dto.CreatePostRequest) (*dto.PostResponse, error)
	GetPost(ctx context.Context, postID, viewerID uuid.UUID) (*dto.PostResponse, error)
	ListPublished(ctx context.Context, filter dto.PostFilter) (*dto.PaginatedPostResponse, error)
	ListDrafts(ctx context.Context, userID uuid.UUID) ([]dto.PostResponse, error)
	UpdatePost(ctx context.Context, userID, postID uuid.UUID, req dto.UpdatePostRequest) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, userID, postID uuid.UUID) error
	TopRated(ctx context.Context, limit int) ([]dto.PostResponse, error)
	TopLiked(ctx context.Context, limit int) ([]dto.PostResponse, error)
	Search(ctx context.Context, req dto.SearchPostsRequest) ([]dto.PostSearchHit, error)
}

type postService struct {
	postRepo      repository.PostRepository
	categoryRepo  repository.CategoryRepository
	tagRepo       repository.TagRepository
	ratingRepo    repository.RatingRepository
	likeRepo      repository.LikeRepository
	searchService SearchService
	redisClient   *redis.Client
}

func NewPostService(postRepo repository.PostRepository, categoryRepo repository.CategoryRepository, tagRepo repository.TagRepository, ratingRepo repository.RatingRepository, likeRepo repository.LikeRepository, searchService SearchService, redisClient *redis.Client) PostService {
	return &postService{
		postRepo:      postRepo,
		categoryRepo:  categoryRepo,
		tagRepo:       tagRepo,
		ratingRepo:    ratingRepo,
		likeRepo:      likeRepo,
		searchService: searchService,
		redisClient:   redisClient,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uuid.UUID, req dto.CreatePostRequest) (*dto.PostResponse, error) {
	// Creation cooldown
	limit := GetDurationFromEnv("RATE_LIMIT_POST", 15*time.Second)
	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, userID, "post", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, s.redisClient, userID, "post")
		return nil, fmt.Errorf("%w: you can create the next post in %.0f seconds", apperror.ErrRateLimited, ttl.Seconds())
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ClearRateLimit(ctx, s.redisClient, userID, "post")
		}
	}()

	content := sanitizeContent(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", apperror.ErrValidation)
	}

	status := req.Status
	if status == "" {
		status = model.PostStatusDraft
	}

	post := &model.Post{
		Title:    req.Title,
		Content:  content,
		AuthorID: userID,
		Status:   status,
	}

	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid category id", apperror.ErrValidation)
		}
		if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: category", apperror.ErrNotFound)
			}
			return nil, err
		}
		post.CategoryID = &categoryID
	}

	tags, err := s.resolveTags(ctx, req.TagIDs)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	if status == model.PostStatusPublished {
		post.PublishedDate = time.Now()
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	creationFailed = false

	created, err := s.postRepo.FindByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	s.syncSearchIndex(created)

	return s.mapToResponse(ctx, created), nil
}

func (s *postService) GetPost(ctx context.Context, postID, viewerID uuid.UUID) (*dto.PostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return nil, err
	}

	// Drafts stay private to their author
	if post.Status == model.PostStatusDraft && post.AuthorID != viewerID {
		return nil, fmt.Errorf("%w: post", apperror.ErrNotFound)
	}

	return s.mapToResponse(ctx, post), nil
}

func (s *postService) ListPublished(ctx context.Context, filter dto.PostFilter) (*dto.PaginatedPostResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 10
	}

	posts, meta, err := s.postRepo.ListPublished(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		data = append(data, *s.mapToResponse(ctx, &posts[i]))
	}

	return &dto.PaginatedPostResponse{Data: data, Meta: *meta}, nil
}

func (s *postService) ListDrafts(ctx context.Context, userID uuid.UUID) ([]dto.PostResponse, error) {
	posts, err := s.postRepo.ListDraftsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		data = append(data, *s.mapToResponse(ctx, &posts[i]))
	}

	return data, nil
}

func (s *postService) UpdatePost(ctx context.Context, userID, postID uuid.UUID, req dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return nil, err
	}

	if post.AuthorID != userID {
		return nil, fmt.Errorf("%w: you can only edit your own posts", apperror.ErrForbidden)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", apperror.ErrValidation)
		}
		post.Title = *req.Title
	}

	if req.Content != nil {
		content := sanitizeContent(*req.Content)
		if content == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", apperror.ErrValidation)
		}
		post.Content = content
	}

	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			post.CategoryID = nil
		} else {
			categoryID, err := uuid.Parse(*req.CategoryID)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid category id", apperror.ErrValidation)
			}
			if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: category", apperror.ErrNotFound)
				}
				return nil, err
			}
			post.CategoryID = &categoryID
		}
	}

	if req.Status != nil && *req.Status != post.Status {
		post.Status = *req.Status
		if post.Status == model.PostStatusPublished && post.PublishedDate.IsZero() {
			post.PublishedDate = time.Now()
		}
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	if req.TagIDs != nil {
		tags, err := s.resolveTags(ctx, req.TagIDs)
		if err != nil {
			return nil, err
		}
		if err := s.postRepo.ReplaceTags(ctx, post, tags); err != nil {
			return nil, err
		}
	}

	updated, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	s.syncSearchIndex(updated)

	return s.mapToResponse(ctx, updated), nil
}

func (s *postService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return err
	}

	if post.AuthorID != userID {
		return fmt.Errorf("%w: you can only delete your own posts", apperror.ErrForbidden)
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if s.searchService != nil {
		if err := s.searchService.DeletePost(postID.String()); err != nil {
			log.Printf("failed to remove post %s from search index: %v", postID, err)
		}
	}

	return nil
}

func (s *postService) TopRated(ctx context.Context, limit int) ([]dto.PostResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	posts, err := s.postRepo.TopRated(ctx, limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		data = append(data, *s.mapToResponse(ctx, &posts[i]))
	}

	return data, nil
}

func (s *postService) TopLiked(ctx context.Context, limit int) ([]dto.PostResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	posts, err := s.postRepo.TopLiked(ctx, limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		data = append(data, *s.mapToResponse(ctx, &posts[i]))
	}

	return data, nil
}

func (s *postService) Search(ctx context.Context, req dto.SearchPostsRequest) ([]dto.PostSearchHit, error) {
	if s.searchService == nil {
		return nil, fmt.Errorf("search is not configured")
	}
	return s.searchService.Search(req)
}

func (s *postService) resolveTags(ctx context.Context, tagIDs []string) ([]model.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(tagIDs))
	for _, raw := range tagIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid tag id %q", apperror.ErrValidation, raw)
		}
		ids = append(ids, id)
	}

	tags, err := s.tagRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, fmt.Errorf("%w: one or more tags", apperror.ErrNotFound)
	}

	return tags, nil
}

// syncSearchIndex keeps the index in step with the post's status.
// Index errors only get logged, the write itself already succeeded.
func (s *postService) syncSearchIndex(post *model.Post) {
	if s.searchService == nil {
		return
	}

	if post.Status == model.PostStatusPublished {
		if err := s.searchService.IndexPost(post); err != nil {
			log.Printf("failed to index post %s: %v", post.ID, err)
		}
		return
	}

	if err := s.searchService.DeletePost(post.ID.String()); err != nil {
		log.Printf("failed to remove post %s from search index: %v", post.ID, err)
	}
}

func (s *postService) mapToResponse(ctx context.Context, post *model.Post) *dto.PostResponse {
	tags := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, tag.Name)
	}

	// Both aggregates are computed fresh on every request, trading queries
	// for consistency at this scale.
	avg, err := s.ratingRepo.Average(ctx, post.ID)
	if err != nil {
		log.Printf("failed to compute average rating for post %s: %v", post.ID, err)
	}

	likeCount, err := s.likeRepo.Count(ctx, post.ID)
	if err != nil {
		log.Printf("failed to count likes for post %s: %v", post.ID, err)
	}

	resp := &dto.PostResponse{
		ID:      post.ID,
		Title:   post.Title,
		Content: post.Content,
		Author: dto.AuthorResponse{
			ID:       post.AuthorID.String(),
			Username: post.Author.Username,
		},
		CategoryID:    post.CategoryID,
		Tags:          tags,
		Status:        post.Status,
		AverageRating: avg,
		LikeCount:     likeCount,
		CreatedAt:     post.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if post.Category != nil {
		resp.CategoryName = &post.Category.Name
	}
	if !post.PublishedDate.IsZero() {
		resp.PublishedDate = post.PublishedDate.Format("2006-01-02 15:04:05")
	}

	return resp
}
