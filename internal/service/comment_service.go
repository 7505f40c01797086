package service

import (
	"context"
	"errors"
	"fmt"

	"blogora/internal/dto"
	"blogora/internal/model"
	"blogora/internal/repository"
	"blogora/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID, postID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	// GetCommentTree returns the post's comments as a forest: top-level
	// comments newest first, replies nested recursively in the same order.
	GetCommentTree(ctx context.Context, postID uuid.UUID) ([]dto.CommentResponse, error)
	UpdateComment(ctx context.Context, userID, commentID uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID, postID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return nil, err
	}

	content := sanitizeContent(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content cannot be empty", apperror.ErrValidation)
	}

	var parentID *uuid.UUID
	if req.ParentID != "" {
		pid, err := uuid.Parse(req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid parent id", apperror.ErrValidation)
		}

		parent, err := s.commentRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent comment", apperror.ErrNotFound)
			}
			return nil, err
		}

		// A reply must stay under its own post. Rejecting here keeps the
		// tree read path free of repair logic.
		if parent.PostID != postID {
			return nil, fmt.Errorf("%w: parent comment belongs to a different post", apperror.ErrValidation)
		}

		parentID = &pid
	}

	comment := &model.Comment{
		PostID:   postID,
		UserID:   userID,
		Content:  content,
		ParentID: parentID,
	}

	// The parent always exists before its reply, so a parent is always
	// strictly older than its children and cycles cannot form.
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	resp := toCommentResponse(*created)
	return &resp, nil
}

func (s *commentService) GetCommentTree(ctx context.Context, postID uuid.UUID) ([]dto.CommentResponse, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post", apperror.ErrNotFound)
		}
		return nil, err
	}

	comments, err := s.commentRepo.FindByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return buildCommentTree(comments), nil
}

func (s *commentService) UpdateComment(ctx context.Context, userID, commentID uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: comment", apperror.ErrNotFound)
		}
		return nil, err
	}

	if comment.UserID != userID {
		return nil, fmt.Errorf("%w: you can only edit your own comments", apperror.ErrForbidden)
	}

	content := sanitizeContent(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content cannot be empty", apperror.ErrValidation)
	}

	// Only the content may change; the parent pointer is fixed for life.
	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	resp := toCommentResponse(*comment)
	return &resp, nil
}

func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: comment", apperror.ErrNotFound)
		}
		return err
	}

	if comment.UserID != userID {
		return fmt.Errorf("%w: you can only delete your own comments", apperror.ErrForbidden)
	}

	// Replies fall with their parent through the FK cascade.
	return s.commentRepo.Delete(ctx, commentID)
}

// buildCommentTree groups a flat, newest-first comment slice by parent id and
// nests replies under their parents. Input order is preserved, so every level
// comes out newest first.
func buildCommentTree(comments []model.Comment) []dto.CommentResponse {
	children := make(map[uuid.UUID][]model.Comment)
	var roots []model.Comment

	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	var build func(c model.Comment) dto.CommentResponse
	build = func(c model.Comment) dto.CommentResponse {
		resp := toCommentResponse(c)
		for _, child := range children[c.ID] {
			resp.Replies = append(resp.Replies, build(child))
		}
		return resp
	}

	tree := make([]dto.CommentResponse, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}

	return tree
}

func toCommentResponse(c model.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:       c.ID,
		PostID:   c.PostID,
		ParentID: c.ParentID,
		Author: dto.AuthorResponse{
			ID:       c.UserID.String(),
			Username: c.User.Username,
		},
		Content:   c.Content,
		CreatedAt: c.CreatedAt.Format("2006-01-02 15:04:05"),
		Replies:   []dto.CommentResponse{},
	}
}
