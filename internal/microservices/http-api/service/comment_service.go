package service

import (
	"context"
	"log/slog"

	"yamdb/internal/microservices/http-api/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, actor access.Actor, titleID, reviewID int64, req dto.CommentRequest) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor access.Actor, titleID, reviewID, commentID int64, req dto.CommentRequest) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor access.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
	logger      *slog.Logger
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository, logger *slog.Logger) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
		logger:      logger,
	}
}

// requireReview checks the review exists under the title named in the path.
func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviewRepo.FindByID(ctx, titleID, reviewID); err != nil {
		return mapRepoError(err, "review")
	}
	return nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		data = append(data, *dto.FromModelToCommentResponse(&comments[i]))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.FindByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, mapRepoError(err, "comment")
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Create(ctx context.Context, actor access.Actor, titleID, reviewID int64, req dto.CommentRequest) (*dto.CommentResponse, error) {
	if err := access.Authorize(actor, access.Create, access.ResourceComment, 0); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.UserID,
		Text:     plainText(req.Text),
	}
	if comment.Text == "" {
		return nil, invalidField("text", "this field is required")
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, mapRepoError(err, "review")
	}
	s.logger.Info("comment_created", "comment_id", comment.ID, "review_id", reviewID, "author_id", actor.UserID)

	// Reload with author data
	created, err := s.commentRepo.FindByID(ctx, reviewID, comment.ID)
	if err != nil {
		return nil, mapRepoError(err, "comment")
	}
	return dto.FromModelToCommentResponse(created), nil
}

func (s *commentService) Update(ctx context.Context, actor access.Actor, titleID, reviewID, commentID int64, req dto.CommentRequest) (*dto.CommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.FindByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, mapRepoError(err, "comment")
	}
	if err := access.Authorize(actor, access.Update, access.ResourceComment, comment.AuthorID); err != nil {
		return nil, err
	}

	comment.Text = plainText(req.Text)
	if comment.Text == "" {
		return nil, invalidField("text", "this field is required")
	}
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, mapRepoError(err, "comment")
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Delete(ctx context.Context, actor access.Actor, titleID, reviewID, commentID int64) error {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return err
	}
	comment, err := s.commentRepo.FindByID(ctx, reviewID, commentID)
	if err != nil {
		return mapRepoError(err, "comment")
	}
	if err := access.Authorize(actor, access.Delete, access.ResourceComment, comment.AuthorID); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return mapRepoError(err, "comment")
	}
	s.logger.Info("comment_deleted", "comment_id", comment.ID, "by", actor.UserID)
	return nil
}
