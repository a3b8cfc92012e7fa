package service

import (
	"context"
	"errors"
	"log/slog"

	"yamdb/internal/microservices/http-api/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"
)

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor access.Actor, titleID int64, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor access.Actor, titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor access.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	logger     *slog.Logger
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository, logger *slog.Logger) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		logger:     logger,
	}
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		data = append(data, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, mapRepoError(err, "review")
	}
	return dto.FromModelToReviewResponse(review), nil
}

// Create adds the actor's review of a title. A second review by the same
// author is a conflict and leaves the first untouched.
func (s *reviewService) Create(ctx context.Context, actor access.Actor, titleID int64, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if err := access.Authorize(actor, access.Create, access.ResourceReview, 0); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     plainText(req.Text),
	}
	if req.Score != nil {
		review.Score = *req.Score
	}
	if err := checkReview(review); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsForAuthor(ctx, titleID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict("you have already reviewed this title")
	}

	// the unique constraint still decides between concurrent creates
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("you have already reviewed this title")
		}
		return nil, mapRepoError(err, "title")
	}
	s.logger.Info("review_created", "review_id", review.ID, "title_id", titleID, "author_id", actor.UserID)

	return s.Get(ctx, titleID, review.ID)
}

func (s *reviewService) Update(ctx context.Context, actor access.Actor, titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, mapRepoError(err, "review")
	}
	if err := access.Authorize(actor, access.Update, access.ResourceReview, review.AuthorID); err != nil {
		return nil, err
	}

	if req.Text != nil {
		review.Text = plainText(*req.Text)
	}
	if req.Score != nil {
		review.Score = *req.Score
	}
	if err := checkReview(review); err != nil {
		return nil, err
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, mapRepoError(err, "review")
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, actor access.Actor, titleID, reviewID int64) error {
	review, err := s.reviewRepo.FindByID(ctx, titleID, reviewID)
	if err != nil {
		return mapRepoError(err, "review")
	}
	if err := access.Authorize(actor, access.Delete, access.ResourceReview, review.AuthorID); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, review.ID); err != nil {
		return mapRepoError(err, "review")
	}
	s.logger.Info("review_deleted", "review_id", review.ID, "by", actor.UserID)
	return nil
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	exists, err := s.titleRepo.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return notFound("title")
	}
	return nil
}

func checkReview(r *models.Review) error {
	fields := map[string]string{}
	if r.Text == "" {
		fields["text"] = "this field is required"
	}
	if msg, ok := validation.Score(r.Score); !ok {
		fields["score"] = msg
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
