package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"
)

type TitleService interface {
	List(ctx context.Context, filter dto.TitleFilterQuery, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
	now          func() time.Time
}

// NewTitleService wires the title service. now is the clock used for the
// year upper bound; nil means time.Now.
func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
	now func() time.Time,
) TitleService {
	if now == nil {
		now = time.Now
	}
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
		now:          now,
	}
}

// List returns one page of titles, each with the mean of its review scores.
func (s *titleService) List(ctx context.Context, filter dto.TitleFilterQuery, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	titles, total, err := s.titleRepo.List(ctx, repository.TitleFilter{
		Category: filter.Category,
		Genre:    filter.Genre,
		Name:     filter.Name,
		Year:     filter.Year,
	}, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	scores, err := s.reviewRepo.ScoresByTitles(ctx, ids)
	if err != nil {
		return nil, err
	}

	data := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		data = append(data, *dto.FromModelToTitleResponse(&titles[i], MeanScore(scores[titles[i].ID])))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "title")
	}
	scores, err := s.reviewRepo.ScoresByTitles(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return dto.FromModelToTitleResponse(t, MeanScore(scores[id])), nil
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	t := &models.Title{
		Name:        plainText(req.Name),
		Description: plainTextPtr(req.Description),
	}
	if req.Year != nil {
		t.Year = *req.Year
	}
	if err := s.checkTitle(t); err != nil {
		return nil, err
	}

	if req.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		t.CategoryID = &categoryID
	}
	genreIDs, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	if err := s.titleRepo.Create(ctx, t, genreIDs); err != nil {
		return nil, mapRepoError(err, "title")
	}
	return s.Get(ctx, t.ID)
}

func (s *titleService) Update(ctx context.Context, id int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "title")
	}

	if req.Name != nil {
		t.Name = plainText(*req.Name)
	}
	if req.Year != nil {
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = plainTextPtr(req.Description)
	}
	if err := s.checkTitle(t); err != nil {
		return nil, err
	}

	if req.Category != nil {
		categoryID, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		t.CategoryID = &categoryID
	}

	var genreIDs []int64
	if req.Genre != nil {
		if genreIDs, err = s.resolveGenres(ctx, req.Genre); err != nil {
			return nil, err
		}
		if genreIDs == nil {
			// present but empty: clear the genres
			genreIDs = []int64{}
		}
	}

	if err := s.titleRepo.Update(ctx, t, genreIDs); err != nil {
		return nil, mapRepoError(err, "title")
	}
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	return mapRepoError(s.titleRepo.Delete(ctx, id), "title")
}

func (s *titleService) checkTitle(t *models.Title) error {
	fields := map[string]string{}
	if t.Name == "" {
		fields["name"] = "this field is required"
	} else if utf8.RuneCountInString(t.Name) > validation.NameMaxLength {
		fields["name"] = "ensure this field has no more than 256 characters"
	}
	if msg, ok := validation.Year(t.Year, s.now().Year()); !ok {
		fields["year"] = msg
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *titleService) resolveCategory(ctx context.Context, slug string) (int64, error) {
	c, err := s.categoryRepo.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, invalidField("category", fmt.Sprintf("category %q does not exist", slug))
	}
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

// resolveGenres maps slugs to ids, ignoring repeats. Any unknown slug fails the whole write.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]int64, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}

	genres, err := s.genreRepo.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(unique) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		var missing []string
		for _, slug := range unique {
			if !found[slug] {
				missing = append(missing, slug)
			}
		}
		return nil, invalidField("genre", "unknown genre: "+strings.Join(missing, ", "))
	}

	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

func plainTextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := plainText(*s)
	return &clean
}
