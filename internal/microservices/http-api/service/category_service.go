package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/validation"
)

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.TaxonomyResponse], error)
	Get(ctx context.Context, slug string) (*dto.TaxonomyResponse, error)
	Create(ctx context.Context, req dto.TaxonomyRequest) (*dto.TaxonomyResponse, error)
	Update(ctx context.Context, slug string, req dto.UpdateTaxonomyRequest) (*dto.TaxonomyResponse, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(r repository.CategoryRepository) CategoryService {
	return &categoryService{repo: r}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.TaxonomyResponse], error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	data := make([]dto.TaxonomyResponse, 0, len(list))
	for i := range list {
		data = append(data, *dto.FromCategory(&list[i]))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

func (s *categoryService) Get(ctx context.Context, slug string) (*dto.TaxonomyResponse, error) {
	c, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err, "category")
	}
	return dto.FromCategory(c), nil
}

func (s *categoryService) Create(ctx context.Context, req dto.TaxonomyRequest) (*dto.TaxonomyResponse, error) {
	c := &models.Category{Name: strings.TrimSpace(req.Name), Slug: req.Slug}
	if err := checkTaxonomy(c.Name, c.Slug); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, mapRepoError(err, "category")
	}
	return dto.FromCategory(c), nil
}

func (s *categoryService) Update(ctx context.Context, slug string, req dto.UpdateTaxonomyRequest) (*dto.TaxonomyResponse, error) {
	c, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err, "category")
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		c.Slug = *req.Slug
	}
	if err := checkTaxonomy(c.Name, c.Slug); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, mapRepoError(err, "category")
	}
	return dto.FromCategory(c), nil
}

func (s *categoryService) Delete(ctx context.Context, slug string) error {
	return mapRepoError(s.repo.Delete(ctx, slug), "category")
}

// checkTaxonomy validates the name and slug shared by categories and genres.
func checkTaxonomy(name, slug string) error {
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "this field is required"
	} else if utf8.RuneCountInString(name) > validation.NameMaxLength {
		fields["name"] = "ensure this field has no more than 256 characters"
	}
	if msg, ok := validation.Slug(slug); !ok {
		fields["slug"] = msg
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
