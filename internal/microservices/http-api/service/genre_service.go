package service

import (
	"context"
	"strings"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.TaxonomyResponse], error)
	Get(ctx context.Context, slug string) (*dto.TaxonomyResponse, error)
	Create(ctx context.Context, req dto.TaxonomyRequest) (*dto.TaxonomyResponse, error)
	Update(ctx context.Context, slug string, req dto.UpdateTaxonomyRequest) (*dto.TaxonomyResponse, error)
	Delete(ctx context.Context, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(r repository.GenreRepository) GenreService {
	return &genreService{repo: r}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.TaxonomyResponse], error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	data := make([]dto.TaxonomyResponse, 0, len(list))
	for i := range list {
		data = append(data, dto.FromGenre(&list[i]))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

func (s *genreService) Get(ctx context.Context, slug string) (*dto.TaxonomyResponse, error) {
	g, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err, "genre")
	}
	resp := dto.FromGenre(g)
	return &resp, nil
}

func (s *genreService) Create(ctx context.Context, req dto.TaxonomyRequest) (*dto.TaxonomyResponse, error) {
	g := &models.Genre{Name: strings.TrimSpace(req.Name), Slug: req.Slug}
	if err := checkTaxonomy(g.Name, g.Slug); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, mapRepoError(err, "genre")
	}
	resp := dto.FromGenre(g)
	return &resp, nil
}

func (s *genreService) Update(ctx context.Context, slug string, req dto.UpdateTaxonomyRequest) (*dto.TaxonomyResponse, error) {
	g, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, mapRepoError(err, "genre")
	}
	if req.Name != nil {
		g.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		g.Slug = *req.Slug
	}
	if err := checkTaxonomy(g.Name, g.Slug); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, mapRepoError(err, "genre")
	}
	resp := dto.FromGenre(g)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	return mapRepoError(s.repo.Delete(ctx, slug), "genre")
}
