package dto

import "yamdb/internal/microservices/http-api/models"

// TaxonomyRequest creates a category or a genre.
type TaxonomyRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,slug"`
}

// UpdateTaxonomyRequest partially updates a category or a genre.
type UpdateTaxonomyRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=256"`
	Slug *string `json:"slug" binding:"omitempty,slug"`
}

// TaxonomyResponse is how categories and genres are rendered, standalone or embedded in a title.
type TaxonomyResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromCategory(c *models.Category) *TaxonomyResponse {
	if c == nil {
		return nil
	}
	return &TaxonomyResponse{Name: c.Name, Slug: c.Slug}
}

func FromGenre(g *models.Genre) TaxonomyResponse {
	return TaxonomyResponse{Name: g.Name, Slug: g.Slug}
}
