package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TitleFilter narrows a title listing. Zero values do not filter.
type TitleFilter struct {
	Category string // category slug
	Genre    string // genre slug
	Name     string // case-insensitive substring
	Year     *int
}

type TitleRepository interface {
	// Create inserts the title and one title_genres row per genre id atomically.
	Create(ctx context.Context, t *models.Title, genreIDs []int64) error
	// Update saves scalar fields; a non-nil genreIDs replaces the genre set.
	Update(ctx context.Context, t *models.Title, genreIDs []int64) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title, genreIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		return linkGenres(tx, t.ID, genreIDs)
	})
	if err != nil {
		return fmt.Errorf("create title: %w", translate(err))
	}
	return nil
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title, genreIDs []int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			return err
		}
		if genreIDs == nil {
			return nil
		}
		if err := tx.Where("title_id = ?", t.ID).Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}
		return linkGenres(tx, t.ID, genreIDs)
	})
	if err != nil {
		return fmt.Errorf("update title: %w", translate(err))
	}
	return nil
}

func linkGenres(tx *gorm.DB, titleID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]models.TitleGenre, 0, len(genreIDs))
	for _, id := range genreIDs {
		links = append(links, models.TitleGenre{TitleID: titleID, GenreID: id})
	}
	return tx.Create(&links).Error
}

// Delete removes the title; its reviews, their comments and genre links go with it.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	return deleteResult(r.db.WithContext(ctx).Delete(&models.Title{}, id))
}

func (r *titleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.id") }).
		First(&t, "titles.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *titleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List applies the same filter to the count and the page query so totals match.
func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var titles []models.Title
	var total int64

	apply := func(db *gorm.DB) *gorm.DB {
		if filter.Category != "" {
			db = db.Joins("JOIN categories ON categories.id = titles.category_id").
				Where("categories.slug = ?", filter.Category)
		}
		if filter.Genre != "" {
			db = db.Where(`EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
				WHERE tg.title_id = titles.id AND g.slug = ?)`, filter.Genre)
		}
		if filter.Name != "" {
			db = db.Where("titles.name ILIKE ?", containsPattern(filter.Name))
		}
		if filter.Year != nil {
			db = db.Where("titles.year = ?", *filter.Year)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&models.Title{}).Scopes(apply).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	err := r.db.WithContext(ctx).
		Model(&models.Title{}).
		Scopes(apply, paginate(page, pageSize)).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.id") }).
		Order("titles.id DESC").
		Find(&titles).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return titles, total, nil
}
