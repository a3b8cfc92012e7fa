package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfirmationCodeStore keeps at most one live confirmation code per user.
type ConfirmationCodeStore interface {
	// Replace stores code as the user's only code, dropping any earlier one.
	Replace(ctx context.Context, code *models.ConfirmationCode) error
	FindByUserID(ctx context.Context, userID int64) (*models.ConfirmationCode, error)
	// Consume deletes exactly this code. It reports false when another
	// request consumed or replaced it first.
	Consume(ctx context.Context, code *models.ConfirmationCode) (bool, error)
}

type confirmationCodeRepository struct {
	db *gorm.DB
}

func NewConfirmationCodeRepository(db *gorm.DB) ConfirmationCodeStore {
	return &confirmationCodeRepository{db: db}
}

func (r *confirmationCodeRepository) Replace(ctx context.Context, code *models.ConfirmationCode) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"id", "code_hash", "expires_at", "created_at"}),
		}).
		Create(code).Error
	if err != nil {
		return fmt.Errorf("store confirmation code: %w", translate(err))
	}
	return nil
}

func (r *confirmationCodeRepository) FindByUserID(ctx context.Context, userID int64) (*models.ConfirmationCode, error) {
	var code models.ConfirmationCode
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *confirmationCodeRepository) Consume(ctx context.Context, code *models.ConfirmationCode) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", code.ID).Delete(&models.ConfirmationCode{})
	if result.Error != nil {
		return false, fmt.Errorf("consume confirmation code: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}
