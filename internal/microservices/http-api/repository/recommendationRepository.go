package repository

import (
	"context"

	"dtalks/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecommendationRepository interface {
	// Create returns ErrDuplicate when the user already recommended the post.
	Create(ctx context.Context, recommendation *models.PostRecommendation) error
	Find(ctx context.Context, userID string, postID int64) (*models.PostRecommendation, error)
	Delete(ctx context.Context, recommendationID int64) error
	Exists(ctx context.Context, userID string, postID int64) (bool, error)
}

type recommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) Create(ctx context.Context, recommendation *models.PostRecommendation) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(recommendation).Error)
}

func (r *recommendationRepository) Find(ctx context.Context, userID string, postID int64) (*models.PostRecommendation, error) {
	var recommendation models.PostRecommendation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&recommendation).Error
	if err != nil {
		return nil, translate(err)
	}
	return &recommendation, nil
}

func (r *recommendationRepository) Delete(ctx context.Context, recommendationID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", recommendationID).
		Delete(&models.PostRecommendation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recommendationRepository) Exists(ctx context.Context, userID string, postID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PostRecommendation{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}
