package repository

import (
	"context"
	"fmt"

	"dtalks/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	FindByID(ctx context.Context, commentID int64) (*models.Comment, error)
	// FindByIDForUpdate reads the row and holds a write lock on it until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, commentID int64) (*models.Comment, error)
	FindAllByPostOrderByCreatedAsc(ctx context.Context, postID int64) ([]models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Save(ctx context.Context, comment *models.Comment) error
	CountChildren(ctx context.Context, commentID int64) (int64, error)
	ExistsByPost(ctx context.Context, postID int64) (bool, error)
	DeleteByIDs(ctx context.Context, ids []int64) error
	ListLiveByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// FindByID retrieves a comment by its ID
func (r *commentRepository) FindByID(ctx context.Context, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", commentID).
		First(&comment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *commentRepository) FindByIDForUpdate(ctx context.Context, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", commentID).
		First(&comment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// FindAllByPostOrderByCreatedAsc returns every comment of a post, tombstones included
func (r *commentRepository) FindAllByPostOrderByCreatedAsc(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return comments, nil
}

// Create a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

// Save an existing comment
func (r *commentRepository) Save(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(comment).Error)
}

func (r *commentRepository) CountChildren(ctx context.Context, commentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("parent_id = ?", commentID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count children of %d: %w", commentID, err)
	}
	return count, nil
}

func (r *commentRepository) ExistsByPost(ctx context.Context, postID int64) (bool, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, translate(err)
	}
	return len(ids) > 0, nil
}

// DeleteByIDs removes a collapsed chain in one statement
func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Comment{}).Error)
}

// ListLiveByUser retrieves the non-removed comments of a user with pagination, newest first
func (r *commentRepository) ListLiveByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	base := r.db.WithContext(ctx).Model(&models.Comment{}).Where("user_id = ? AND removed = ?", userID, false)

	// Count total comments
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get paginated comments
	offset := (page - 1) * pageSize
	err := base.Session(&gorm.Session{}).
		Preload("Post").
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}
