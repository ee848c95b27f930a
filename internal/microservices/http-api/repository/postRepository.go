package repository

import (
	"context"
	"fmt"

	"dtalks/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	FindByID(ctx context.Context, postID int64) (*models.Post, error)
	Exists(ctx context.Context, postID int64) (bool, error)
	Create(ctx context.Context, post *models.Post) error
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, postID int64) error
	List(ctx context.Context, page, pageSize int) ([]models.Post, int64, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Post, int64, error)
	Search(ctx context.Context, keyword string, page, pageSize int) ([]models.Post, int64, error)
	Best(ctx context.Context, limit int) ([]models.Post, error)

	IncrementCommentCount(ctx context.Context, postID int64) error
	DecrementCommentCount(ctx context.Context, postID int64) error
	IncrementLikeCount(ctx context.Context, postID int64) error
	DecrementLikeCount(ctx context.Context, postID int64) error
	IncrementViewCount(ctx context.Context, postID int64) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) FindByID(ctx context.Context, postID int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, "id = ?", postID).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check post %d: %w", postID, err)
	}
	return count > 0, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error)
}

// Delete removes the post; comments and recommendations go with it via FK cascade.
// Notifications carry post_id without a FK and are released by the caller.
func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", postID).Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, page, pageSize int) ([]models.Post, int64, error) {
	return r.paginate(r.db.WithContext(ctx).Model(&models.Post{}), page, pageSize)
}

func (r *postRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Post, int64, error) {
	return r.paginate(r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID), page, pageSize)
}

func (r *postRepository) Search(ctx context.Context, keyword string, page, pageSize int) ([]models.Post, int64, error) {
	pattern := "%" + keyword + "%"
	query := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	return r.paginate(query, page, pageSize)
}

// Best returns the most liked posts
func (r *postRepository) Best(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("like_count DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) paginate(query *gorm.DB, page, pageSize int) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Session(&gorm.Session{}).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) IncrementCommentCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, "comment_count", "comment_count + 1")
}

func (r *postRepository) DecrementCommentCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, "comment_count", "comment_count - 1")
}

func (r *postRepository) IncrementLikeCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, "like_count", "like_count + 1")
}

func (r *postRepository) DecrementLikeCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, "like_count", "GREATEST(like_count - 1, 0)")
}

func (r *postRepository) IncrementViewCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, "view_count", "view_count + 1")
}

// bump applies an in-place counter update
func (r *postRepository) bump(ctx context.Context, postID int64, column, expr string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(expr))
	if result.Error != nil {
		return fmt.Errorf("update %s of post %d: %w", column, postID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
