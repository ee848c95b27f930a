package service

import (
	"context"
	"fmt"
	"log/slog"

	"dtalks/internal/content"
	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"
)

// BestPostLimit is the size of the best-posts board.
const BestPostLimit = 5

type PostService interface {
	Create(ctx context.Context, authorID string, req dto.CreatePostRequest) (int64, error)
	Update(ctx context.Context, postID int64, requesterID string, req dto.UpdatePostRequest) error
	Delete(ctx context.Context, postID int64, requesterID string) error
	// View returns the post detail and counts one view.
	View(ctx context.Context, postID int64, viewerID string) (*dto.PostResponse, error)
	List(ctx context.Context, page, pageSize int) (*dto.PageResponse[dto.PostSummary], error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) (*dto.PageResponse[dto.PostSummary], error)
	Search(ctx context.Context, keyword string, page, pageSize int) (*dto.PageResponse[dto.PostSummary], error)
	Best(ctx context.Context) ([]dto.PostSummary, error)
}

type postService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewPostService(store repository.Store, logger *slog.Logger) PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{store: store, logger: logger}
}

func (s *postService) Create(ctx context.Context, authorID string, req dto.CreatePostRequest) (int64, error) {
	var id int64
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if _, err := activeAuthor(ctx, tx, authorID); err != nil {
			return err
		}
		post := &models.Post{UserID: authorID, Title: req.Title, Content: req.Content}
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		id = post.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("post_created", "post_id", id, "user_id", authorID)
	return id, nil
}

func (s *postService) Update(ctx context.Context, postID int64, requesterID string, req dto.UpdatePostRequest) error {
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		post, err := tx.Posts().FindByID(ctx, postID)
		if err != nil {
			return notFound(err, ErrPostNotFound)
		}
		if post.UserID != requesterID {
			return fmt.Errorf("%w: only the author can edit a post", ErrForbidden)
		}
		post.Title = req.Title
		post.Content = req.Content
		return tx.Posts().Save(ctx, post)
	})
}

func (s *postService) Delete(ctx context.Context, postID int64, requesterID string) error {
	var hadComments bool
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		post, err := tx.Posts().FindByID(ctx, postID)
		if err != nil {
			return notFound(err, ErrPostNotFound)
		}
		if post.UserID != requesterID {
			return fmt.Errorf("%w: only the author can delete a post", ErrForbidden)
		}
		// comments go with the post through the post_id cascade
		if hadComments, err = tx.Comments().ExistsByPost(ctx, postID); err != nil {
			return err
		}
		// notifications only reference the post by value, nothing cascades to them
		if err := tx.Notifications().ReleaseByPost(ctx, postID); err != nil {
			return err
		}
		return notFound(tx.Posts().Delete(ctx, postID), ErrPostNotFound)
	})
	if err != nil {
		return err
	}

	s.logger.Info("post_deleted", "post_id", postID, "user_id", requesterID, "had_comments", hadComments)
	return nil
}

func (s *postService) View(ctx context.Context, postID int64, viewerID string) (*dto.PostResponse, error) {
	var resp *dto.PostResponse
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Posts().IncrementViewCount(ctx, postID); err != nil {
			return notFound(err, ErrPostNotFound)
		}
		post, err := tx.Posts().FindByID(ctx, postID)
		if err != nil {
			return notFound(err, ErrPostNotFound)
		}

		recommended := false
		if viewerID != "" {
			if recommended, err = tx.Recommendations().Exists(ctx, viewerID, postID); err != nil {
				return err
			}
		}

		resp = &dto.PostResponse{
			PostSummary: dto.FromModelToPostSummary(post),
			Content:     post.Content,
			ContentHTML: content.Render(post.Content),
			Recommended: recommended,
			UpdatedAt:   post.UpdatedAt,
		}
		return nil
	})
	return resp, err
}

func (s *postService) List(ctx context.Context, page, pageSize int) (*dto.PageResponse[dto.PostSummary], error) {
	posts, total, err := s.store.Posts().List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return summaries(posts, total, page, pageSize), nil
}

func (s *postService) ListByUser(ctx context.Context, userID string, page, pageSize int) (*dto.PageResponse[dto.PostSummary], error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	posts, total, err := s.store.Posts().ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return summaries(posts, total, page, pageSize), nil
}

func (s *postService) Search(ctx context.Context, keyword string, page, pageSize int) (*dto.PageResponse[dto.PostSummary], error) {
	posts, total, err := s.store.Posts().Search(ctx, keyword, page, pageSize)
	if err != nil {
		return nil, err
	}
	return summaries(posts, total, page, pageSize), nil
}

func (s *postService) Best(ctx context.Context) ([]dto.PostSummary, error) {
	posts, err := s.store.Posts().Best(ctx, BestPostLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PostSummary, 0, len(posts))
	for i := range posts {
		out = append(out, dto.FromModelToPostSummary(&posts[i]))
	}
	return out, nil
}

func summaries(posts []models.Post, total int64, page, pageSize int) *dto.PageResponse[dto.PostSummary] {
	data := make([]dto.PostSummary, 0, len(posts))
	for i := range posts {
		data = append(data, dto.FromModelToPostSummary(&posts[i]))
	}
	return dto.NewPageResponse(data, int(total), page, pageSize)
}
