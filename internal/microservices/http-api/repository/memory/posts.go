package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"
)

type postRepo struct{ repos }

func (r postRepo) FindByID(ctx context.Context, postID int64) (*models.Post, error) {
	var out *models.Post
	err := r.do(ctx, func(d *dataset) error {
		p, ok := d.posts[postID]
		if !ok {
			return repository.ErrNotFound
		}
		out = d.hydratePost(p)
		return nil
	})
	return out, err
}

func (r postRepo) Exists(ctx context.Context, postID int64) (bool, error) {
	var ok bool
	err := r.do(ctx, func(d *dataset) error {
		_, ok = d.posts[postID]
		return nil
	})
	return ok, err
}

func (r postRepo) Create(ctx context.Context, post *models.Post) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.users[post.UserID]; !ok {
			return repository.ErrNotFound
		}
		d.postSeq++
		now := r.s.now()
		post.ID = d.postSeq
		post.CreatedAt = now
		post.UpdatedAt = now
		p := *post
		p.User = models.User{}
		d.posts[p.ID] = p
		return nil
	})
}

func (r postRepo) Save(ctx context.Context, post *models.Post) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.posts[post.ID]; !ok {
			return repository.ErrNotFound
		}
		post.UpdatedAt = r.s.now()
		p := *post
		p.User = models.User{}
		d.posts[p.ID] = p
		return nil
	})
}

func (r postRepo) Delete(ctx context.Context, postID int64) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.posts[postID]; !ok {
			return repository.ErrNotFound
		}
		d.removePost(postID)
		return nil
	})
}

func (r postRepo) List(ctx context.Context, page, pageSize int) ([]models.Post, int64, error) {
	return r.filter(ctx, page, pageSize, func(models.Post) bool { return true })
}

func (r postRepo) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Post, int64, error) {
	return r.filter(ctx, page, pageSize, func(p models.Post) bool { return p.UserID == userID })
}

func (r postRepo) Search(ctx context.Context, keyword string, page, pageSize int) ([]models.Post, int64, error) {
	needle := strings.ToLower(keyword)
	return r.filter(ctx, page, pageSize, func(p models.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Content), needle)
	})
}

func (r postRepo) Best(ctx context.Context, limit int) ([]models.Post, error) {
	var all []models.Post
	err := r.do(ctx, func(d *dataset) error {
		for _, p := range d.posts {
			all = append(all, *d.hydratePost(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(all, func(a, b models.Post) int {
		if c := cmp.Compare(b.LikeCount, a.LikeCount); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return paginate(all, 1, limit), nil
}

// filter returns matching posts newest first.
func (r postRepo) filter(ctx context.Context, page, pageSize int, match func(models.Post) bool) ([]models.Post, int64, error) {
	var all []models.Post
	err := r.do(ctx, func(d *dataset) error {
		for _, p := range d.posts {
			if match(p) {
				all = append(all, *d.hydratePost(p))
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b models.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (r postRepo) IncrementCommentCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, func(p *models.Post) { p.CommentCount++ })
}

func (r postRepo) DecrementCommentCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, func(p *models.Post) { p.CommentCount-- })
}

func (r postRepo) IncrementLikeCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, func(p *models.Post) { p.LikeCount++ })
}

func (r postRepo) DecrementLikeCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, func(p *models.Post) { p.LikeCount = max(p.LikeCount-1, 0) })
}

func (r postRepo) IncrementViewCount(ctx context.Context, postID int64) error {
	return r.bump(ctx, postID, func(p *models.Post) { p.ViewCount++ })
}

func (r postRepo) bump(ctx context.Context, postID int64, apply func(*models.Post)) error {
	return r.do(ctx, func(d *dataset) error {
		p, ok := d.posts[postID]
		if !ok {
			return repository.ErrNotFound
		}
		apply(&p)
		d.posts[postID] = p
		return nil
	})
}
