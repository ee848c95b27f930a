package memory

import (
	"cmp"
	"context"
	"slices"

	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"
)

type commentRepo struct{ repos }

func (r commentRepo) FindByID(ctx context.Context, commentID int64) (*models.Comment, error) {
	var out *models.Comment
	err := r.do(ctx, func(d *dataset) error {
		c, ok := d.comments[commentID]
		if !ok {
			return repository.ErrNotFound
		}
		out = d.hydrateComment(c)
		return nil
	})
	return out, err
}

// FindByIDForUpdate is FindByID; the transaction already owns the whole store.
func (r commentRepo) FindByIDForUpdate(ctx context.Context, commentID int64) (*models.Comment, error) {
	return r.FindByID(ctx, commentID)
}

func (r commentRepo) FindAllByPostOrderByCreatedAsc(ctx context.Context, postID int64) ([]models.Comment, error) {
	var out []models.Comment
	err := r.do(ctx, func(d *dataset) error {
		for _, c := range d.comments {
			if c.PostID == postID {
				out = append(out, *d.hydrateComment(c))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.posts[comment.PostID]; !ok {
			return repository.ErrNotFound
		}
		if comment.ParentID != nil {
			if _, ok := d.comments[*comment.ParentID]; !ok {
				return repository.ErrNotFound
			}
		}
		d.commentSeq++
		now := r.s.now()
		comment.ID = d.commentSeq
		comment.CreatedAt = now
		comment.UpdatedAt = now
		d.comments[comment.ID] = stripComment(*comment)
		return nil
	})
}

func (r commentRepo) Save(ctx context.Context, comment *models.Comment) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.comments[comment.ID]; !ok {
			return repository.ErrNotFound
		}
		comment.UpdatedAt = r.s.now()
		d.comments[comment.ID] = stripComment(*comment)
		return nil
	})
}

func (r commentRepo) CountChildren(ctx context.Context, commentID int64) (int64, error) {
	var n int64
	err := r.do(ctx, func(d *dataset) error {
		for _, c := range d.comments {
			if c.ParentID != nil && *c.ParentID == commentID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r commentRepo) ExistsByPost(ctx context.Context, postID int64) (bool, error) {
	var found bool
	err := r.do(ctx, func(d *dataset) error {
		for _, c := range d.comments {
			if c.PostID == postID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

// DeleteByIDs also drops orphaned descendants, as the parent_id cascade does in SQL.
func (r commentRepo) DeleteByIDs(ctx context.Context, ids []int64) error {
	return r.do(ctx, func(d *dataset) error {
		for _, id := range ids {
			delete(d.comments, id)
		}
		for removed := true; removed; {
			removed = false
			for id, c := range d.comments {
				if c.ParentID == nil {
					continue
				}
				if _, ok := d.comments[*c.ParentID]; !ok {
					delete(d.comments, id)
					removed = true
				}
			}
		}
		return nil
	})
}

func (r commentRepo) ListLiveByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Comment, int64, error) {
	var all []models.Comment
	err := r.do(ctx, func(d *dataset) error {
		for _, c := range d.comments {
			if c.UserID == userID && !c.Removed {
				all = append(all, *d.hydrateComment(c))
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b models.Comment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func stripComment(c models.Comment) models.Comment {
	c.User = models.User{}
	c.Post = models.Post{}
	c.Parent = nil
	return c
}
