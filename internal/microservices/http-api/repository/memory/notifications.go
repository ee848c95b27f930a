package memory

import (
	"cmp"
	"context"
	"slices"

	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"
)

type notificationRepo struct{ repos }

func (r notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.users[n.ReceiverID]; !ok {
			return repository.ErrNotFound
		}
		if n.RefID != nil {
			for _, other := range d.notifications {
				if other.RefID != nil && *other.RefID == *n.RefID && other.Type == n.Type {
					return repository.ErrDuplicate
				}
			}
		}
		d.notificationSeq++
		n.ID = d.notificationSeq
		n.CreatedAt = r.s.now()
		if n.ReadStatus == "" {
			n.ReadStatus = models.ReadStatusUnread
		}
		row := *n
		row.Receiver = nil
		d.notifications[row.ID] = row
		return nil
	})
}

func (r notificationRepo) FindByID(ctx context.Context, id int64) (*models.Notification, error) {
	var out *models.Notification
	err := r.do(ctx, func(d *dataset) error {
		n, ok := d.notifications[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &n
		return nil
	})
	return out, err
}

func (r notificationRepo) FindByRefIDAndType(ctx context.Context, refID int64, t models.NotificationType) (*models.Notification, error) {
	var out *models.Notification
	err := r.do(ctx, func(d *dataset) error {
		for _, n := range d.notifications {
			if n.RefID != nil && *n.RefID == refID && n.Type == t {
				if out == nil || n.ID < out.ID {
					match := n
					out = &match
				}
			}
		}
		if out == nil {
			return repository.ErrNotFound
		}
		return nil
	})
	return out, err
}

func (r notificationRepo) MarkReadDataGone(ctx context.Context, id int64) error {
	return r.update(ctx, id, func(n *models.Notification) {
		n.ReadStatus = models.ReadStatusReadDataGone
		n.RefID = nil
		n.PostID = nil
		n.Message = ""
	})
}

func (r notificationRepo) Delete(ctx context.Context, id int64) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.notifications[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.notifications, id)
		return nil
	})
}

func (r notificationRepo) ReleaseByPost(ctx context.Context, postID int64) error {
	return r.do(ctx, func(d *dataset) error {
		for id, n := range d.notifications {
			if n.PostID == nil || *n.PostID != postID {
				continue
			}
			if !n.IsRead() {
				delete(d.notifications, id)
				continue
			}
			n.ReadStatus = models.ReadStatusReadDataGone
			n.RefID = nil
			n.PostID = nil
			n.Message = ""
			d.notifications[id] = n
		}
		return nil
	})
}

func (r notificationRepo) ListByReceiver(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int64, error) {
	var all []models.Notification
	err := r.do(ctx, func(d *dataset) error {
		for _, n := range d.notifications {
			if n.ReceiverID == userID {
				all = append(all, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b models.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (r notificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.do(ctx, func(d *dataset) error {
		for _, row := range d.notifications {
			if row.ReceiverID == userID && row.ReadStatus == models.ReadStatusUnread {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r notificationRepo) MarkAsRead(ctx context.Context, id int64) error {
	err := r.update(ctx, id, func(n *models.Notification) {
		if n.ReadStatus == models.ReadStatusUnread {
			n.ReadStatus = models.ReadStatusRead
		}
	})
	if err == repository.ErrNotFound {
		// the SQL update is a no-op on a missing row
		return nil
	}
	return err
}

func (r notificationRepo) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	var changed int64
	err := r.do(ctx, func(d *dataset) error {
		for id, n := range d.notifications {
			if n.ReceiverID == userID && n.ReadStatus == models.ReadStatusUnread {
				n.ReadStatus = models.ReadStatusRead
				d.notifications[id] = n
				changed++
			}
		}
		return nil
	})
	return changed, err
}

func (r notificationRepo) update(ctx context.Context, id int64, apply func(*models.Notification)) error {
	return r.do(ctx, func(d *dataset) error {
		n, ok := d.notifications[id]
		if !ok {
			return repository.ErrNotFound
		}
		apply(&n)
		d.notifications[id] = n
		return nil
	})
}
