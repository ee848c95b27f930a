package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"

	"github.com/google/uuid"
)

type userRepo struct{ repos }

func (r userRepo) Create(ctx context.Context, user *models.User) error {
	return r.do(ctx, func(d *dataset) error {
		for _, u := range d.users {
			switch {
			case u.Username == user.Username:
				return fmt.Errorf("%w: username", repository.ErrDuplicate)
			case u.Nickname == user.Nickname:
				return fmt.Errorf("%w: nickname", repository.ErrDuplicate)
			case u.Email == user.Email:
				return fmt.Errorf("%w: email", repository.ErrDuplicate)
			}
		}
		if user.ID == "" {
			user.ID = uuid.New().String()
		}
		if user.Role == "" {
			user.Role = models.RoleUser
		}
		now := r.s.now()
		user.CreatedAt = now
		user.UpdatedAt = now
		d.users[user.ID] = *user
		return nil
	})
}

func (r userRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, func(u models.User) bool { return u.Username == username })
}

func (r userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, func(u models.User) bool { return u.ID == id })
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, func(u models.User) bool { return u.Email == email })
}

func (r userRepo) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return r.findOne(ctx, func(u models.User) bool { return u.Nickname == nickname })
}

func (r userRepo) findOne(ctx context.Context, match func(models.User) bool) (*models.User, error) {
	var out *models.User
	err := r.do(ctx, func(d *dataset) error {
		for _, u := range d.users {
			if match(u) {
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r userRepo) List(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	var all []models.User
	err := r.do(ctx, func(d *dataset) error {
		for _, u := range d.users {
			all = append(all, u)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b models.User) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (r userRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.do(ctx, func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		u.IsActive = active
		u.UpdatedAt = r.s.now()
		d.users[id] = u
		return nil
	})
}

func (r userRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.do(ctx, func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return nil
		}
		u.LastLogin = &at
		d.users[id] = u
		return nil
	})
}

type refreshTokenRepo struct{ repos }

func (r refreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.do(ctx, func(d *dataset) error {
		for _, t := range d.refreshTokens {
			if t.Token == token.Token {
				return fmt.Errorf("%w: token", repository.ErrDuplicate)
			}
		}
		token.CreatedAt = r.s.now()
		d.refreshTokens[token.ID] = *token
		return nil
	})
}

func (r refreshTokenRepo) FindByToken(ctx context.Context, tokenString string) (*models.RefreshToken, error) {
	var out *models.RefreshToken
	err := r.do(ctx, func(d *dataset) error {
		for _, t := range d.refreshTokens {
			if t.Token == tokenString {
				out = &t
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r refreshTokenRepo) Revoke(ctx context.Context, tokenID string) error {
	return r.do(ctx, func(d *dataset) error {
		if t, ok := d.refreshTokens[tokenID]; ok {
			t.Revoked = true
			d.refreshTokens[tokenID] = t
		}
		return nil
	})
}

func (r refreshTokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	return r.do(ctx, func(d *dataset) error {
		for id, t := range d.refreshTokens {
			if t.UserID == userID {
				t.Revoked = true
				d.refreshTokens[id] = t
			}
		}
		return nil
	})
}

type recommendationRepo struct{ repos }

func (r recommendationRepo) Create(ctx context.Context, rec *models.PostRecommendation) error {
	return r.do(ctx, func(d *dataset) error {
		for _, existing := range d.recommendations {
			if existing.UserID == rec.UserID && existing.PostID == rec.PostID {
				return fmt.Errorf("%w: idx_recommend_user_post", repository.ErrDuplicate)
			}
		}
		if _, ok := d.posts[rec.PostID]; !ok {
			return repository.ErrNotFound
		}
		d.recommendationSeq++
		rec.ID = d.recommendationSeq
		rec.CreatedAt = r.s.now()
		row := *rec
		row.User, row.Post = nil, nil
		d.recommendations[row.ID] = row
		return nil
	})
}

func (r recommendationRepo) Find(ctx context.Context, userID string, postID int64) (*models.PostRecommendation, error) {
	var out *models.PostRecommendation
	err := r.do(ctx, func(d *dataset) error {
		for _, rec := range d.recommendations {
			if rec.UserID == userID && rec.PostID == postID {
				out = &rec
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r recommendationRepo) Delete(ctx context.Context, recommendationID int64) error {
	return r.do(ctx, func(d *dataset) error {
		if _, ok := d.recommendations[recommendationID]; !ok {
			return repository.ErrNotFound
		}
		delete(d.recommendations, recommendationID)
		return nil
	})
}

func (r recommendationRepo) Exists(ctx context.Context, userID string, postID int64) (bool, error) {
	var found bool
	err := r.do(ctx, func(d *dataset) error {
		for _, rec := range d.recommendations {
			if rec.UserID == userID && rec.PostID == postID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}
