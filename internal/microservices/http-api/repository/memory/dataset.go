package memory

import (
	"maps"

	"dtalks/internal/microservices/http-api/models"
)

// dataset stores rows by value with associations stripped; readers get copies.
type dataset struct {
	users           map[string]models.User
	posts           map[int64]models.Post
	comments        map[int64]models.Comment
	notifications   map[int64]models.Notification
	recommendations map[int64]models.PostRecommendation
	refreshTokens   map[string]models.RefreshToken

	postSeq           int64
	commentSeq        int64
	notificationSeq   int64
	recommendationSeq int64
}

func newDataset() *dataset {
	return &dataset{
		users:           make(map[string]models.User),
		posts:           make(map[int64]models.Post),
		comments:        make(map[int64]models.Comment),
		notifications:   make(map[int64]models.Notification),
		recommendations: make(map[int64]models.PostRecommendation),
		refreshTokens:   make(map[string]models.RefreshToken),
	}
}

func (d *dataset) clone() *dataset {
	c := *d
	c.users = maps.Clone(d.users)
	c.posts = maps.Clone(d.posts)
	c.comments = maps.Clone(d.comments)
	c.notifications = maps.Clone(d.notifications)
	c.recommendations = maps.Clone(d.recommendations)
	c.refreshTokens = maps.Clone(d.refreshTokens)
	return &c
}

// removePost mirrors the ON DELETE CASCADE foreign keys of the SQL schema.
// Notifications have none and are left to ReleaseByPost.
func (d *dataset) removePost(postID int64) {
	delete(d.posts, postID)
	for id, c := range d.comments {
		if c.PostID == postID {
			delete(d.comments, id)
		}
	}
	for id, rec := range d.recommendations {
		if rec.PostID == postID {
			delete(d.recommendations, id)
		}
	}
}

func (d *dataset) hydrateComment(c models.Comment) *models.Comment {
	if u, ok := d.users[c.UserID]; ok {
		c.User = u
	}
	if p, ok := d.posts[c.PostID]; ok {
		c.Post = p
	}
	return &c
}

func (d *dataset) hydratePost(p models.Post) *models.Post {
	if u, ok := d.users[p.UserID]; ok {
		p.User = u
	}
	return &p
}

// paginate slices an already ordered result; page is 1-based.
func paginate[T any](rows []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start < 0 || start >= len(rows) {
		return []T{}
	}
	end := min(start+pageSize, len(rows))
	return rows[start:end]
}
