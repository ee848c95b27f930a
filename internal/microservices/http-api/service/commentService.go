package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"dtalks/internal/content"
	"dtalks/internal/microservices/http-api/dto"
	"dtalks/internal/microservices/http-api/models"
	"dtalks/internal/microservices/http-api/repository"
	"dtalks/internal/notify"
)

// MaxCommentLength is counted in runes after trimming.
const MaxCommentLength = 5000

// CommentService manages the reply forest of each post. Every mutation runs
// in one transaction together with the post's comment counter and the
// notifications linked to the comment.
type CommentService interface {
	LoadThread(ctx context.Context, postID int64, viewerID string) ([]*dto.CommentView, error)
	CreateTopLevel(ctx context.Context, postID int64, authorID, content string, secret bool) (int64, error)
	CreateReply(ctx context.Context, postID, parentID int64, authorID, content string, secret bool) (int64, error)
	Update(ctx context.Context, commentID int64, requesterID, content string, secret bool) error
	Delete(ctx context.Context, commentID int64, requesterID string) error
	Get(ctx context.Context, commentID int64, viewerID string) (*dto.CommentView, error)
	ListByNickname(ctx context.Context, nickname string, page, pageSize int) (*dto.PageResponse[dto.UserCommentResponse], error)
}

type commentService struct {
	store   repository.Store
	emitter notify.Emitter
	logger  *slog.Logger
}

func NewCommentService(store repository.Store, emitter notify.Emitter, logger *slog.Logger) CommentService {
	if emitter == nil {
		emitter = notify.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{store: store, emitter: emitter, logger: logger}
}

// LoadThread returns the roots of the post in creation order. Each root
// carries all of its descendants, flattened, in creation order.
func (s *commentService) LoadThread(ctx context.Context, postID int64, viewerID string) ([]*dto.CommentView, error) {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}

	comments, err := s.store.Comments().FindAllByPostOrderByCreatedAsc(ctx, postID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*models.Comment, len(comments))
	for i := range comments {
		byID[comments[i].ID] = &comments[i]
	}

	roots := make([]*dto.CommentView, 0)
	rootViews := make(map[int64]*dto.CommentView)
	for i := range comments {
		c := &comments[i]
		if !c.IsRoot() {
			continue
		}
		view := present(c, post.UserID, viewerID)
		roots = append(roots, view)
		rootViews[c.ID] = view
	}

	for i := range comments {
		c := &comments[i]
		if c.IsRoot() {
			continue
		}
		rootID, ok := rootOf(c, byID)
		if !ok {
			s.logger.Warn("comment_ancestor_chain_broken", "comment_id", c.ID, "post_id", postID)
			continue
		}
		root := rootViews[rootID]
		root.Children = append(root.Children, present(c, post.UserID, viewerID))
	}

	return roots, nil
}

// rootOf ascends the parent chain. It reports false when the chain leaves
// the post or loops.
func rootOf(c *models.Comment, byID map[int64]*models.Comment) (int64, bool) {
	seen := map[int64]struct{}{c.ID: {}}
	cur := c
	for cur.ParentID != nil {
		parent, ok := byID[*cur.ParentID]
		if !ok {
			return 0, false
		}
		if _, loop := seen[parent.ID]; loop {
			return 0, false
		}
		seen[parent.ID] = struct{}{}
		cur = parent
	}
	return cur.ID, true
}

// present masks tombstones for everyone and secret comments for everyone
// but their author and the post author.
func present(c *models.Comment, postAuthorID, viewerID string) *dto.CommentView {
	view := dto.FromModelToCommentView(c)
	switch {
	case c.Removed:
		view.Content = dto.DeletedCommentContent
	case c.Secret && (viewerID == "" || (viewerID != c.UserID && viewerID != postAuthorID)):
		view.Content = dto.SecretCommentContent
	}
	view.ContentHTML = content.Render(view.Content)
	return view
}

func (s *commentService) CreateTopLevel(ctx context.Context, postID int64, authorID, body string, secret bool) (int64, error) {
	body, err := normalizeContent(body)
	if err != nil {
		return 0, err
	}

	var (
		id  int64
		out outbox
	)
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		post, err := tx.Posts().FindByID(ctx, postID)
		if err != nil {
			return notFound(err, ErrPostNotFound)
		}
		author, err := activeAuthor(ctx, tx, authorID)
		if err != nil {
			return err
		}

		comment := &models.Comment{
			PostID:  postID,
			UserID:  authorID,
			Content: body,
			Secret:  secret,
		}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		if err := tx.Posts().IncrementCommentCount(ctx, postID); err != nil {
			return err
		}
		if err := notifyPostAuthor(ctx, tx, &out, post, author, comment); err != nil {
			return err
		}
		id = comment.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	out.flush(ctx, s.emitter)
	s.logger.Info("comment_created", "comment_id", id, "post_id", postID, "user_id", authorID)
	return id, nil
}

func (s *commentService) CreateReply(ctx context.Context, postID, parentID int64, authorID, body string, secret bool) (int64, error) {
	body, err := normalizeContent(body)
	if err != nil {
		return 0, err
	}

	var (
		id  int64
		out outbox
	)
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		post, err := tx.Posts().FindByID(ctx, postID)
		if err != nil {
			return notFound(err, ErrPostNotFound)
		}
		// held until commit, serialises with a concurrent delete of the parent
		parent, err := tx.Comments().FindByIDForUpdate(ctx, parentID)
		if err != nil {
			return notFound(err, ErrParentNotFound)
		}
		if parent.PostID != postID {
			return ErrParentOtherPost
		}
		author, err := activeAuthor(ctx, tx, authorID)
		if err != nil {
			return err
		}

		reply := &models.Comment{
			PostID:   postID,
			UserID:   authorID,
			ParentID: &parent.ID,
			Content:  body,
			Secret:   secret,
		}
		if err := tx.Comments().Create(ctx, reply); err != nil {
			return err
		}
		if err := tx.Posts().IncrementCommentCount(ctx, postID); err != nil {
			return err
		}
		if err := notifyPostAuthor(ctx, tx, &out, post, author, reply); err != nil {
			return err
		}
		if err := notifyParentAuthor(ctx, tx, &out, post, parent, author, reply); err != nil {
			return err
		}
		id = reply.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	out.flush(ctx, s.emitter)
	s.logger.Info("comment_reply_created",
		"comment_id", id,
		"parent_id", parentID,
		"post_id", postID,
		"user_id", authorID,
	)
	return id, nil
}

// notifyPostAuthor records a COMMENT notification unless the post author
// wrote the comment or is suspended.
func notifyPostAuthor(ctx context.Context, tx repository.Repositories, out *outbox, post *models.Post, author *models.User, comment *models.Comment) error {
	if post.UserID == author.ID {
		return nil
	}
	postAuthor, err := tx.Users().FindByID(ctx, post.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !postAuthor.IsActive {
		return nil
	}

	return out.record(ctx, tx.Notifications(), &models.Notification{
		ReceiverID: postAuthor.ID,
		RefID:      &comment.ID,
		Type:       models.NotificationComment,
		PostID:     &post.ID,
		Message:    fmt.Sprintf("%s commented on your post %q", author.Nickname, post.Title),
		ReadStatus: models.ReadStatusUnread,
	})
}

// notifyParentAuthor records a RECOMMENT notification for a live parent
// whose author is neither the post author, who already got COMMENT, nor the
// replier.
func notifyParentAuthor(ctx context.Context, tx repository.Repositories, out *outbox, post *models.Post, parent *models.Comment, author *models.User, reply *models.Comment) error {
	if parent.Removed || parent.UserID == post.UserID || parent.UserID == author.ID {
		return nil
	}
	parentAuthor, err := tx.Users().FindByID(ctx, parent.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !parentAuthor.IsActive {
		return nil
	}

	return out.record(ctx, tx.Notifications(), &models.Notification{
		ReceiverID: parentAuthor.ID,
		RefID:      &reply.ID,
		Type:       models.NotificationRecomment,
		PostID:     &post.ID,
		Message:    fmt.Sprintf("%s replied to your comment on %q", author.Nickname, post.Title),
		ReadStatus: models.ReadStatusUnread,
	})
}

func (s *commentService) Update(ctx context.Context, commentID int64, requesterID, body string, secret bool) error {
	body, err := normalizeContent(body)
	if err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		comment, err := tx.Comments().FindByIDForUpdate(ctx, commentID)
		if err != nil {
			return notFound(err, ErrCommentNotFound)
		}
		if comment.Removed {
			return ErrCommentNotFound
		}
		if comment.UserID != requesterID {
			return fmt.Errorf("%w: only the author can edit a comment", ErrForbidden)
		}

		comment.Content = body
		comment.Secret = secret
		return tx.Comments().Save(ctx, comment)
	})
	if err != nil {
		return err
	}

	s.logger.Info("comment_updated", "comment_id", commentID, "user_id", requesterID)
	return nil
}

// Delete tombstones a comment that still has replies. A leaf is removed
// together with every ancestor that is a tombstone left with this chain as
// its only child. The post counter drops by one either way.
func (s *commentService) Delete(ctx context.Context, commentID int64, requesterID string) error {
	var (
		mode    string
		removed []int64
	)
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		comments := tx.Comments()

		comment, err := comments.FindByIDForUpdate(ctx, commentID)
		if err != nil {
			return notFound(err, ErrCommentNotFound)
		}
		if comment.Removed {
			return ErrCommentNotFound
		}
		if comment.UserID != requesterID {
			return fmt.Errorf("%w: only the author can delete a comment", ErrForbidden)
		}

		if err := tx.Posts().DecrementCommentCount(ctx, comment.PostID); err != nil {
			return err
		}
		if err := releaseNotification(ctx, tx.Notifications(), comment.ID, models.NotificationComment); err != nil {
			return err
		}
		if err := releaseNotification(ctx, tx.Notifications(), comment.ID, models.NotificationRecomment); err != nil {
			return err
		}

		children, err := comments.CountChildren(ctx, comment.ID)
		if err != nil {
			return err
		}
		if children > 0 {
			mode = "tombstoned"
			comment.Removed = true
			return comments.Save(ctx, comment)
		}

		mode = "removed"
		removed, err = collapsibleChain(ctx, comments, comment)
		if err != nil {
			return err
		}
		return comments.DeleteByIDs(ctx, removed)
	})
	if err != nil {
		return err
	}

	s.logger.Info("comment_deleted",
		"comment_id", commentID,
		"user_id", requesterID,
		"mode", mode,
		"rows_removed", len(removed),
	)
	return nil
}

// collapsibleChain returns leaf plus each ancestor, bottom up, that is a
// tombstone whose only child is the previous entry. Every inspected ancestor
// is locked before its children are counted.
func collapsibleChain(ctx context.Context, comments repository.CommentRepository, leaf *models.Comment) ([]int64, error) {
	chain := []int64{leaf.ID}
	seen := map[int64]struct{}{leaf.ID: {}}

	cur := leaf
	for cur.ParentID != nil {
		if _, loop := seen[*cur.ParentID]; loop {
			break
		}
		parent, err := comments.FindByIDForUpdate(ctx, *cur.ParentID)
		if errors.Is(err, repository.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !parent.Removed {
			break
		}
		n, err := comments.CountChildren(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		if n != 1 {
			break
		}

		chain = append(chain, parent.ID)
		seen[parent.ID] = struct{}{}
		cur = parent
	}
	return chain, nil
}

// releaseNotification detaches the notification pointing at a deleted
// comment: a read one is kept without its reference, an unread one goes.
func releaseNotification(ctx context.Context, repo repository.NotificationRepository, refID int64, notificationType models.NotificationType) error {
	n, err := repo.FindByRefIDAndType(ctx, refID, notificationType)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if n.IsRead() {
		return repo.MarkReadDataGone(ctx, n.ID)
	}
	return repo.Delete(ctx, n.ID)
}

func (s *commentService) Get(ctx context.Context, commentID int64, viewerID string) (*dto.CommentView, error) {
	comment, err := s.store.Comments().FindByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	post, err := s.store.Posts().FindByID(ctx, comment.PostID)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	return present(comment, post.UserID, viewerID), nil
}

func (s *commentService) ListByNickname(ctx context.Context, nickname string, page, pageSize int) (*dto.PageResponse[dto.UserCommentResponse], error) {
	user, err := s.store.Users().FindByNickname(ctx, nickname)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	comments, total, err := s.store.Comments().ListLiveByUser(ctx, user.ID, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.UserCommentResponse, 0, len(comments))
	for i := range comments {
		data = append(data, dto.FromModelToUserCommentResponse(&comments[i]))
	}
	return dto.NewPageResponse(data, int(total), page, pageSize), nil
}

// activeAuthor loads the writer and refuses suspended accounts.
func activeAuthor(ctx context.Context, tx repository.Repositories, userID string) (*models.User, error) {
	user, err := tx.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is suspended", ErrForbidden)
	}
	return user, nil
}

func normalizeContent(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrBlankContent
	}
	if utf8.RuneCountInString(body) > MaxCommentLength {
		return "", ErrContentTooLong
	}
	return body, nil
}
