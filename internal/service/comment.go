package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"socialnet/internal/metrics"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

type CommentService struct {
	db          *sqlx.DB
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewCommentService(
	db *sqlx.DB,
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	log logrus.FieldLogger,
) *CommentService {
	return &CommentService{
		db:          db,
		commentRepo: commentRepo,
		postRepo:    postRepo,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create adds a comment to a post. The post counter update doubles as the
// existence check and holds the post row for the rest of the transaction.
func (s *CommentService) Create(ctx context.Context, postID, userID string, req model.CreateCommentRequest) (*model.Comment, error) {
	ctx, span := startSpan(ctx, "CommentService.Create", attribute.String("post.id", postID), attribute.String("user.id", userID))
	var err error
	defer func() { endSpan(span, err) }()

	var content string
	content, err = model.NormalizeContent(req.Content)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  userID,
		Content:   content,
		CreatedAt: s.now(),
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.postRepo.IncrementCommentCount(ctx, tx, postID, 1); err != nil {
			return err
		}
		return s.commentRepo.Create(ctx, tx, comment)
	})
	if err != nil {
		return nil, err
	}

	var created *model.Comment
	created, err = s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	created.Likes = []string{}
	return created, nil
}

// List returns the comments of a post, newest first.
func (s *CommentService) List(ctx context.Context, postID, viewerID string) ([]model.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, true)
	if err != nil {
		return nil, err
	}
	if err := enrichComments(ctx, s.commentRepo, comments, viewerID); err != nil {
		return nil, err
	}
	return comments, nil
}

// ToggleLike flips the caller's like on a comment and returns the committed count.
func (s *CommentService) ToggleLike(ctx context.Context, commentID, userID string) (*model.LikeResult, error) {
	ctx, span := startSpan(ctx, "CommentService.ToggleLike", attribute.String("comment.id", commentID), attribute.String("user.id", userID))
	var err error
	defer func() { endSpan(span, err) }()

	var result *model.LikeResult
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		result, err = toggleLike(ctx, tx, s.commentRepo, commentID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordLikeToggle("comment", result.Liked)
	return result, nil
}

// Delete removes a comment and decrements its post's counter. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	ctx, span := startSpan(ctx, "CommentService.Delete", attribute.String("comment.id", commentID), attribute.String("user.id", userID))
	var err error
	defer func() { endSpan(span, err) }()

	// Author and post never change, so they can be read outside the transaction.
	var comment *model.Comment
	comment, err = s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		err = model.ErrNotCommentOwner
		return err
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		deleted, err := s.commentRepo.Delete(ctx, tx, commentID)
		if err != nil {
			return err
		}
		if !deleted {
			// Lost a race with another delete or with the post's cascade.
			return model.ErrCommentNotFound
		}
		return s.postRepo.IncrementCommentCount(ctx, tx, comment.PostID, -1)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"comment_id": commentID, "user_id": userID}).Info("comment deleted")
	return nil
}

// enrichComments fills likers and the viewer's like flag.
func enrichComments(ctx context.Context, repo repository.CommentRepository, comments []model.Comment, viewerID string) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	likers, err := repo.GetLikers(ctx, ids)
	if err != nil {
		return err
	}

	for i := range comments {
		c := &comments[i]
		c.Likes = nonNil(likers[c.ID])
		c.IsLiked = contains(c.Likes, viewerID)
	}
	return nil
}
