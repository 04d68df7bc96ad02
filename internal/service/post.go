package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"socialnet/internal/metrics"
	"socialnet/internal/model"
	"socialnet/internal/repository"
	"socialnet/internal/storage"
)

type PostService struct {
	db          *sqlx.DB
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	tagRepo     repository.TagRepository
	commentRepo repository.CommentRepository
	media       *MediaService
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewPostService(
	db *sqlx.DB,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	tagRepo repository.TagRepository,
	commentRepo repository.CommentRepository,
	media *MediaService,
	log logrus.FieldLogger,
) *PostService {
	return &PostService{
		db:          db,
		postRepo:    postRepo,
		userRepo:    userRepo,
		tagRepo:     tagRepo,
		commentRepo: commentRepo,
		media:       media,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a post, links its tags and bumps the author's post count in one transaction.
// image may be nil.
func (s *PostService) Create(ctx context.Context, authorID string, req model.CreatePostRequest, image *storage.Upload) (*model.Post, error) {
	ctx, span := startSpan(ctx, "PostService.Create", attribute.String("user.id", authorID))
	var err error
	defer func() { endSpan(span, err) }()

	var content string
	content, err = model.NormalizeContent(req.Content)
	if err != nil {
		return nil, err
	}

	tagIDs := uniqueIDs(req.Tags)
	if len(tagIDs) > model.MaxPostTags {
		err = model.ErrTooManyTags
		return nil, err
	}

	post := &model.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: s.now(),
	}

	if image != nil {
		var uploaded *model.UploadResult
		uploaded, err = s.media.UploadPostImage(ctx, *image)
		if err != nil {
			return nil, err
		}
		post.Image = uploaded.URL
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		tags, err := s.tagRepo.GetByIDs(ctx, tx, tagIDs)
		if err != nil {
			return err
		}
		if len(tags) != len(tagIDs) {
			return model.ErrUnknownTag
		}
		if err := s.postRepo.Create(ctx, tx, post); err != nil {
			return err
		}
		if err := s.postRepo.AddTags(ctx, tx, post.ID, tagIDs); err != nil {
			return err
		}
		return s.userRepo.IncrementPostsCount(ctx, tx, authorID, 1)
	})
	if err != nil {
		if image != nil {
			s.media.Remove(ctx, post.Image)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "user_id": authorID}).Info("post created")

	var created *model.Post
	created, err = s.Get(ctx, post.ID, authorID)
	return created, err
}

// Get retrieves a single post with its comments, oldest first.
func (s *PostService) Get(ctx context.Context, postID, viewerID string) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	posts := []model.Post{*post}
	if err := s.enrich(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	result := posts[0]

	comments, err := s.commentRepo.ListByPost(ctx, postID, false)
	if err != nil {
		return nil, err
	}
	if err := enrichComments(ctx, s.commentRepo, comments, viewerID); err != nil {
		return nil, err
	}
	result.Comments = comments

	return &result, nil
}

// Update edits content and/or image. Only the author may edit.
func (s *PostService) Update(ctx context.Context, postID, userID string, req model.UpdatePostRequest, image *storage.Upload) (*model.Post, error) {
	ctx, span := startSpan(ctx, "PostService.Update", attribute.String("post.id", postID), attribute.String("user.id", userID))
	var err error
	defer func() { endSpan(span, err) }()

	var content string
	if strings.TrimSpace(req.Content) != "" {
		content, err = model.NormalizeContent(req.Content)
		if err != nil {
			return nil, err
		}
	}

	var newImage string
	if image != nil {
		// Check ownership before storing anything on behalf of the caller.
		var existing *model.Post
		existing, err = s.postRepo.GetByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		if existing.AuthorID != userID {
			err = model.ErrNotPostOwner
			return nil, err
		}

		var uploaded *model.UploadResult
		uploaded, err = s.media.UploadPostImage(ctx, *image)
		if err != nil {
			return nil, err
		}
		newImage = uploaded.URL
	}

	var oldImage string
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		post, err := s.postRepo.GetForUpdate(ctx, tx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != userID {
			return model.ErrNotPostOwner
		}
		if content == "" && newImage == "" {
			return nil
		}

		if content != "" {
			post.Content = content
		}
		if newImage != "" {
			oldImage = post.Image
			post.Image = newImage
		}
		return s.postRepo.Update(ctx, tx, post)
	})
	if err != nil {
		s.media.Remove(ctx, newImage)
		return nil, err
	}

	if oldImage != "" {
		s.media.Remove(ctx, oldImage)
	}

	var updated *model.Post
	updated, err = s.Get(ctx, postID, userID)
	return updated, err
}

// Delete removes a post with its comments, likes and tags. Only the author may delete.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	ctx, span := startSpan(ctx, "PostService.Delete", attribute.String("post.id", postID), attribute.String("user.id", userID))
	var err error
	defer func() { endSpan(span, err) }()

	var image string
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		post, err := s.postRepo.GetForUpdate(ctx, tx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != userID {
			return model.ErrNotPostOwner
		}
		image = post.Image

		if err := s.postRepo.Delete(ctx, tx, postID); err != nil {
			return err
		}
		return s.userRepo.IncrementPostsCount(ctx, tx, post.AuthorID, -1)
	})
	if err != nil {
		return err
	}

	s.media.Remove(ctx, image)
	s.log.WithFields(logrus.Fields{"post_id": postID, "user_id": userID}).Info("post deleted")
	return nil
}

// ToggleLike flips the caller's like on a post and returns the committed count.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (*model.LikeResult, error) {
	ctx, span := startSpan(ctx, "PostService.ToggleLike", attribute.String("post.id", postID), attribute.String("user.id", userID))
	var err error
	defer func() { endSpan(span, err) }()

	var result *model.LikeResult
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		result, err = toggleLike(ctx, tx, s.postRepo, postID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordLikeToggle("post", result.Liked)
	span.SetAttributes(attribute.Bool("like.liked", result.Liked), attribute.Int("like.count", result.LikesCount))
	return result, nil
}

// ListAll returns every post, newest first.
func (s *PostService) ListAll(ctx context.Context, viewerID string, page model.Page) (*model.PostListResponse, error) {
	return s.list(ctx, repository.PostFilter{}, viewerID, page)
}

// Feed is the signed-in home timeline: every post, newest first, with the
// viewer's like flags filled in.
func (s *PostService) Feed(ctx context.Context, viewerID string, page model.Page) (*model.PostListResponse, error) {
	return s.list(ctx, repository.PostFilter{}, viewerID, page)
}

// ListByAuthor returns every post by authorID, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID, viewerID string) ([]model.Post, error) {
	posts, _, err := s.postRepo.List(ctx, repository.PostFilter{AuthorID: authorID}, model.Page{Page: 1})
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) list(ctx context.Context, filter repository.PostFilter, viewerID string, page model.Page) (*model.PostListResponse, error) {
	posts, total, err := s.postRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	return model.NewPostListResponse(posts, page, total), nil
}

// enrich fills likers, tags and the viewer's like flag with one query each.
func (s *PostService) enrich(ctx context.Context, posts []model.Post, viewerID string) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likers, err := s.postRepo.GetLikers(ctx, ids)
	if err != nil {
		return err
	}
	tags, err := s.postRepo.GetTags(ctx, ids)
	if err != nil {
		return err
	}

	for i := range posts {
		p := &posts[i]
		p.Likes = nonNil(likers[p.ID])
		p.IsLiked = contains(p.Likes, viewerID)
		p.Tags = tags[p.ID]
		if p.Tags == nil {
			p.Tags = []model.Tag{}
		}
	}
	return nil
}

// likeStore is the subset of a repository needed to toggle a like.
type likeStore interface {
	LockForUpdate(ctx context.Context, tx *sqlx.Tx, id string) error
	AddLike(ctx context.Context, tx *sqlx.Tx, id, userID string) (bool, error)
	RemoveLike(ctx context.Context, tx *sqlx.Tx, id, userID string) (bool, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, id string, delta int) (int, error)
}

// toggleLike locks the target, flips membership and moves the counter by the
// number of rows actually changed, so the counter always tracks the liker set.
func toggleLike(ctx context.Context, tx *sqlx.Tx, store likeStore, id, userID string) (*model.LikeResult, error) {
	if err := store.LockForUpdate(ctx, tx, id); err != nil {
		return nil, err
	}

	removed, err := store.RemoveLike(ctx, tx, id, userID)
	if err != nil {
		return nil, err
	}

	liked, delta := false, -1
	if !removed {
		added, err := store.AddLike(ctx, tx, id, userID)
		if err != nil {
			return nil, err
		}
		liked, delta = true, 0
		if added {
			delta = 1
		}
	}

	count, err := store.IncrementLikeCount(ctx, tx, id, delta)
	if err != nil {
		return nil, fmt.Errorf("apply like delta: %w", err)
	}

	return &model.LikeResult{Liked: liked, LikesCount: count}, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func contains(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
