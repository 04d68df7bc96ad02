package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID         string       `db:"id" json:"id"`
	PostID     string       `db:"post_id" json:"post"`
	AuthorID   string       `db:"author_id" json:"-"`
	Content    string       `db:"content" json:"content"`
	LikesCount int          `db:"likes_count" json:"likesCount"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	Author     *UserSummary `db:"-" json:"author"`
	Likes      []string     `db:"-" json:"likes"`
	IsLiked    bool         `db:"-" json:"isLiked"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
)
