package model

import (
	"errors"
	"time"
)

// Post represents a user's post with its metadata.
type Post struct {
	ID            string    `db:"id" json:"id"`
	AuthorID      string    `db:"author_id" json:"-"`
	Content       string    `db:"content" json:"content"`
	Image         string    `db:"image" json:"image"`
	LikesCount    int       `db:"likes_count" json:"likesCount"`
	CommentsCount int       `db:"comments_count" json:"commentsCount"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	// Joined fields (not in posts table)
	Author   *UserSummary `db:"-" json:"author"`
	Likes    []string     `db:"-" json:"likes"`
	IsLiked  bool         `db:"-" json:"isLiked"`
	Tags     []Tag        `db:"-" json:"tags"`
	Comments []Comment    `db:"-" json:"comments,omitempty"`
}

// CreatePostRequest is the decoded body of POST /posts.
// The image, when present, arrives as a multipart file and is stored before the insert.
type CreatePostRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// UpdatePostRequest is the decoded body of PUT /posts/:id. Empty fields are left unchanged.
type UpdatePostRequest struct {
	Content string `json:"content"`
}

// PostListResponse is the paginated post list response.
type PostListResponse struct {
	Posts       []Post `json:"posts"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalPosts  int    `json:"totalPosts"`
	HasMore     bool   `json:"hasMore"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPage applies defaults and bounds to raw page parameters.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

// NewPostListResponse assembles the pagination envelope.
func NewPostListResponse(posts []Post, p Page, total int) *PostListResponse {
	if posts == nil {
		posts = []Post{}
	}
	totalPages := (total + p.Limit - 1) / p.Limit
	return &PostListResponse{
		Posts:       posts,
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalPosts:  total,
		HasMore:     p.Offset()+len(posts) < total,
	}
}

// Post constraints
const (
	MaxContentLength = 1000
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// Post errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostOwner    = errors.New("not the owner of this post")
	ErrContentRequired = errors.New("content is required")
	ErrContentTooLong  = errors.New("content cannot exceed 1000 characters")
)
