package model

import "errors"

// Tag is a seeded, read-only label attached to posts.
type Tag struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// MaxPostTags caps the number of distinct tags on a post.
const MaxPostTags = 7

var (
	ErrUnknownTag  = errors.New("unknown tag")
	ErrTooManyTags = errors.New("a post can have at most 7 tags")
)
