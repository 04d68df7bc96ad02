package model

import (
	"errors"
	"time"
)

// User represents a user in the system
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email,omitempty"` // only on the caller's own profile
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"fullName"`
	Bio          string    `db:"bio" json:"bio"`
	Avatar       string    `db:"avatar" json:"avatar"`
	PostsCount   int       `db:"posts_count" json:"postsCount"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	// Derived from the follows table
	Followers      []UserSummary `db:"-" json:"followers"`
	Following      []UserSummary `db:"-" json:"following"`
	FollowersCount int           `db:"-" json:"followersCount"`
	FollowingCount int           `db:"-" json:"followingCount"`
	IsFollowing    bool          `db:"-" json:"isFollowing"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"required,max=100"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries a partial profile update. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	FullName *string `json:"fullName" validate:"omitempty,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
}

// ProfileResponse is returned by GET /users/profile/:id
type ProfileResponse struct {
	User  *User  `json:"user"`
	Posts []Post `json:"posts"`
}

// AvatarResponse is returned after an avatar upload
type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

// User constraints
const (
	MaxSearchResults = 10
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to use a taken username
	ErrUsernameExists = errors.New("username already taken")

	// ErrEmailExists is returned when attempting to register a taken email
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidUsername is returned when a username does not match the format rule
	ErrInvalidUsername = errors.New("username must be 3-30 characters and contain only letters, numbers and underscores")

	// ErrQueryRequired is returned when a search has no query
	ErrQueryRequired = errors.New("search query is required")
)
