package model

import "errors"

// Token API error codes (used in HTTP responses)
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// AccessToken is a signed JWT plus its lifetime in seconds.
type AccessToken struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// LoginResponse is returned after successful login or registration
type LoginResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)
