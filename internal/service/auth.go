package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"socialnet/internal/config"
	"socialnet/internal/model"
)

// AuthService issues and verifies stateless access tokens.
type AuthService struct {
	config *config.Config
	now    func() time.Time
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg, now: time.Now}
}

// GenerateAccessToken signs an HS256 token carrying the user id.
func (s *AuthService) GenerateAccessToken(userID string) (*model.AccessToken, error) {
	issuedAt := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     issuedAt.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     issuedAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	return &model.AccessToken{Token: signed, ExpiresIn: s.config.AccessTokenMaxAge}, nil
}

// ParseAccessToken verifies the signature and expiry and returns the user id.
func (s *AuthService) ParseAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", model.ErrTokenExpired
		}
		return "", model.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", model.ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", model.ErrTokenInvalid
	}
	return userID, nil
}
