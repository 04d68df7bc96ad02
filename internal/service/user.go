package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/model"
	"socialnet/internal/repository"
	"socialnet/internal/storage"
)

// authorPosts lists a user's posts for the profile page.
type authorPosts interface {
	ListByAuthor(ctx context.Context, authorID, viewerID string) ([]model.Post, error)
}

// UserService handles business logic for user operations
type UserService struct {
	repo       repository.UserRepository
	followRepo repository.FollowRepository
	posts      authorPosts
	media      *MediaService
	log        logrus.FieldLogger
}

func NewUserService(
	repo repository.UserRepository,
	followRepo repository.FollowRepository,
	posts authorPosts,
	media *MediaService,
	log logrus.FieldLogger,
) *UserService {
	return &UserService{
		repo:       repo,
		followRepo: followRepo,
		posts:      posts,
		media:      media,
		log:        log,
	}
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, req.Username, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     model.EscapeHTML(req.FullName),
	}

	// Create maps a lost uniqueness race to the same conflict errors.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Don't reveal whether the email exists or not
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile returns a user with follower and following summaries.
// Email is only kept when viewers look at their own profile.
func (s *UserService) GetProfile(ctx context.Context, userID, viewerID string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.GetFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.GetFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Followers = followers
	user.Following = following
	user.FollowersCount = len(followers)
	user.FollowingCount = len(following)

	if viewerID != userID {
		user.Email = ""
		for _, f := range followers {
			if f.ID == viewerID {
				user.IsFollowing = true
				break
			}
		}
	}

	return user, nil
}

// GetProfileWithPosts returns the profile plus every post by the user, newest first.
func (s *UserService) GetProfileWithPosts(ctx context.Context, userID, viewerID string) (*model.ProfileResponse, error) {
	user, err := s.GetProfile(ctx, userID, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByAuthor(ctx, userID, viewerID)
	if err != nil {
		return nil, err
	}

	return &model.ProfileResponse{User: user, Posts: posts}, nil
}

// UpdateProfile applies a partial update. An empty full name is ignored, an empty bio
// clears the bio. A username change is validated before anything is written, so a
// rejected username leaves the whole profile untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.User, error) {
	ctx, span := startSpan(ctx, "UserService.UpdateProfile", attribute.String("user.id", userID))
	var err error
	defer func() { endSpan(span, err) }()

	if err = model.Validate(req); err != nil {
		return nil, err
	}

	var current *model.User
	current, err = s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	update := model.UpdateProfileRequest{}

	if req.FullName != nil {
		if fullName := strings.TrimSpace(*req.FullName); fullName != "" {
			escaped := model.EscapeHTML(fullName)
			update.FullName = &escaped
		}
	}

	if req.Bio != nil {
		escaped := model.EscapeHTML(strings.TrimSpace(*req.Bio))
		update.Bio = &escaped
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != "" && username != current.Username {
			if !model.IsValidUsername(username) {
				err = &model.ValidationError{Message: model.ErrInvalidUsername.Error()}
				return nil, err
			}
			var taken bool
			taken, err = s.repo.ExistsByUsername(ctx, username, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to check username: %w", err)
			}
			if taken {
				err = model.ErrUsernameExists
				return nil, err
			}
			update.Username = &username
		}
	}

	if update.Username != nil || update.FullName != nil || update.Bio != nil {
		if err = s.repo.Update(ctx, userID, update); err != nil {
			return nil, err
		}
	}

	var user *model.User
	user, err = s.GetProfile(ctx, userID, userID)
	return user, err
}

// Search matches usernames and full names, capped at MaxSearchResults.
func (s *UserService) Search(ctx context.Context, query string) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &model.ValidationError{Message: model.ErrQueryRequired.Error()}
	}
	return s.repo.Search(ctx, query, model.MaxSearchResults)
}

// UploadAvatar stores a new avatar and points the user at it.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, upload storage.Upload) (*model.AvatarResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.media.UploadAvatar(ctx, upload)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAvatar(ctx, userID, result.URL); err != nil {
		s.media.Remove(ctx, result.URL)
		return nil, err
	}

	s.media.Remove(ctx, user.Avatar)
	return &model.AvatarResponse{Avatar: result.URL}, nil
}
