package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"finax-server/src/apperr"
	"finax-server/src/auth"
	"finax-server/src/db"
	"finax-server/src/models"
	"finax-server/src/notify"
	"finax-server/src/util"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgInvalidToken       = "invalid or expired token"
	msgInvalidResetToken  = "invalid or expired reset token"
	msgWrongPassword      = "current password is incorrect"
	msgEmailTaken         = "email already registered"
	msgPasswordPolicy     = "password must be at least 6 characters"
)

type AuthService struct {
	users    db.UserStore
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
	notifier notify.Notifier
	resetTTL time.Duration
	now      func() time.Time
	newID    func() string

	// compared against when the email is unknown so both login failures cost a bcrypt round
	dummyHash string
}

func NewAuthService(users db.UserStore, tokens *auth.TokenManager, hasher *auth.PasswordHasher, notifier notify.Notifier, resetTTL time.Duration) (*AuthService, error) {
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		notifier:  notifier,
		resetTTL:  resetTTL,
		now:       time.Now,
		newID:     uuid.NewString,
		dummyHash: dummyHash,
	}, nil
}

// WithClock is used by tests to move time.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Register creates the user with its default categories. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := util.NormalizeEmail(req.Email)

	if name == "" || email == "" || req.Password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if !util.ValidateName(name) {
		return nil, apperr.Validation("name is too long")
	}
	if !util.ValidateEmail(email) {
		return nil, apperr.Validation("invalid email format")
	}
	if !util.ValidatePassword(req.Password) {
		return nil, apperr.Validation(msgPasswordPolicy)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	userID := s.newID()
	user := &models.User{
		ID:           userID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.users.CreateUser(ctx, user, DefaultCategories(userID, now, s.newID))
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperr.Conflict(msgEmailTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Printf("INFO: Successful registration - User: %s", created.ID)
	return created, nil
}

// Login answers every failure with the same message so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = util.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return nil, "", fmt.Errorf("get user by email: %w", err)
		}
		s.hasher.Compare(s.dummyHash, password)
		log.Printf("ERROR: Login failed for unknown email")
		return nil, "", apperr.Authentication(msgInvalidCredentials)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return nil, "", fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		log.Printf("ERROR: Invalid password attempt for user %s", user.ID)
		return nil, "", apperr.Authentication(msgInvalidCredentials)
	}

	token, _, err := s.tokens.Issue(user.ID, user.SessionVersion)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	log.Printf("INFO: Successful login - User: %s", user.ID)
	return user, token, nil
}

// Authenticate resolves a bearer token to its user. Tokens issued before a password reset are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindAuthentication, Message: msgInvalidToken, Err: err}
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Authentication(msgInvalidToken)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.SessionVersion != claims.Version {
		return nil, apperr.Authentication(msgInvalidToken)
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies any of name, email and password. Every input is checked before anything is written.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name == nil && req.Email == nil && req.CurrentPassword == nil && req.NewPassword == nil {
		return nil, apperr.Validation("nothing to update")
	}

	name, email := user.Name, user.Email
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if !util.ValidateName(name) {
			return nil, apperr.Validation("name is required")
		}
	}
	if req.Email != nil {
		email = util.NormalizeEmail(*req.Email)
		if !util.ValidateEmail(email) {
			return nil, apperr.Validation("invalid email format")
		}
		if email != user.Email {
			existing, err := s.users.GetUserByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, apperr.Conflict(msgEmailTaken)
			case err != nil && !errors.Is(err, db.ErrNotFound):
				return nil, fmt.Errorf("get user by email: %w", err)
			}
		}
	}

	var newHash string
	if req.CurrentPassword != nil || req.NewPassword != nil {
		if req.CurrentPassword == nil || *req.CurrentPassword == "" {
			return nil, apperr.Validation("current password is required")
		}
		if req.NewPassword == nil || !util.ValidatePassword(*req.NewPassword) {
			return nil, apperr.Validation(msgPasswordPolicy)
		}
		ok, err := s.hasher.Compare(user.PasswordHash, *req.CurrentPassword)
		if err != nil {
			return nil, fmt.Errorf("compare password: %w", err)
		}
		if !ok {
			log.Printf("ERROR: Invalid current password attempt for user %s", user.ID)
			return nil, apperr.Authentication(msgWrongPassword)
		}
		if newHash, err = s.hasher.Hash(*req.NewPassword); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	now := s.now().UTC()
	if name != user.Name || email != user.Email {
		if _, err := s.users.UpdateUserProfile(ctx, user.ID, name, email, now); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return nil, apperr.Conflict(msgEmailTaken)
			}
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	if newHash != "" {
		if err := s.users.UpdateUserPassword(ctx, user.ID, user.PasswordHash, newHash, now); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				// the hash moved under us
				return nil, apperr.Authentication(msgWrongPassword)
			}
			return nil, fmt.Errorf("update password: %w", err)
		}
		log.Printf("INFO: User password changed - User: %s", user.ID)
	}

	log.Printf("INFO: User profile updated - User: %s", user.ID)
	return s.GetUser(ctx, user.ID)
}

func (s *AuthService) UpdateAvatar(ctx context.Context, userID, avatarURL string) (*models.User, error) {
	avatarURL = strings.TrimSpace(avatarURL)
	if !util.ValidateAvatarURL(avatarURL) {
		return nil, apperr.Validation("avatarUrl must be an http(s) URL")
	}
	user, err := s.users.UpdateUserAvatar(ctx, userID, avatarURL, s.now().UTC())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	log.Printf("INFO: User avatar updated - User: %s", userID)
	return user, nil
}

// ForgotPassword succeeds whether or not the email is registered. Only a registered email gets a token,
// replacing any earlier one. Failures after the lookup are logged, not returned, for the same reason.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = util.NormalizeEmail(email)
	if !util.ValidateEmail(email) {
		return nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Printf("INFO: Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		log.Printf("ERROR: Failed to generate reset token for user %s: %v", user.ID, err)
		return nil
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hash, expiresAt, now); err != nil {
		log.Printf("ERROR: Failed to store reset token for user %s: %v", user.ID, err)
		return nil
	}

	err = s.notifier.SendPasswordReset(ctx, notify.PasswordReset{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		log.Printf("ERROR: Failed to send reset token for user %s: %v", user.ID, err)
		return nil
	}

	log.Printf("INFO: Password reset token issued - User: %s", user.ID)
	return nil
}

// ResetPassword consumes a reset token. The consume is a single conditional update, so of two
// concurrent calls with the same token only one succeeds. Existing sessions are revoked.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.Token(msgInvalidResetToken)
	}
	if !util.ValidatePassword(newPassword) {
		return apperr.Validation(msgPasswordPolicy)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.users.ConsumeResetToken(ctx, auth.HashResetToken(token), hash, s.now().UTC())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Printf("ERROR: Password reset with invalid or expired token")
			return apperr.Token(msgInvalidResetToken)
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	log.Printf("INFO: Password reset completed - User: %s", userID)
	return nil
}
