package service

import (
	"context"
	"fmt"
	"strings"

	"fluss/internal/cache"
	"fluss/internal/featureflags"
	"fluss/internal/mailer"
	"fluss/internal/middleware"
	"fluss/internal/models"
	"fluss/internal/repository"
	"fluss/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	flags    *featureflags.Manager
	mail     mailer.Mailer
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func NewUserService(userRepo repository.UserRepository, flags *featureflags.Manager, mail mailer.Mailer) *UserService {
	return &UserService{userRepo: userRepo, flags: flags, mail: mail}
}

// Register creates a new account. The signup flag is a kill-switch: absent
// from the config it is treated as on.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !s.flags.EnabledOrDefault(featureflags.FlagSignup, 0, true) {
		return nil, models.NewPermissionError("Signups are temporarily disabled")
	}

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("email", "Email is already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("username", "Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, models.NewOperationFailedError("register user", err)
	}
	return user, nil
}

// Login authenticates by username or email plus password. The identifier is
// treated as an email when it contains an @.
func (s *UserService) Login(ctx context.Context, usernameOrEmail, password string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if strings.Contains(usernameOrEmail, "@") {
		user, err = s.userRepo.GetByEmail(ctx, usernameOrEmail)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, usernameOrEmail)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit < 1 || limit > 100 {
		limit = 100
	}
	return s.userRepo.List(ctx, limit, offset)
}

// ForgotPassword issues a single-use reset token and mails a reset link.
// Unknown emails succeed silently so the endpoint cannot be used to probe
// which addresses exist.
func (s *UserService) ForgotPassword(ctx context.Context, email, resetBaseURL string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token := uuid.NewString()
	if err := cache.SaveResetToken(ctx, token, user.ID, cache.ResetTokenTTL); err != nil {
		return models.NewOperationFailedError("issue reset token", err)
	}

	link := fmt.Sprintf("%s/change-password/%s", strings.TrimRight(resetBaseURL, "/"), token)
	body := fmt.Sprintf(`<a href="%s">reset password</a>`, link)
	if err := s.mail.Send(ctx, user.Email, "Reset your Fluss password", body); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to send reset email", "error", err, "user_id", user.ID)
		return models.NewOperationFailedError("send reset email", err)
	}
	return nil
}

// ChangePassword consumes a reset token and sets a new password.
func (s *UserService) ChangePassword(ctx context.Context, token, newPassword string) (*models.User, error) {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	userID, err := cache.ConsumeResetToken(ctx, token)
	if err != nil {
		return nil, models.NewOperationFailedError("consume reset token", err)
	}
	if userID == 0 {
		return nil, models.NewValidationError("token", "Token expired or invalid")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", userID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Password = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.NewOperationFailedError("change password", err)
	}
	return user, nil
}

// ChangeUsername renames the account after uniqueness and shape checks.
func (s *UserService) ChangeUsername(ctx context.Context, userID uint, newUsername string) (*models.User, error) {
	if err := validation.ValidateUsername(newUsername); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByUsername(ctx, newUsername); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != userID {
		return nil, models.NewValidationError("username", "Username is already taken")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Username = newUsername
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.NewOperationFailedError("change username", err)
	}
	return user, nil
}
