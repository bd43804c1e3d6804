package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/project-hub-backend/auth"
	"github.com/rpupo63/project-hub-backend/database"
	"github.com/rpupo63/project-hub-backend/errs"
	"github.com/rpupo63/project-hub-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	Institution *string
}

type UpdateProfileInput struct {
	Name            string
	Institution     *string
	CurrentPassword string
	NewPassword     string
}

// Session is a user together with a freshly issued access token.
type Session struct {
	User  *models.User
	Token string
}

type UserService struct {
	db     database.Database
	tokens *auth.TokenManager
	logger zerolog.Logger
}

func NewUserService(db database.Database, tokens *auth.TokenManager) *UserService {
	return &UserService{
		db:     db,
		tokens: tokens,
		logger: log.With().Str("service", "userService").Logger(),
	}
}

// Register creates an account and signs the new user in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := auth.ValidateEmail(in.Email); err != nil {
		return nil, errs.NewValidationError("email", err.Error())
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, errs.NewValidationError("password", err.Error())
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.NewMissingFieldError("name")
	}

	existing, err := s.db.UserRepo().FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if existing != nil {
		return nil, errs.NewEmailTakenError()
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("error creating user", err)
	}

	user := &models.User{
		Email:       in.Email,
		Password:    hash,
		Name:        name,
		Institution: trimOptional(in.Institution),
		Role:        models.RoleUser,
	}
	if err := s.db.UserRepo().Add(ctx, user); err != nil {
		dbErr := errs.NewDatabaseError("create", "user", err)
		if errs.IsConflict(dbErr) {
			// lost a race with another registration for the same email
			return nil, errs.NewEmailTakenError()
		}
		return nil, dbErr
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("User registered")
	return s.session(user)
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errs.NewMissingFieldError("email")
	}
	if password == "" {
		return nil, errs.NewMissingFieldError("password")
	}

	user, err := s.db.UserRepo().FindByEmail(ctx, email)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil || !auth.CheckPassword(user.Password, password) {
		return nil, errs.NewInvalidCredentialsError()
	}

	return s.session(user)
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.db.UserRepo().FindByID(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFound("user")
	}
	return user, nil
}

// UpdateProfile sets name and institution. A password change needs the
// current password.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = user.Name
	}

	var passwordHash *string
	if in.NewPassword != "" {
		if !auth.CheckPassword(user.Password, in.CurrentPassword) {
			return nil, errs.NewWrongPasswordError()
		}
		if err := auth.ValidatePassword(in.NewPassword); err != nil {
			return nil, errs.NewValidationError("newPassword", err.Error())
		}
		hash, err := auth.HashPassword(in.NewPassword)
		if err != nil {
			return nil, errs.NewInternalErrorWithCause("error updating profile", err)
		}
		passwordHash = &hash
	}

	if err := s.db.UserRepo().UpdateProfile(ctx, userID, name, trimOptional(in.Institution), passwordHash); err != nil {
		return nil, errs.NewDatabaseError("update", "user", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *UserService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("error issuing token", err)
	}
	return &Session{User: user, Token: token}, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
