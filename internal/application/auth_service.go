package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/policy"
	repo "github.com/oksasatya/vpms/internal/domain/repository"
	"github.com/oksasatya/vpms/pkg/apperror"
	"github.com/oksasatya/vpms/pkg/helpers"
	"github.com/oksasatya/vpms/pkg/validation"
)

const (
	msgInvalidCredentials = "invalid email or password"
	msgInactiveUser       = "user account is inactive"
	msgEmailTaken         = "email already registered"
)

type AuthService struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Logger: logger}
}

// RegisterInput is the sign-up payload after binding.
type RegisterInput struct {
	FullName string `validate:"required" json:"full_name"`
	Email    string `validate:"required,basicemail" json:"email"`
	Password string `validate:"required,pwd" json:"password"`
	Phone    string `validate:"omitempty,phone" json:"phone"`
	Role     string `json:"role"`
}

func (in *RegisterInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
}

// AuthResult is a freshly issued session.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

func (s *AuthService) log() *logrus.Entry { return helpers.Component(s.Logger, "auth") }

// Register creates an active account. Only guard and resident may be chosen;
// any other requested role becomes resident.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	u, err := createUser(ctx, s.Users, in, entity.SelfRegisterRole(in.Role))
	if err != nil {
		return nil, err
	}
	s.log().WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	return s.issue(u)
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	details := map[string]string{}
	if email == "" {
		details["email"] = "is required"
	}
	if password == "" {
		details["password"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("email and password are required", details)
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Unauthenticated(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, apperror.Unauthenticated(msgInvalidCredentials)
	}
	if !u.IsActive {
		return nil, apperror.Unauthenticated(msgInactiveUser)
	}
	return s.issue(u)
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return nil, apperror.Unauthenticated(err.Error())
	}
	id, _ := claims.UserID()
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Unauthenticated("user not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !u.IsActive {
		return nil, apperror.Unauthenticated(msgInactiveUser)
	}
	return u, nil
}

// Me reloads the caller so the response reflects the stored record.
func (s *AuthService) Me(ctx context.Context, actor policy.Actor) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, actor.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return u, nil
}

// ListResidents returns active residents ordered by full name.
func (s *AuthService) ListResidents(ctx context.Context, actor policy.Actor) ([]entity.User, error) {
	if err := policy.Authorize(actor, policy.OpListResidents, 0); err != nil {
		return nil, err
	}
	out, err := s.Users.ListActiveByRole(ctx, entity.RoleResident)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.Generate(u.ID, string(u.Role), u.Email)
	if err != nil {
		s.log().WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		return nil, apperror.Internal(err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// createUser validates and stores a user with the given role.
func createUser(ctx context.Context, users repo.UserRepository, in RegisterInput, role entity.Role) (*entity.User, error) {
	in.normalize()
	if details := validation.Struct(in); details != nil {
		return nil, apperror.Validation("invalid registration data", details)
	}

	if _, err := users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict(msgEmailTaken)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u := &entity.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if in.Phone != "" {
		phone := in.Phone
		u.Phone = &phone
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, apperror.Conflict(msgEmailTaken)
		}
		return nil, apperror.Internal(err)
	}
	return u, nil
}
