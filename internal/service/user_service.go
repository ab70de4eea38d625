package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/validation"
)

type userRepository interface {
	repository[domain.User]
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Count(ctx context.Context, filters map[string]string) (int, error)
}

type tokenIssuer interface {
	Issue(u *domain.User) (string, time.Time, error)
}

type UserService struct {
	*Resource[domain.User, *domain.User]
	store  userRepository
	tokens tokenIssuer
}

func NewUserService(store userRepository, tokens tokenIssuer, pub events.Publisher, logger *slog.Logger) *UserService {
	s := &UserService{
		Resource: NewResource[domain.User](store, pub, logger),
		store:    store,
		tokens:   tokens,
	}
	s.preserve = func(ctx context.Context, stored, incoming *domain.User) error {
		incoming.Email = normaliseEmail(incoming.Email)
		incoming.PasswordHash = stored.PasswordHash
		incoming.LastLoginAt = stored.LastLoginAt
		return s.keepAnAdmin(ctx, stored, incoming)
	}
	return s
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser is an account to create with its initial password.
type NewUser struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
	Phone    string      `json:"phone"`
	Password string      `json:"password"`
}

// Register creates an active account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in NewUser) (*domain.User, error) {
	u := &domain.User{
		Email:  normaliseEmail(in.Email),
		Name:   strings.TrimSpace(in.Name),
		Role:   in.Role,
		Phone:  in.Phone,
		Active: true,
	}
	if u.Role == "" {
		u.Role = domain.RoleViewer
	}
	if err := s.validate(ctx, u); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	created, err := s.insert(ctx, u)
	if errors.Is(err, domain.ErrConflict) {
		return nil, validation.Invalid("email", "is already registered")
	}
	return created, err
}

// Create is not supported without a password; use Register.
func (s *UserService) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, validation.Invalid("password", "is required")
}

func (s *UserService) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	taken, err := s.emailTaken(ctx, u.Email, u.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, validation.Invalid("email", "is already registered")
	}
	return s.Resource.Update(ctx, u)
}

// emailTaken reports whether an account other than self uses email.
func (s *UserService) emailTaken(ctx context.Context, email string, self uuid.UUID) (bool, error) {
	other, err := s.store.GetByEmail(ctx, normaliseEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return other.ID != self, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.keepAnAdmin(ctx, u, nil); err != nil {
		return err
	}
	return s.Resource.Delete(ctx, id)
}

// keepAnAdmin rejects a change that would leave no active administrator.
// next is nil when the user is being deleted.
func (s *UserService) keepAnAdmin(ctx context.Context, current, next *domain.User) error {
	if current.Role != domain.RoleAdmin || !current.Active {
		return nil
	}
	if next != nil && next.Role == domain.RoleAdmin && next.Active {
		return nil
	}
	n, err := s.store.Count(ctx, map[string]string{"role": string(domain.RoleAdmin), "active": "true"})
	if err != nil {
		return err
	}
	if n <= 1 {
		return conflict("the last active administrator cannot be removed")
	}
	return nil
}

// Session is the result of a successful login.
type Session struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Authenticate checks credentials and issues an access token. Unknown
// emails, wrong passwords and disabled accounts all fail the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.store.GetByEmail(ctx, normaliseEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !u.Active || !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.WarnContext(ctx, "login rejected", "user_id", u.ID)
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.store.TouchLogin(ctx, u.ID, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to record login", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}
	s.logger.InfoContext(ctx, "login succeeded", "user_id", u.ID)
	return &Session{User: u, Token: token, ExpiresAt: expires}, nil
}

// ChangePassword replaces a user's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return validation.Invalid("currentPassword", "is incorrect")
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	if _, err := s.save(ctx, u); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password changed", "user_id", id)
	return nil
}

// Bootstrap creates the first administrator when no users exist. It is a
// no-op when email is empty or users are already present.
func (s *UserService) Bootstrap(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, nil
	}
	n, err := s.store.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}
	u, err := s.Register(ctx, NewUser{
		Email:    email,
		Name:     "Administrator",
		Role:     domain.RoleAdmin,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	s.logger.InfoContext(ctx, "bootstrap administrator created", "email", u.Email)
	return u, nil
}
