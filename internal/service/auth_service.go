package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodmart/internal/auth"
	"foodmart/internal/model"
	"foodmart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, logger zerolog.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger.With().Str("service", "auth").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleCustomer
	}
	if role == model.RoleAdmin {
		return nil, model.ErrForbidden.With("Admin accounts cannot be self-registered", nil)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		IsBlocked:    role == model.RoleRestaurant,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.ErrConflict.With("User already exists", map[string]any{"email": user.Email})
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Bool("blocked", user.IsBlocked).
		Msg("user registered")

	resp := &model.AuthResponse{User: user}
	if user.IsBlocked {
		return resp, nil
	}
	if resp.Token, err = s.tokens.Issue(user.ID, user.Role); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Debug().Msg("login rejected: bad credentials")
		return nil, model.ErrInvalidCredentials
	}
	if user.IsBlocked {
		s.logger.Info().Str("user_id", user.ID.String()).Msg("login rejected: account blocked")
		return nil, model.ErrAccountBlocked
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: user, Token: token}, nil
}

func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return loadUser(ctx, s.users, userID)
}

func (s *authService) ApplyDelivery(ctx context.Context, caller model.Caller) (*model.AuthResponse, error) {
	user, err := s.switchRole(ctx, caller.ID, model.RoleDelivery, false)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{User: user, Token: token}, nil
}

func (s *authService) ApplyRestaurant(ctx context.Context, caller model.Caller) (*model.User, error) {
	return s.switchRole(ctx, caller.ID, model.RoleRestaurant, true)
}

// switchRole moves a customer to role. Any other current role is refused.
func (s *authService) switchRole(ctx context.Context, userID uuid.UUID, role model.Role, blocked bool) (*model.User, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleCustomer {
		return nil, model.ErrInvalidState.With(
			fmt.Sprintf("User with role %s cannot apply to become %s", user.Role, role),
			map[string]any{"current": user.Role, "requested": role},
		)
	}

	updated, err := s.users.UpdateRole(ctx, userID, role, blocked)
	if err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	if updated == nil {
		return nil, model.ErrUserNotFound
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("role", string(role)).
		Bool("blocked", blocked).
		Msg("role application accepted")
	return updated, nil
}

func loadUser(ctx context.Context, users repository.UserRepository, id uuid.UUID) (*model.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
