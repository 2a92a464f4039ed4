package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	internaljwt "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/jwt"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"

	"github.com/google/uuid"
)

const minPasswordLength = 8

type Service struct {
	repo Repository
	now  func() time.Time
}

type TokenIssuer func(ctx context.Context, user internaljwt.User, role internaljwt.Role, validUntil int64) (internaljwt.TokenResponse, error)

var createTokenWithRefresh TokenIssuer = internaljwt.CreateTokenWithRefresh

func SetTokenIssuer(issuer TokenIssuer) {
	if issuer == nil {
		createTokenWithRefresh = internaljwt.CreateTokenWithRefresh
		return
	}
	createTokenWithRefresh = issuer
}

type TokenRefresher func(ctx context.Context, refreshToken string, role internaljwt.Role) (string, error)

var refreshAccessToken TokenRefresher = internaljwt.RefreshToken

func SetTokenRefresher(refresher TokenRefresher) {
	if refresher == nil {
		refreshAccessToken = internaljwt.RefreshToken
		return
	}
	refreshAccessToken = refresher
}

func New(db *database.Database) *Service {
	return &Service{
		repo: NewDynamoRepository(db),
		now:  time.Now,
	}
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo: repo,
		now:  now,
	}
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (AuthResult, error) {
	email := normalizeEmail(params.Email)
	password := strings.TrimSpace(params.Password)
	name := strings.TrimSpace(params.Name)

	if email == "" || password == "" || name == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}
	if !strings.Contains(email, "@") {
		return AuthResult{}, newError(ErrorCodeValidation, "invalid email", nil)
	}
	if len(password) < minPasswordLength {
		return AuthResult{}, newError(ErrorCodeValidation, "password is too short", nil)
	}

	user, err := s.newUser(name, email, password, model.UserRoleUser)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrExists) {
			return AuthResult{}, newError(ErrorCodeConflict, "email already registered", err)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	return s.issue(ctx, user)
}

func (s *Service) Login(ctx context.Context, params LoginParams) (AuthResult, error) {
	email := normalizeEmail(params.Email)
	password := strings.TrimSpace(params.Password)

	if email == "" || password == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	if !internaljwt.ValidatePassword(user.PasswordHash, password) {
		return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
	}

	return s.issue(ctx, user)
}

func (s *Service) Me(ctx context.Context, identity Identity) (ProfileResult, error) {
	userID := strings.TrimSpace(identity.UserID)
	if userID == "" {
		return ProfileResult{}, newError(ErrorCodeUnauthorized, "invalid user identity", nil)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ProfileResult{}, newError(ErrorCodeNotFound, "user not found", err)
		}
		return ProfileResult{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	return ProfileResult{User: user}, nil
}

// Refresh exchanges a refresh token for a new access token of the role the
// refresh token was issued for.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	token := strings.TrimSpace(refreshToken)
	if token == "" {
		return "", newError(ErrorCodeValidation, "refreshToken is required", nil)
	}

	role, ok := internaljwt.RefreshRole(token)
	if !ok {
		return "", newError(ErrorCodeUnauthorized, "invalid refresh token", nil)
	}

	access, err := refreshAccessToken(ctx, token, role)
	if err != nil {
		return "", newError(ErrorCodeUnauthorized, "invalid refresh token", err)
	}
	return access, nil
}

// Logout revokes a refresh token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	token := strings.TrimSpace(refreshToken)
	if token == "" {
		return newError(ErrorCodeValidation, "refreshToken is required", nil)
	}
	if err := internaljwt.RevokeRefreshToken(ctx, token); err != nil {
		return newError(ErrorCodeInternal, "failed to revoke refresh token", err)
	}
	return nil
}

// EnsureAdmin creates the admin account for email, or promotes and
// re-passwords the existing one.
func (s *Service) EnsureAdmin(ctx context.Context, params RegisterParams) (model.UserItem, error) {
	email := normalizeEmail(params.Email)
	password := strings.TrimSpace(params.Password)
	name := strings.TrimSpace(params.Name)
	if email == "" || password == "" {
		return model.UserItem{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}
	if name == "" {
		name = "Administrator"
	}

	user, err := s.newUser(name, email, password, model.UserRoleAdmin)
	if err != nil {
		return model.UserItem{}, err
	}

	existing, err := s.repo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.UserID = existing.UserID
		user.CreatedAt = existing.CreatedAt
	case !errors.Is(err, ErrNotFound):
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	if err := s.repo.PutUser(ctx, user); err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to save user", err)
	}
	return user, nil
}

func (s *Service) IdentityFromAuthorizationHeader(header string) (Identity, error) {
	authHeader := strings.TrimSpace(header)
	if authHeader == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "missing authorization header", nil)
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid authorization header format", nil)
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return IdentityFromToken(token)
}

// IdentityFromToken verifies an access token of either role.
func IdentityFromToken(token string) (Identity, error) {
	if token == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "empty token", nil)
	}

	claims, err := internaljwt.VerifyToken(token)
	if err != nil {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid token", err)
	}

	return Identity{
		UserID: claims.ID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}, nil
}

func (s *Service) newUser(name, email, password, role string) (model.UserItem, error) {
	hashed, err := internaljwt.NewUser(internaljwt.RegisterUser{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to prepare user", err)
	}

	return model.UserItem{
		UserID:       uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hashed.PasswordHash,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) issue(ctx context.Context, user model.UserItem) (AuthResult, error) {
	role, ok := internaljwt.ParseRole(user.Role)
	if !ok {
		return AuthResult{}, newError(ErrorCodeInternal, "user has an unknown role", nil)
	}

	tokens, err := createTokenWithRefresh(ctx, internaljwt.User{
		Id:    user.UserID,
		Email: user.Email,
		Name:  user.Name,
	}, role, 0)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}

	return AuthResult{User: user, Tokens: tokens}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
