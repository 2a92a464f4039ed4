package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	internaljwt "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/jwt"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]model.UserItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: make(map[string]model.UserItem)}
}

func (m *memoryRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return ErrExists
		}
	}
	m.users[user.UserID] = user
	return nil
}

func (m *memoryRepository) PutUser(ctx context.Context, user model.UserItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user
	return nil
}

func (m *memoryRepository) FindUserByEmail(ctx context.Context, email string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.UserItem{}, ErrNotFound
}

func (m *memoryRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return model.UserItem{}, ErrNotFound
	}
	return user, nil
}

func setupJWT(t *testing.T) {
	t.Helper()

	original := createTokenWithRefresh
	internaljwt.Configure("user-secret", "admin-secret", nil)
	SetTokenIssuer(func(ctx context.Context, user internaljwt.User, role internaljwt.Role, validUntil int64) (internaljwt.TokenResponse, error) {
		token, err := internaljwt.CreateToken(user, role, validUntil)
		if err != nil {
			return internaljwt.TokenResponse{}, err
		}
		return internaljwt.TokenResponse{AccessToken: token}, nil
	})

	t.Cleanup(func() {
		SetTokenIssuer(original)
		internaljwt.Configure("", "", nil)
	})
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func errorCode(t *testing.T, err error) ErrorCode {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got %T (%v)", err, err)
	}
	return svcErr.Code
}

func TestRegisterIssuesUserToken(t *testing.T) {
	setupJWT(t)
	svc := NewWithRepository(newMemoryRepository(), fixedNow)

	result, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Dana",
		Email:    " Dana@Example.com ",
		Password: "long-enough",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.User.Email != "dana@example.com" || result.User.Role != model.UserRoleUser {
		t.Fatalf("unexpected user %#v", result.User)
	}
	if result.User.PasswordHash == "long-enough" {
		t.Fatal("password stored in clear text")
	}

	identity, err := IdentityFromToken(result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	if identity.UserID != result.User.UserID || identity.IsAdmin() {
		t.Fatalf("unexpected identity %#v", identity)
	}
}

func TestRegisterValidatesRequiredFields(t *testing.T) {
	setupJWT(t)
	svc := NewWithRepository(newMemoryRepository(), fixedNow)

	cases := []RegisterParams{
		{Name: "Dana", Email: "dana@example.com"},
		{Name: "Dana", Email: "not-an-email", Password: "long-enough"},
		{Name: "Dana", Email: "dana@example.com", Password: "short"},
	}
	for _, params := range cases {
		_, err := svc.Register(context.Background(), params)
		if code := errorCode(t, err); code != ErrorCodeValidation {
			t.Fatalf("params %#v: expected validation error, got %s", params, code)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	setupJWT(t)
	svc := NewWithRepository(newMemoryRepository(), fixedNow)

	params := RegisterParams{Name: "Dana", Email: "dana@example.com", Password: "long-enough"}
	if _, err := svc.Register(context.Background(), params); err != nil {
		t.Fatalf("register error: %v", err)
	}
	_, err := svc.Register(context.Background(), params)
	if code := errorCode(t, err); code != ErrorCodeConflict {
		t.Fatalf("expected conflict, got %s", code)
	}
}

func TestLogin(t *testing.T) {
	setupJWT(t)
	svc := NewWithRepository(newMemoryRepository(), fixedNow)

	registered, err := svc.Register(context.Background(), RegisterParams{Name: "Dana", Email: "dana@example.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginParams{Email: "DANA@example.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if result.User.UserID != registered.User.UserID || result.Tokens.AccessToken == "" {
		t.Fatalf("unexpected login result %#v", result)
	}

	_, err = svc.Login(context.Background(), LoginParams{Email: "dana@example.com", Password: "wrong-password"})
	if code := errorCode(t, err); code != ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized, got %s", code)
	}

	_, err = svc.Login(context.Background(), LoginParams{Email: "nobody@example.com", Password: "long-enough"})
	if code := errorCode(t, err); code != ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown email, got %s", code)
	}
}

func TestEnsureAdminPromotesExistingUser(t *testing.T) {
	setupJWT(t)
	repo := newMemoryRepository()
	svc := NewWithRepository(repo, fixedNow)

	registered, err := svc.Register(context.Background(), RegisterParams{Name: "Dana", Email: "dana@example.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}

	admin, err := svc.EnsureAdmin(context.Background(), RegisterParams{Email: "dana@example.com", Password: "new-password"})
	if err != nil {
		t.Fatalf("ensure admin error: %v", err)
	}
	if admin.UserID != registered.User.UserID || admin.Role != model.UserRoleAdmin {
		t.Fatalf("unexpected admin %#v", admin)
	}

	result, err := svc.Login(context.Background(), LoginParams{Email: "dana@example.com", Password: "new-password"})
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	identity, err := IdentityFromToken(result.Tokens.AccessToken)
	if err != nil || !identity.IsAdmin() {
		t.Fatalf("expected admin identity, got %#v, %v", identity, err)
	}
}

func TestMe(t *testing.T) {
	setupJWT(t)
	svc := NewWithRepository(newMemoryRepository(), fixedNow)

	registered, err := svc.Register(context.Background(), RegisterParams{Name: "Dana", Email: "dana@example.com", Password: "long-enough"})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}

	identity, err := svc.IdentityFromAuthorizationHeader("Bearer " + registered.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("identity error: %v", err)
	}

	profile, err := svc.Me(context.Background(), identity)
	if err != nil {
		t.Fatalf("me error: %v", err)
	}
	if profile.User.Name != "Dana" {
		t.Fatalf("unexpected profile %#v", profile)
	}

	_, err = svc.Me(context.Background(), Identity{UserID: "missing"})
	if code := errorCode(t, err); code != ErrorCodeNotFound {
		t.Fatalf("expected not found, got %s", code)
	}

	if _, err := svc.IdentityFromAuthorizationHeader("Token abc"); err == nil {
		t.Fatal("expected malformed header to fail")
	}
}

func TestRefresh(t *testing.T) {
	setupJWT(t)
	var gotRole internaljwt.Role
	SetTokenRefresher(func(ctx context.Context, refreshToken string, role internaljwt.Role) (string, error) {
		gotRole = role
		if refreshToken != "abc2" {
			return "", errors.New("unknown refresh token")
		}
		return "new-access", nil
	})
	t.Cleanup(func() { SetTokenRefresher(nil) })

	svc := NewWithRepository(newMemoryRepository(), fixedNow)

	access, err := svc.Refresh(context.Background(), " abc2 ")
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if access != "new-access" || gotRole != internaljwt.RoleAdmin {
		t.Fatalf("unexpected refresh result %q for role %v", access, gotRole)
	}

	_, err = svc.Refresh(context.Background(), "zzz1")
	if code := errorCode(t, err); code != ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown token, got %s", code)
	}

	_, err = svc.Refresh(context.Background(), "abc9")
	if code := errorCode(t, err); code != ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized for bad role marker, got %s", code)
	}

	_, err = svc.Refresh(context.Background(), "")
	if code := errorCode(t, err); code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}

func TestLogoutWithoutRefreshStore(t *testing.T) {
	setupJWT(t)
	svc := NewWithRepository(newMemoryRepository(), fixedNow)

	if err := svc.Logout(context.Background(), "abc1"); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if code := errorCode(t, svc.Logout(context.Background(), " ")); code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}
