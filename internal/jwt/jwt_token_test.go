package jwt

import (
	"testing"
	"time"
)

func useTestSecrets(t *testing.T) {
	t.Helper()
	Configure("user-secret", "admin-secret", nil)
	t.Cleanup(func() {
		Configure("", "", nil)
	})
}

func TestCreateAndVerifyToken(t *testing.T) {
	useTestSecrets(t)

	token, err := CreateToken(User{Id: "u-1", Email: "a@b.co", Name: "Ada"}, RoleAdmin, 0)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if claims.ID != "u-1" || claims.Email != "a@b.co" || claims.Name != "Ada" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ParseToken(token, RoleUser); err == nil {
		t.Fatal("expected admin token to be rejected as a user token")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	useTestSecrets(t)

	token, err := CreateToken(User{Id: "u-1"}, RoleUser, time.Now().Add(-time.Minute).Unix())
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}
	if _, err := ParseToken(token, RoleUser); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestCreateTokenWithoutSecret(t *testing.T) {
	Configure("", "", nil)
	if _, err := CreateToken(User{Id: "u-1"}, RoleUser, 0); err == nil {
		t.Fatal("expected missing secret to fail")
	}
}

func TestPasswordHashing(t *testing.T) {
	user, err := NewUser(RegisterUser{Email: "a@b.co", Password: "hunter22"})
	if err != nil {
		t.Fatalf("NewUser error: %v", err)
	}
	if !ValidatePassword(user.PasswordHash, "hunter22") {
		t.Fatal("expected password to validate")
	}
	if ValidatePassword(user.PasswordHash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}
