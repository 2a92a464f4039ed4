package jwt

import "fmt"

type Role int

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole maps a stored role name onto a Role.
func ParseRole(name string) (Role, bool) {
	switch name {
	case "user":
		return RoleUser, true
	case "admin":
		return RoleAdmin, true
	}
	return 0, false
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type RegisterUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	Id           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password"`
}

// Claims is the verified identity carried by an access token.
type Claims struct {
	ID    string
	Email string
	Name  string
	Role  Role
}
