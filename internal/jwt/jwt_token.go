package jwt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/utils"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
)

const refreshKeyPrefix = "refresh:"

func roleChar(role Role) string {
	switch role {
	case RoleUser:
		return "1"
	case RoleAdmin:
		return "2"
	}
	return ""
}

func roleFromChar(c string) (Role, bool) {
	switch c {
	case "1":
		return RoleUser, true
	case "2":
		return RoleAdmin, true
	}
	return 0, false
}

func CreateToken(user User, role Role, validUntil int64) (string, error) {
	secret, ok := secretFor(role)
	if !ok {
		return "", fmt.Errorf("invalid role specified")
	}

	if validUntil == 0 {
		validUntil = time.Now().Add(AccessTokenTTL).Unix()
	}

	claims := jwt.MapClaims{
		"id":    user.Id,
		"email": user.Email,
		"name":  user.Name,
		"role":  role.String(),
		"exp":   validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString + roleChar(role), nil
}

func CreateTokenWithRefresh(ctx context.Context, user User, role Role, validUntil int64) (TokenResponse, error) {
	accessToken, err := CreateToken(user, role, validUntil)
	if err != nil {
		return TokenResponse{}, err
	}

	client := redisClient()
	if client == nil {
		return TokenResponse{AccessToken: accessToken}, nil
	}

	refreshTokenRaw := utils.CreateToken()

	userDataJSON, err := json.Marshal(map[string]string{
		"id":    user.Id,
		"email": user.Email,
		"name":  user.Name,
	})
	if err != nil {
		return TokenResponse{}, err
	}

	if err := client.Set(ctx, refreshKeyPrefix+refreshTokenRaw, userDataJSON, RefreshTokenTTL).Err(); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw + roleChar(role),
	}, nil
}

// ParseToken verifies an access token issued for role.
func ParseToken(tokenString string, role Role) (Claims, error) {
	if len(tokenString) == 0 {
		return Claims{}, fmt.Errorf("token string is empty")
	}

	if tokenString[len(tokenString)-1:] != roleChar(role) {
		return Claims{}, fmt.Errorf("invalid role character in token")
	}
	tokenString = tokenString[:len(tokenString)-1]

	secret, ok := secretFor(role)
	if !ok {
		return Claims{}, fmt.Errorf("invalid role specified")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("unauthorized: %v", err)
	}
	if !token.Valid {
		return Claims{}, fmt.Errorf("token is not valid - unauthorized")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("claims of unauthorized type")
	}

	claims := Claims{Role: role}
	claims.ID, _ = mapClaims["id"].(string)
	claims.Email, _ = mapClaims["email"].(string)
	claims.Name, _ = mapClaims["name"].(string)
	if claims.ID == "" {
		return Claims{}, fmt.Errorf("token missing subject")
	}

	return claims, nil
}

// VerifyToken verifies an access token of any role, picking the secret from
// the trailing role character.
func VerifyToken(tokenString string) (Claims, error) {
	if len(tokenString) == 0 {
		return Claims{}, fmt.Errorf("token string is empty")
	}
	role, ok := roleFromChar(tokenString[len(tokenString)-1:])
	if !ok {
		return Claims{}, fmt.Errorf("invalid role character in token")
	}
	return ParseToken(tokenString, role)
}

func RefreshToken(ctx context.Context, refreshToken string, role Role) (string, error) {
	if len(refreshToken) == 0 {
		return "", fmt.Errorf("refresh token is empty")
	}
	if refreshToken[len(refreshToken)-1:] != roleChar(role) {
		return "", fmt.Errorf("invalid role character in refresh token")
	}
	refreshTokenRaw := refreshToken[:len(refreshToken)-1]

	client := redisClient()
	if client == nil {
		return "", fmt.Errorf("refresh tokens are disabled")
	}

	val, err := client.Get(ctx, refreshKeyPrefix+refreshTokenRaw).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("invalid refresh token")
	} else if err != nil {
		return "", err
	}

	var userData map[string]string
	if err := json.Unmarshal([]byte(val), &userData); err != nil {
		return "", fmt.Errorf("invalid token data")
	}

	if err := client.Expire(ctx, refreshKeyPrefix+refreshTokenRaw, RefreshTokenTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to update refresh token expiration: %v", err)
	}

	return CreateToken(User{
		Id:    userData["id"],
		Email: userData["email"],
		Name:  userData["name"],
	}, role, 0)
}

// RevokeRefreshToken forgets a refresh token. Unknown tokens are ignored.
func RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	client := redisClient()
	if client == nil || len(refreshToken) < 2 {
		return nil
	}
	return client.Del(ctx, refreshKeyPrefix+refreshToken[:len(refreshToken)-1]).Err()
}

// RefreshRole reports the role a refresh token was issued for.
func RefreshRole(refreshToken string) (Role, bool) {
	if len(refreshToken) < 2 {
		return 0, false
	}
	return roleFromChar(refreshToken[len(refreshToken)-1:])
}
