package chat

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// SessionAccess is what a valid session token grants: the user side of one
// session.
type SessionAccess struct {
	SessionID string
	UserID    string
}

type sessionTokenClaims struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func signSessionToken(secret []byte, claims sessionTokenClaims) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("session token secret not configured")
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, secret)
	if _, err := mac.Write(payload); err != nil {
		return "", err
	}

	payloadPart := base64.RawURLEncoding.EncodeToString(payload)
	sigPart := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("%s.%s", payloadPart, sigPart), nil
}

func verifySessionToken(secret []byte, token string, now time.Time) (sessionTokenClaims, error) {
	if len(secret) == 0 {
		return sessionTokenClaims{}, errors.New("session token secret not configured")
	}

	payloadPart, sigPart, ok := strings.Cut(token, ".")
	if !ok || strings.Contains(sigPart, ".") {
		return sessionTokenClaims{}, errors.New("invalid token format")
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return sessionTokenClaims{}, fmt.Errorf("decode payload: %w", err)
	}

	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return sessionTokenClaims{}, fmt.Errorf("decode signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	if _, err := mac.Write(payload); err != nil {
		return sessionTokenClaims{}, fmt.Errorf("sign payload: %w", err)
	}
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return sessionTokenClaims{}, errors.New("signature mismatch")
	}

	var claims sessionTokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return sessionTokenClaims{}, fmt.Errorf("unmarshal claims: %w", err)
	}
	if claims.SessionID == "" {
		return sessionTokenClaims{}, errors.New("token missing session")
	}
	if claims.ExpiresAt != 0 && now.Unix() > claims.ExpiresAt {
		return sessionTokenClaims{}, errors.New("token expired")
	}

	return claims, nil
}
