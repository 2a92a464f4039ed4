package jwt

import (
	"sync"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/env"

	"github.com/go-redis/redis/v8"
)

const RefreshTokenTTL = 24 * 30 * time.Hour

const AccessTokenTTL = 15 * time.Minute

const (
	RoleUser Role = iota
	RoleAdmin
)

var (
	mu          sync.RWMutex
	roleSecrets = map[Role]string{}
	RedisClient *redis.Client
)

// Configure installs the signing secrets and the refresh-token store.
// A nil client disables refresh tokens.
func Configure(userSecret, adminSecret string, client *redis.Client) {
	mu.Lock()
	defer mu.Unlock()
	roleSecrets = map[Role]string{
		RoleUser:  userSecret,
		RoleAdmin: adminSecret,
	}
	RedisClient = client
}

// ConfigureFromEnv wires secrets and the auth Redis instance from the
// environment. Commands call it once at startup after env.Require.
func ConfigureFromEnv() {
	Configure(
		env.Get(env.UserSecretKey),
		env.Get(env.AdminSecretKey),
		redis.NewClient(&redis.Options{
			Addr:     env.Get(env.AuthRedisURL),
			Password: env.Get(env.AuthRedisPass),
			DB:       0,
		}),
	)
}

func secretFor(role Role) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	secret, ok := roleSecrets[role]
	if !ok || secret == "" {
		return "", false
	}
	return secret, true
}

func redisClient() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return RedisClient
}
