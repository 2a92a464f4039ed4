package websocket

import (
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/env"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects to the chat bus shared by the HTTP servers and
// every websocket instance.
func NewRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     env.Get(env.ChatRedisURL),
		Password: env.Get(env.ChatRedisPass),
		DB:       0,
	})
}
