package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/api/router"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/env"
	internaljwt "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/jwt"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/logging"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/queue"
	chatsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/websocket"

	"github.com/prometheus/client_golang/prometheus"
)

const prefix = "/api/ws/v1"

func main() {
	env.Load()
	logging.Setup("ws-server")

	if err := env.Require(env.Common...); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	internaljwt.ConfigureFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDatabase(ctx)
	if err != nil {
		slog.Error("db init failed", "error", err)
		os.Exit(1)
	}

	redisClient := websocket.NewRedisClient()
	chat := chatsvc.New(db)

	hub := websocket.NewHub(prometheus.DefaultRegisterer)
	go hub.Run(ctx)
	handler := websocket.NewHandler(hub, redisClient, env.Get(env.WebUrl))

	monitor := chatsvc.NewUnreadMonitor(chat, websocket.UnreadNotifier(handler), prometheus.DefaultRegisterer)
	go func() {
		if err := monitor.Run(ctx, websocket.SubscribeSessionEvents(ctx, redisClient)); err != nil && ctx.Err() == nil {
			slog.Error("unread monitor stopped", "error", err)
		}
	}()

	// Each websocket join holds a queue worker only while upgrading.
	queueManager := queue.NewRequestQueueManager(10, 10)
	server := api.NewAPIServer(
		":83",
		queueManager,
		[]api.RouteRegistrar{
			router.UtilsRoutes(prefix, "ws-server"),
			router.WebsocketRoutes(prefix, chat, handler),
		},
		api.WithAllowedOrigins(env.Get(env.WebUrl)),
	)

	if err := server.Run(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	queueManager.Shutdown()
}
