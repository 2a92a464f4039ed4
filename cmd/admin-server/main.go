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
	authsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/auth"
	chatsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"
	mediasvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/media"
	sitesvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/site"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/storage"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/websocket"

	"github.com/prometheus/client_golang/prometheus"
)

const prefix = "/api/admin/v1"

func main() {
	env.Load()
	logging.Setup("admin-server")

	if err := env.Require(append(env.Common, env.MediaBucket)...); err != nil {
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

	store, err := storage.NewS3Client(ctx)
	if err != nil {
		slog.Error("media storage init failed", "error", err)
		os.Exit(1)
	}

	// Agents reply from here, so their messages reach visitors through the
	// same bus as the public server's.
	chat := chatsvc.New(db, chatsvc.WithPublisher(websocket.NewPublisher(websocket.NewRedisClient())))

	queueManager := queue.NewRequestQueueManager(10, 10)
	server := api.NewAPIServer(
		":81",
		queueManager,
		[]api.RouteRegistrar{
			router.UtilsRoutes(prefix, "admin-server"),
			router.AuthRoutes(prefix, authsvc.New(db)),
			router.SiteAdminRoutes(prefix, sitesvc.New(db)),
			router.ChatAdminRoutes(prefix, chat),
			router.MediaRoutes(prefix, mediasvc.New(store, prometheus.DefaultRegisterer)),
		},
		api.WithAllowedOrigins(env.Get(env.WebUrl)),
	)

	if err := server.Run(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	queueManager.Shutdown()
}
