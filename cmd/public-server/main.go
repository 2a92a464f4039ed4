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
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/responder"
	authsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/auth"
	chatsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/chat"
	favoritessvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/favorites"
	sitesvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/site"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/websocket"
)

const prefix = "/api/public/v1"

func main() {
	env.Load()
	logging.Setup("public-server")

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

	chat := chatsvc.New(db,
		chatsvc.WithPublisher(websocket.NewPublisher(websocket.NewRedisClient())),
		chatsvc.WithResponder(responder.FromEnv()),
	)

	queueManager := queue.NewRequestQueueManager(10, 10)
	server := api.NewAPIServer(
		":82",
		queueManager,
		[]api.RouteRegistrar{
			router.UtilsRoutes(prefix, "public-server"),
			router.AuthRoutes(prefix, authsvc.New(db)),
			router.SitePublicRoutes(prefix, sitesvc.New(db)),
			router.ChatPublicRoutes(prefix, chat),
			router.FavoritesRoutes(prefix, favoritessvc.New(db)),
		},
		api.WithAllowedOrigins(env.Get(env.WebUrl)),
	)

	if err := server.Run(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	queueManager.Shutdown()
}
