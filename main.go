package main

import (
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ucsb-cs148-w25/pj07-mafia-sub000/config"
	"github.com/ucsb-cs148-w25/pj07-mafia-sub000/game"
	"github.com/ucsb-cs148-w25/pj07-mafia-sub000/rewrite"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		// Non-browser clients send no Origin header; let them through.
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	rules := game.Rules{
		MinPlayers:     cfg.MinPlayers,
		MaxPlayers:     cfg.MaxPlayers,
		DayDuration:    cfg.DayDuration,
		VotingDuration: cfg.VotingDuration,
		NightDuration:  cfg.NightDuration,
	}

	var rewriter game.Rewriter
	if cfg.RewriteURL != "" {
		rewriter = rewrite.NewClient(cfg.RewriteURL)
	}

	idGen := game.NewIdGen()
	tickerGen := game.NewTickerGen()
	registry := game.NewRegistry(idGen, tickerGen, logger)

	registryStarted := make(chan struct{})
	go registry.RegistryActor(registryStarted)
	<-registryStarted

	gameHandler := game.NewGameHandler(registry, rules, game.NewRandomSource(), rewriter, logger)

	r := CreateServer(cfg.AllowedOrigins)
	{
		gameGroup := r.Group("/game")
		gameGroup.GET("/create", gameHandler.CreateLobbyHandler)
		gameGroup.GET("/join/:lobbyid", gameHandler.JoinLobbyHandler)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("server starting")
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
