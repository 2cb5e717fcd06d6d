package server

import (
	"fmt"
	"log/slog"
	"time"

	"backend-numeneon/internal/auth"
	"backend-numeneon/internal/config"
	"backend-numeneon/internal/friends"
	"backend-numeneon/internal/learning"
	"backend-numeneon/internal/media"
	"backend-numeneon/internal/messages"
	"backend-numeneon/internal/myspace"
	"backend-numeneon/internal/posts"
	"backend-numeneon/internal/ratelimit"
	"backend-numeneon/internal/shared/apperr"
	"backend-numeneon/internal/stories"
	"backend-numeneon/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Stream  *stream.Hub
	Posts   *posts.Service
	Stories *stories.Service
	Limiter *ratelimit.Limiter
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) (*Server, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler:          apperr.Handler,
		DisableStartupMessage: cfg.IsProduction(),
	})
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: hub,
		Posts: posts.NewService(db, posts.NewRiverCache(redisClient, cfg.RiverCacheTTL), posts.Options{
			MaxPerRow: cfg.RiverMaxPerRow,
			FeedLimit: cfg.FeedLimit,
		}),
		Stories: stories.NewService(db, hub, stories.Options{TTL: cfg.StoryTTL}),
		Limiter: ratelimit.New(cfg.RateLimitPerMinute, time.Minute, cfg.RateLimitBurst),
	}

	if err := registerRoutes(s); err != nil {
		return nil, err
	}
	return s, nil
}

func registerRoutes(s *Server) error {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	daily, err := learning.NewService(time.Now)
	if err != nil {
		return fmt.Errorf("learning catalogue: %w", err)
	}

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	writeLimit := s.Limiter.Middleware()

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB), jwtMiddleware, writeLimit)
	posts.RegisterRoutes(s.App.Group("/posts"), s.Posts, jwtMiddleware, writeLimit)
	friends.RegisterRoutes(s.App.Group("/friends"), friends.NewService(s.DB, s.Stream, s.Posts), jwtMiddleware, writeLimit)
	messages.RegisterRoutes(s.App.Group("/messages"), messages.NewService(s.DB, s.Stream), jwtMiddleware, writeLimit)
	stories.RegisterRoutes(s.App.Group("/stories"), s.Stories, jwtMiddleware, writeLimit)
	media.RegisterRoutes(s.App.Group("/media"), media.NewService(s.DB, s.Cfg.MediaBaseURL, s.Posts), jwtMiddleware, writeLimit)
	profiles := myspace.NewService(s.DB)
	myspace.RegisterRoutes(s.App.Group("/myspace"), profiles, jwtMiddleware, writeLimit)
	myspace.RegisterRoutes(s.App.Group("/mystudio"), profiles, jwtMiddleware, writeLimit)
	learning.RegisterRoutes(s.App.Group("/learning"), daily)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)

	slog.Debug("routes registered", "routes", len(s.App.GetRoutes(true)))
	return nil
}
