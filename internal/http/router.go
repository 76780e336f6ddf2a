package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(
	log *slog.Logger,
	pool *pgxpool.Pool,
	registry *auth.Registry,
	sessions *auth.Sessions,
	prom *observability.Prom,
	promReg *prometheus.Registry,
	cfg config.Config,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("taskhub"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	// health + metrics

	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	pingRedis := func() error {
		if registry == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return registry.Ping(ctx)
	}

	health := handlers.NewHealthHandler(pingDB, pingRedis)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	// wire up repositories

	usersRepo := postgres.NewUsersRepo(pool, prom)
	todosRepo := postgres.NewTodosRepo(pool, prom)

	// wire up handlers

	authHandler := handlers.NewAuthHandler(usersRepo, sessions, cfg)
	todosHandler := handlers.NewTodosHandler(todosRepo)
	guard := middlewares.NewAuthMiddleware(sessions)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	api.POST("/signup", authHandler.SignUp)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/me", authHandler.Me)

	todos := api.Group("/todos")
	todos.Use(guard.RequireSession())

	todos.GET("", todosHandler.ListTodos)
	todos.POST("", todosHandler.CreateTodo)
	todos.DELETE("/:id", todosHandler.DeleteTodo)

	return r
}
