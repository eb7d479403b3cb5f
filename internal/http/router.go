package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/contactly/contacthub/internal/auth"
	"github.com/contactly/contacthub/internal/cache"
	"github.com/contactly/contacthub/internal/config"
	"github.com/contactly/contacthub/internal/http/handlers"
	"github.com/contactly/contacthub/internal/http/middlewares"
	"github.com/contactly/contacthub/internal/observability"
	"github.com/contactly/contacthub/internal/queue/redisclient"
	"github.com/contactly/contacthub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const authRateLimit = 10 // requests per window on the auth endpoints

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(otelgin.Middleware("contacthub-api"))

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthcheck", h.Healthcheck)
	r.GET("/readyz", h.Readyz)

	// wire up repositories
	contactsRepo := postgres.NewContactsRepo(pool)
	accountsRepo := postgres.NewAccountsRepo(pool)
	jobsRepo := postgres.NewJobsRepo(pool)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.VerifyTTL())

	// credential endpoints get a tighter limit than the rest of the API.
	// Redis backs the counter when configured so the limit holds across
	// replicas, otherwise each instance counts on its own.
	var limiter middlewares.Limiter = middlewares.NewRateLimiter(authRateLimit, time.Minute)

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		limiter = middlewares.NewRedisRateLimiter(rdb.Raw(), authRateLimit, time.Minute)
	}

	authHandler := handlers.NewAuthHandler(accountsRepo, accountsRepo, tokens)

	authGroup := r.Group("/auth")
	authGroup.Use(middlewares.RateLimit(limiter, middlewares.KeyByIP))
	{
		authGroup.POST("/", authHandler.Register)
		authGroup.POST("/token", authHandler.Login)
	}

	contactsHandler := handlers.
		NewContactsHandlerWithCache(contactsRepo, cache.New(5*time.Minute)).
		WithEmailQueue(jobsRepo)

	authMw := middlewares.NewAuthMiddleware(tokens)

	contactsGroup := r.Group("/contacts")
	contactsGroup.Use(authMw.RequireAuth())
	{
		contactsGroup.POST("", contactsHandler.CreateContact)
		contactsGroup.GET("", contactsHandler.ListContacts)
		contactsGroup.GET("/birthday", contactsHandler.UpcomingBirthdays)
		contactsGroup.GET("/:id", contactsHandler.GetContactById)
		contactsGroup.PUT("/:id", contactsHandler.UpdateContact)
		contactsGroup.DELETE("/:id", contactsHandler.DeleteContact)
	}

	// the link from the verification email lands here, no auth required
	verificationHandler := handlers.NewVerificationHandler(tokens, contactsRepo)
	r.GET("/verification", verificationHandler.Verify)

	return r
}
