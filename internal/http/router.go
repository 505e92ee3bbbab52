package http

import (
	"time"

	"github.com/geocoder89/classhub/internal/auth"
	"github.com/geocoder89/classhub/internal/cache"
	"github.com/geocoder89/classhub/internal/config"
	"github.com/geocoder89/classhub/internal/domain/user"
	"github.com/geocoder89/classhub/internal/http/handlers"
	"github.com/geocoder89/classhub/internal/http/middlewares"
	"github.com/geocoder89/classhub/internal/observability"
	"github.com/geocoder89/classhub/internal/payments/stripe"
	"github.com/geocoder89/classhub/internal/queue/redisclient"
	"github.com/geocoder89/classhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(
	cfg config.Config,
	pool *pgxpool.Pool,
	rdb *redisclient.Client,
	prom *observability.Prom,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("classhub-api"))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// wire up repositories

	usersRepo := postgres.NewUsersRepo(pool, prom)
	classesRepo := postgres.NewClassesRepo(pool, prom)
	instructorsRepo := postgres.NewInstructorsRepo(pool, prom)
	selectionsRepo := postgres.NewSelectionsRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)
	paymentsRepo := postgres.NewPaymentsRepo(pool, prom, classesRepo, selectionsRepo, jobsRepo)

	// shared bits

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	catalogCache := cache.New(5 * time.Second)
	stripeClient := stripe.NewClient(cfg.StripeSecretKey)

	authMW := middlewares.NewAuthMiddleware(jwtManager)
	requireAuth := authMW.RequireAuth()
	requireInstructor := authMW.RequireRole(usersRepo, user.RoleInstructor)
	requireAdmin := authMW.RequireRole(usersRepo, user.RoleAdmin)

	tokenLimiter := middlewares.NewRateLimiter(rdb, 30, time.Minute, "jwt")
	intentLimiter := middlewares.NewRateLimiter(rdb, 10, time.Minute, "intent")

	// handlers

	healthHandler := handlers.NewHealthHandler(pool, rdb)
	tokensHandler := handlers.NewTokensHandler(jwtManager)
	usersHandler := handlers.NewUsersHandler(usersRepo, instructorsRepo)
	classesHandler := handlers.NewClassesHandler(classesRepo, catalogCache)
	instructorsHandler := handlers.NewInstructorsHandler(instructorsRepo, catalogCache)
	selectionsHandler := handlers.NewSelectionsHandler(selectionsRepo)
	paymentsHandler := handlers.NewPaymentsHandler(paymentsRepo, stripeClient, prom)

	// ops surface

	r.GET("/", healthHandler.Root)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// tokens + registration

	r.POST("/jwt", tokenLimiter.RateLimiterMiddleware(middlewares.KeyByIP), tokensHandler.Issue)
	r.POST("/users", usersHandler.Register)

	// public catalog

	r.GET("/allClasses", classesHandler.ListApproved)
	r.GET("/popularClasses", classesHandler.ListPopular)
	r.GET("/allInstructors", instructorsHandler.List)
	r.GET("/popularInstructors", instructorsHandler.ListPopular)

	// authenticated, no role restriction

	r.PATCH("/allClasses/:id", requireAuth, classesHandler.SetFeedback)
	r.GET("/selectedClasses", requireAuth, middlewares.RequireSelfQuery("email"), selectionsHandler.List)
	r.POST("/selectedClasses", requireAuth, selectionsHandler.Create)
	r.DELETE("/selectedClasses/:id", requireAuth, selectionsHandler.Remove)
	r.POST("/createPaymentIntent", requireAuth,
		intentLimiter.RateLimiterMiddleware(middlewares.KeyByEmailOrIP), paymentsHandler.CreateIntent)
	r.POST("/payments", requireAuth, paymentsHandler.Finalize)
	r.GET("/payments", requireAuth, middlewares.RequireSelfQuery("email"), paymentsHandler.History)
	r.GET("/users/admin/:email", requireAuth, middlewares.RequireSelfParam("email"), usersHandler.IsAdmin)
	r.GET("/users/instructor/:email", requireAuth, middlewares.RequireSelfParam("email"), usersHandler.IsInstructor)

	// instructor surface

	r.GET("/myClasses", requireAuth, requireInstructor, middlewares.RequireSelfQuery("email"), classesHandler.ListMine)
	r.POST("/allClasses", requireAuth, requireInstructor, classesHandler.Create)
	r.PUT("/myClasses/:id", requireAuth, requireInstructor, classesHandler.Upsert)

	// admin surface

	r.GET("/manageAllClasses", requireAuth, requireAdmin, classesHandler.ListManaged)
	r.PATCH("/manageAllClasses/:id", requireAuth, requireAdmin, classesHandler.UpdateStatus)
	r.GET("/users", requireAuth, requireAdmin, usersHandler.List)
	r.PATCH("/users/admin/:id", requireAuth, requireAdmin, usersHandler.UpdateRole)

	return r
}
