// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
//
// The payment webhook is mounted before the CORS and rate-limit middleware:
// it is a server-to-server endpoint authenticated by signature, and a browser
// CORS policy or per-IP bucket must never drop a delivery.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/atelierhaus/atelier-backend/internal/assets"
	"github.com/atelierhaus/atelier-backend/internal/config"
	"github.com/atelierhaus/atelier-backend/internal/http/handlers"
	"github.com/atelierhaus/atelier-backend/internal/http/middleware"
	"github.com/atelierhaus/atelier-backend/internal/payments"
	"github.com/atelierhaus/atelier-backend/internal/repo"
	"github.com/atelierhaus/atelier-backend/internal/services"
)

// Deps carries the externally constructed dependencies the router needs.
// Provider and Uploader are interfaces so tests can swap fakes in.
type Deps struct {
	DB       *gorm.DB
	Provider services.CheckoutProvider
	Uploader handlers.Uploader
	Cleanup  *assets.Cleanup
}

// NewProviderFromConfig builds the production payment client.
func NewProviderFromConfig(cfg config.Config) services.CheckoutProvider {
	return payments.NewClient(cfg.Payment)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability (tracing, metrics), idempotency and rate limiting,
// CORS and security headers, health and metrics endpoints, the versioned
// public API, and the JWT-gated admin surface.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Webhook (raw body, before CORS/rate limiting)
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per admin/IP, bypass on replay)
//  10. CORS and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	db := deps.DB

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. Inquiries carry names, emails,
	// and phone numbers; none of it may reach the logs. Webhook signatures
	// and idempotency keys are masked by the logger's defaults.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (10 MiB: document uploads ride multipart)
	r.Use(limitBody(10 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Dependency injection: services ← repo/db/clients
	inqSvc := &services.InquiryService{DB: db}
	paySvc := &services.PaymentService{
		DB:            db,
		Provider:      deps.Provider,
		WebhookSecret: cfg.Payment.WebhookSecret,
		SuccessURL:    cfg.Payment.SuccessURL,
		CancelURL:     cfg.Payment.CancelURL,
	}
	projSvc := &services.ProjectService{DB: db, Cleanup: deps.Cleanup}
	blogSvc := &services.BlogService{DB: db, Cleanup: deps.Cleanup}
	newsSvc := &services.NewsService{DB: db, Cleanup: deps.Cleanup}
	testSvc := &services.TestimonialService{DB: db, Cleanup: deps.Cleanup}
	authSvc := &services.AuthService{
		DB:         db,
		Secret:     []byte(cfg.Auth.JWTSecret),
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}
	dashSvc := &services.DashboardService{DB: db, Provider: deps.Provider}
	h := handlers.New(inqSvc, paySvc, deps.Uploader, projSvc, blogSvc, newsSvc, testSvc, authSvc, dashSvc)

	apiBase := cfg.APIBasePath // e.g. "/api/v1"

	// 7) Payment webhook: mounted here so deliveries skip CORS, idempotency
	// and rate limiting. Signature verification is its authentication.
	r.POST(joinPath(apiBase, "/payments/webhook"), h.Webhook)

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, inquiryID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, inquiryID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per admin/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByAdminOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					hd := c.Writer.Header()
					hd.Set("Access-Control-Allow-Origin", origin)
					hd.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public API
	api := groupWithPrefix(r, apiBase)
	{
		// Inquiry funnel
		api.POST("/inquiries", h.BeginInquiry)
		api.GET("/inquiries/:id", h.GetInquiry)
		api.PUT("/inquiries/:id/context", h.AddInquiryContext)
		api.PUT("/inquiries/:id/path", h.ChooseInquiryPath)
		api.POST("/inquiries/:id/submit", h.SubmitInquiry)
		api.PUT("/inquiries/:id/consultation", h.SetInquiryConsultation)

		// Payments
		api.POST("/inquiries/:id/checkout", h.CreateCheckout)
		api.POST("/inquiries/:id/billing", h.FinalizeBilling)
		api.GET("/payments/session/:id", h.SessionStatus)
		api.POST("/payments/session/:id/verify", h.VerifySession)

		// Published content
		api.GET("/projects", h.ListProjects)
		api.GET("/projects/:slug", h.GetProjectBySlug)
		api.GET("/blogs", h.ListBlogs)
		api.GET("/blogs/:slug", h.GetBlogBySlug)
		api.GET("/news", h.ListNews)
		api.GET("/testimonials", h.ListTestimonials)
		api.POST("/testimonials", h.SubmitTestimonial)

		// Sessions
		api.POST("/auth/login", h.Login)
		api.POST("/auth/refresh", h.Refresh)
		api.POST("/auth/logout", h.Logout)
	}

	// Admin API (JWT-gated)
	admin := api.Group("/admin", middleware.RequireAuth(func(token string) (string, string, error) {
		claims, err := authSvc.Verify(token)
		if err != nil {
			return "", "", err
		}
		return claims.AdminID, claims.Email, nil
	}))
	{
		admin.GET("/dashboard", h.Dashboard)

		admin.GET("/inquiries", h.AdminListInquiries)
		admin.GET("/inquiries/export", h.ExportInquiries)
		admin.GET("/inquiries/:id", h.AdminGetInquiry)
		admin.POST("/inquiries/:id/review", h.ReviewInquiry)
		admin.PUT("/inquiries/:id/status", h.SetInquiryStatus)
		admin.PUT("/inquiries/status", h.BulkInquiryStatus)
		admin.POST("/inquiries/:id/notes", h.AddInquiryNote)

		admin.GET("/projects", h.AdminListProjects)
		admin.GET("/projects/:id", h.AdminGetProject)
		admin.POST("/projects", h.CreateProject)
		admin.PUT("/projects/:id", h.UpdateProject)
		admin.PUT("/projects/:id/status", h.SetProjectStatus)
		admin.DELETE("/projects/:id", h.DeleteProject)

		admin.GET("/blogs", h.AdminListBlogs)
		admin.POST("/blogs", h.CreateBlog)
		admin.PUT("/blogs/:id", h.UpdateBlog)
		admin.PUT("/blogs/:id/status", h.SetBlogStatus)
		admin.DELETE("/blogs/:id", h.DeleteBlog)

		admin.GET("/news", h.AdminListNews)
		admin.POST("/news", h.CreateNews)
		admin.PUT("/news/:id", h.UpdateNews)
		admin.PUT("/news/:id/status", h.SetNewsStatus)
		admin.DELETE("/news/:id", h.DeleteNews)

		admin.GET("/testimonials", h.AdminListTestimonials)
		admin.PUT("/testimonials/:id", h.UpdateTestimonial)
		admin.PUT("/testimonials/:id/status", h.ModerateTestimonial)
		admin.DELETE("/testimonials/:id", h.DeleteTestimonial)

		admin.POST("/uploads", h.UploadAsset)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

// joinPath concatenates a base path and a route, treating "/" as root.
func joinPath(base, route string) string {
	if base == "" || base == "/" {
		return route
	}
	return base + route
}
