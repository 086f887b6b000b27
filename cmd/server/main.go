// Package main is the entry point for the Borges Consultoria client portal.
// It initializes the database pool, runs migrations, wires the service layer
// and registers all HTTP routes.
package main

import (
	"context"
	"html/template"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/attestation"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/config"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/database"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/handlers"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/middleware"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/security"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/services"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/templates"
)

func main() {
	// .env is optional; the environment wins when both are set
	_ = godotenv.Load()

	cfg := config.Load()

	// ========================================
	// Security Components
	// ========================================

	securityConfig := security.DefaultSecurityConfig()
	securityConfig.SessionTimeout = cfg.SessionTimeout
	if cfg.Environment == "development" {
		// Local runs are plain HTTP
		securityConfig.SessionSecure = false
	}

	securityLogger := security.NewLogger()
	validationService := security.NewValidationService(securityConfig)
	securityMiddleware := middleware.NewSecurityMiddleware(securityLogger, securityConfig)

	// Per-endpoint rate limiters. Login brute force is slowed down, never
	// locked out.
	signRateLimiter := security.NewRateLimiter(
		securityConfig.RateLimitSign,
		time.Minute/time.Duration(securityConfig.RateLimitSign),
	)
	defer signRateLimiter.Stop()

	saveRateLimiter := security.NewRateLimiter(
		securityConfig.RateLimitSave,
		time.Minute/time.Duration(securityConfig.RateLimitSave),
	)
	defer saveRateLimiter.Stop()

	// ========================================
	// Database
	// ========================================

	ctx := context.Background()

	connectCtx, cancelConnect := context.WithTimeout(ctx, securityConfig.QueryTimeout)
	db, err := database.Connect(connectCtx, &database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: 25,
		MinConns: 5,
	})
	cancelConnect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// ========================================
	// Repositories and Services
	// ========================================

	clientRepo := repository.NewClientRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)

	source := attestation.NewSource()
	verifier := services.NewVerifier(cfg.PasswordScheme)

	templateEngine := templates.NewEngine(config.Consultoria)
	auditService := services.NewAuditService(auditRepo, source, securityLogger)
	documentService := services.NewDocumentService(documentRepo, auditService, source, templateEngine)
	signatureService := services.NewSignatureService(documentService, auditService, source, validationService)
	onboardingService := services.NewOnboardingService(
		documentService,
		templateRepo,
		signatureService,
		auditService,
		templateEngine,
		source,
		config.Consultoria,
	)
	clientService := services.NewClientService(clientRepo, auditService, verifier)
	checklistService := services.NewChecklistService(checklistRepo, auditService, source)
	authService := services.NewAuthService(clientRepo, verifier, cfg.ConsultantSecret)

	// ========================================
	// HTTP Server
	// ========================================

	engine := html.New("./web/templates", ".html")
	if cfg.Environment != "production" {
		engine.Reload(true)
	}
	// Documents store rendered HTML (attestation blocks included), so views
	// print them unescaped
	engine.AddFunc("safe", func(s string) template.HTML {
		return template.HTML(s)
	})

	app := fiber.New(fiber.Config{
		Views:             engine,
		ViewsLayout:       "layouts/main",
		PassLocalsToViews: true,
	})

	app.Use(recover.New())
	app.Use(securityMiddleware.RequestLogger())
	app.Use(securityMiddleware.SecureHeaders())

	app.Static("/static", "./web/static")

	store := session.New(session.Config{
		Expiration:     securityConfig.SessionTimeout,
		CookieSecure:   securityConfig.SessionSecure,
		CookieHTTPOnly: securityConfig.SessionHTTPOnly,
		CookieSameSite: securityConfig.SessionSameSite,
		CookieName:     securityConfig.SessionCookieName,
		CookiePath:     "/",
	})

	app.Use(securityMiddleware.SetCSRFToken(store))

	authHandler := handlers.NewAuthHandler(store, authService, onboardingService, securityMiddleware, securityLogger)
	clientHandler := handlers.NewClientHandler(store, clientService, documentService, signatureService, onboardingService, securityLogger)
	consultantHandler := handlers.NewConsultantHandler(
		clientService,
		documentService,
		signatureService,
		checklistService,
		auditService,
		templateRepo,
		source,
		validationService,
		securityLogger,
	)

	// Root route redirects by session role
	app.Get("/", func(c *fiber.Ctx) error {
		sess, _ := store.Get(c)
		switch sess.Get("role") {
		case middleware.RoleConsultant:
			return c.Redirect("/consultoria/dashboard")
		case middleware.RoleClient:
			return c.Redirect("/cliente/dashboard")
		default:
			return c.Redirect("/login")
		}
	})

	// ========================================
	// Public Routes
	// ========================================

	app.Get("/login", authHandler.ShowLogin)
	app.Post("/login/consultora", authHandler.ConsultantLogin)
	app.Post("/login/cliente", authHandler.ClientLogin)
	app.Get("/logout", authHandler.Logout)

	// ========================================
	// Consultant Routes
	// ========================================

	consultant := app.Group("/consultoria",
		middleware.AuthRequired(store),
		middleware.ConsultantOnly(),
		securityMiddleware.CSRFProtection(store),
	)

	consultant.Get("/dashboard", consultantHandler.Dashboard)

	consultant.Get("/clientes", consultantHandler.Clients)
	consultant.Get("/clientes/novo", consultantHandler.ClientForm)
	consultant.Post("/clientes/novo", consultantHandler.SaveClient)
	consultant.Get("/clientes/:id/editar", consultantHandler.ClientForm)
	consultant.Post("/clientes/:id/editar", consultantHandler.SaveClient)

	consultant.Get("/clientes/:id/checklist", consultantHandler.Checklist)
	consultant.Post("/clientes/:id/checklist",
		securityMiddleware.RateLimit(saveRateLimiter, "checklist_save"),
		consultantHandler.SaveChecklist,
	)

	consultant.Get("/documentos", consultantHandler.Documents)
	consultant.Get("/documentos/novo", consultantHandler.NewDocumentForm)
	consultant.Post("/documentos/novo", consultantHandler.CreateDocument)
	consultant.Get("/documentos/:id", consultantHandler.ViewDocument)
	consultant.Post("/documentos/:id",
		securityMiddleware.RateLimit(saveRateLimiter, "document_save"),
		consultantHandler.UpdateDocument,
	)
	consultant.Post("/documentos/:id/finalizar", consultantHandler.FinalizeDocument)
	consultant.Post("/documentos/:id/assinar",
		securityMiddleware.RateLimit(signRateLimiter, "document_sign"),
		consultantHandler.SignDocument,
	)

	consultant.Get("/templates", consultantHandler.Templates)
	consultant.Get("/templates/novo", consultantHandler.TemplateForm)
	consultant.Post("/templates/novo", consultantHandler.SaveTemplate)
	consultant.Get("/templates/:id/editar", consultantHandler.TemplateForm)
	consultant.Post("/templates/:id/editar", consultantHandler.SaveTemplate)

	consultant.Get("/auditoria", consultantHandler.Audit)

	// ========================================
	// Client Routes
	// ========================================

	client := app.Group("/cliente",
		middleware.AuthRequired(store),
		middleware.ClientOnly(),
		securityMiddleware.CSRFProtection(store),
	)

	// The NDA wall is reachable before it is signed; everything else in the
	// client area sits behind the gate.
	client.Get("/nda", clientHandler.NDA)
	client.Post("/nda/assinar",
		securityMiddleware.RateLimit(signRateLimiter, "nda_sign"),
		clientHandler.SignNDA,
	)

	gated := client.Group("", middleware.NDAGate())
	gated.Get("/apresentacao", clientHandler.Presentation)
	gated.Post("/apresentacao/continuar", clientHandler.ContinueOnboarding)
	gated.Get("/dashboard", clientHandler.Dashboard)
	gated.Get("/documentos", clientHandler.Documents)
	gated.Get("/documentos/:id", clientHandler.ViewDocument)
	gated.Post("/documentos/:id/assinar",
		securityMiddleware.RateLimit(signRateLimiter, "document_sign"),
		clientHandler.SignDocument,
	)

	// ========================================
	// Start
	// ========================================

	securityLogger.Info("Portal started on port " + cfg.Port)

	if err := app.Listen(":" + cfg.Port); err != nil {
		securityLogger.Critical("Failed to start server", err)
		log.Fatalf("Failed to start server: %v", err)
	}
}
