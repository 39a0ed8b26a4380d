// @title           Ace Legal Case Desk API
// @version         1.0
// @description     Case management API for a law firm: cases, versioned documents, key dates, internal notes, legal holds, audit trails, user administration and firm settings.
// @contact.name    Aldo Rifki Putra
// @contact.email   aldoetobex@gmail.com
// @BasePath        /api
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Format: Bearer <token>
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/acelegal-case-desk/internal/admin"
	"github.com/aldoetobex/acelegal-case-desk/internal/audit"
	"github.com/aldoetobex/acelegal-case-desk/internal/auth"
	"github.com/aldoetobex/acelegal-case-desk/internal/cases"
	"github.com/aldoetobex/acelegal-case-desk/internal/config"
	"github.com/aldoetobex/acelegal-case-desk/internal/logger"
	"github.com/aldoetobex/acelegal-case-desk/internal/mailer"
	"github.com/aldoetobex/acelegal-case-desk/internal/notifications"
	"github.com/aldoetobex/acelegal-case-desk/internal/state"
	"github.com/aldoetobex/acelegal-case-desk/internal/storage"
	"github.com/aldoetobex/acelegal-case-desk/pkg/database"
	"github.com/aldoetobex/acelegal-case-desk/pkg/models"
	"github.com/aldoetobex/acelegal-case-desk/pkg/utils"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// Audit mirror (optional)
	var (
		sink    audit.Sink = audit.NopSink{}
		history admin.History
	)
	if cfg.DatabaseDriver != "none" {
		db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalw("database init failed", "driver", cfg.DatabaseDriver, "error", err)
		}
		gs := audit.NewGormSink(db, log)
		sink, history = gs, gs
	}

	// Seeded administrator
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalw("hash admin password", "error", err)
	}
	st := state.New(
		state.WithUsers(models.User{
			ID:           "a1",
			Name:         "Admin User",
			Email:        cfg.AdminEmail,
			Role:         models.RoleAdmin,
			Status:       models.UserActive,
			AvatarURL:    utils.AvatarURL("a1"),
			PasswordHash: hash,
		}),
		state.WithSink(sink),
		state.WithLogger(log),
	)

	// Sessions
	var sessions auth.SessionStore = auth.NewMemorySessionStore()
	if cfg.SessionStore == "redis" {
		rs := auth.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword)
		if err := rs.Ping(ctx); err != nil {
			log.Fatalw("redis unreachable", "addr", cfg.RedisAddr, "error", err)
		}
		defer rs.Close()
		sessions = rs
	}

	// Document storage
	var (
		store storage.Store
		mem   *storage.Memory
	)
	switch cfg.StorageDriver {
	case "supabase":
		store = storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
	case "s3":
		s3, err := storage.NewS3(ctx, storage.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			log.Fatalw("s3 init failed", "error", err)
		}
		if err := s3.Check(ctx); err != nil {
			log.Fatalw("s3 bucket check failed", "bucket", cfg.S3Bucket, "error", err)
		}
		store = s3
	default:
		if !cfg.IsDev() {
			log.Warnw("in-memory document storage outside dev: documents are lost on restart", "env", cfg.Env)
		}
		mem = storage.NewMemory("http://localhost:"+cfg.Port, []byte(cfg.JWTSecret))
		store = mem
	}

	// Mail
	var mail mailer.Mailer = mailer.NewLogMailer(log)
	if !cfg.EmailTestMode {
		rm, err := mailer.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom, log)
		if err != nil {
			log.Fatalw("mailer init failed", "error", err)
		}
		mail = rm
	}

	authSvc := auth.NewService(st, sessions, auth.DesignatedAccount{Email: cfg.SSOAccountEmail}, cfg.JWTSecret, cfg.TokenTTL, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: auth.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })

	if mem != nil {
		app.Get("/objects/*", serveObject(mem))
	}

	// Auth (public)
	authH := auth.NewHandler(authSvc)
	app.Post("/api/signup", authH.Signup)
	app.Post("/api/login", authH.Login)
	app.Post("/api/sso/:provider", authH.SSOLogin)

	api := app.Group("/api", auth.RequireAuth(authSvc))
	api.Post("/logout", authH.Logout)
	api.Get("/me", authH.Me)

	staff := auth.RequireRole(models.RoleLawyer, models.RoleAdmin, models.RoleSecretary)
	adminOnly := auth.RequireRole(models.RoleAdmin)

	// Cases
	caseH := cases.NewHandler(st, store, log)
	api.Get("/me/snapshot", caseH.Snapshot)
	api.Get("/lawyers", staff, caseH.Lawyers)
	api.Get("/cases", caseH.List)
	api.Post("/cases", staff, caseH.Create)
	api.Get("/cases/:id", caseH.Get)
	api.Post("/cases/:id/documents", caseH.UploadDocument)
	api.Patch("/cases/:id/documents/:docID", caseH.UpdateDocumentStatus)
	api.Get("/cases/:id/documents/:docID/url", caseH.DocumentURL)
	api.Post("/cases/:id/key-dates", caseH.AddKeyDate)
	api.Post("/cases/:id/notes", staff, caseH.AddNote)
	api.Post("/cases/:id/legal-hold", auth.RequireRole(models.RoleLawyer, models.RoleAdmin), caseH.ToggleLegalHold)

	// Notifications
	notifH := notifications.NewHandler(st)
	api.Get("/notifications", notifH.List)
	api.Post("/notifications/read", notifH.MarkRead)

	// Admin & settings
	admH := admin.NewHandler(st, mail, history, log)
	api.Get("/settings", admH.Settings)
	api.Patch("/settings", adminOnly, admH.UpdateSettings)
	api.Get("/admin/users", adminOnly, admH.Users)
	api.Post("/admin/users/invite", adminOnly, admH.Invite)
	api.Patch("/admin/users/:id", adminOnly, admH.UpdateUser)
	api.Get("/admin/logs", adminOnly, admH.Logs)
	api.Get("/admin/logs/export", adminOnly, admH.ExportLogs)
	api.Get("/admin/logs/archive", adminOnly, admH.Archive)

	go func() {
		log.Infow("server running", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver, "sessions", cfg.SessionStore, "database", cfg.DatabaseDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalw("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Warnw("shutdown", "error", err)
	}
}

// serveObject streams objects from the in-process store for links it signed.
func serveObject(mem *storage.Memory) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, contentType, err := mem.Open(c.Params("*"), c.Query("expires"), c.Query("sig"))
		switch {
		case errors.Is(err, storage.ErrBadSignature):
			return fiber.NewError(fiber.StatusForbidden, "invalid link")
		case errors.Is(err, storage.ErrLinkExpired):
			return fiber.NewError(fiber.StatusForbidden, "link expired")
		case errors.Is(err, storage.ErrObjectNotFound):
			return fiber.ErrNotFound
		case err != nil:
			return err
		}
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(data)
	}
}
