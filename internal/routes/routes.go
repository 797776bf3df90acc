package routes

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/saeid-a/GymDeskBack/internal/config"
	"github.com/saeid-a/GymDeskBack/internal/handlers"
	"github.com/saeid-a/GymDeskBack/internal/middleware"
	"github.com/saeid-a/GymDeskBack/internal/models"
	"github.com/saeid-a/GymDeskBack/internal/repository"
	"github.com/saeid-a/GymDeskBack/internal/services"
	"github.com/saeid-a/GymDeskBack/pkg/utils"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger zerolog.Logger) error {
	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	planRepo := repository.NewWorkoutPlanRepository(db)

	storageService, err := buildStorageService(cfg)
	if err != nil {
		return err
	}
	if storageService == nil {
		logger.Warn().Msg("no storage backend configured; workout plan uploads disabled")
	}

	enrollmentService := services.NewEnrollmentService(db, classRepo)
	planService := services.NewPlanService(planRepo, userRepo, storageService, logger)
	statsService := services.NewStatsService(userRepo, classRepo, planRepo, cfg.StatsCacheTTL)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	memberHandler := handlers.NewMemberHandler(userRepo, statsService)
	classHandler := handlers.NewClassHandler(classRepo, statsService)
	planHandler := handlers.NewPlanHandler(planService, statsService)
	statsHandler := handlers.NewStatsHandler(statsService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService, planService)

	if err := seedDefaultAdmin(context.Background(), cfg, userRepo, logger); err != nil {
		return err
	}

	api := app.Group("/api")

	authRequired := middleware.AuthRequired(cfg.JWTSecret, userRepo)

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", authRequired, authHandler.Me)

	admin := api.Group("/admin", authRequired, middleware.RoleRequired(models.RoleAdmin))
	admin.Get("/stats", statsHandler.GetStats)

	admin.Get("/members", memberHandler.ListMembers)
	admin.Post("/members", memberHandler.CreateMember)
	admin.Put("/members/:id", memberHandler.UpdateMember)
	admin.Delete("/members/:id", memberHandler.DeleteMember)

	admin.Get("/classes", classHandler.ListClasses)
	admin.Post("/classes", classHandler.CreateClass)
	admin.Put("/classes/:id", classHandler.UpdateClass)
	admin.Delete("/classes/:id", classHandler.DeleteClass)

	admin.Get("/workout-plans", planHandler.ListPlans)
	admin.Post("/workout-plans", planHandler.CreatePlan)
	admin.Put("/workout-plans/:id", planHandler.UpdatePlan)
	admin.Delete("/workout-plans/:id", planHandler.DeletePlan)
	admin.Get("/workout-plans/:id/download", planHandler.DownloadPlan)

	member := api.Group("/member", authRequired, middleware.RoleRequired(models.RoleMember))
	member.Get("/classes", enrollmentHandler.ListAvailableClasses)
	member.Get("/my-classes", enrollmentHandler.ListMyClasses)
	member.Put("/classes/:id/enroll", enrollmentHandler.Enroll)
	member.Delete("/classes/:id/enroll", enrollmentHandler.Unenroll)
	member.Get("/my-plans", enrollmentHandler.ListMyPlans)
	member.Get("/workout-plans/:id/download", planHandler.DownloadPlan)

	registerDocs(api, cfg)

	return nil
}

func buildStorageService(cfg *config.Config) (services.StorageService, error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case config.StorageBackendS3:
		if !cfg.S3Configured() {
			return nil, nil
		}
		return services.NewS3StorageService(context.Background(), services.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case config.StorageBackendSupabase:
		if !cfg.SupabaseConfigured() {
			return nil, nil
		}
		return services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey), nil
	default:
		return nil, errors.New("unknown storage backend: " + cfg.StorageBackend)
	}
}

// seedDefaultAdmin creates the bootstrap admin account when configured and
// not already present.
func seedDefaultAdmin(ctx context.Context, cfg *config.Config, userRepo *repository.UserRepository, logger zerolog.Logger) error {
	if cfg.DefaultAdminEmail == "" || cfg.DefaultAdminPassword == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.DefaultAdminEmail))
	_, err := userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hashed, err := utils.HashPassword(cfg.DefaultAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
	}
	if err := userRepo.CreateUser(ctx, admin); err != nil {
		return err
	}

	logger.Info().Str("email", email).Msg("seeded default admin account")
	return nil
}
