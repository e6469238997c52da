package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fittrack/fittrack/internal/config"
	"github.com/fittrack/fittrack/internal/db"
	"github.com/fittrack/fittrack/internal/repository"
	"github.com/fittrack/fittrack/internal/service"
	"github.com/fittrack/fittrack/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	AuthService     *service.AuthService
	UserService     *service.UserService
	GoalService     *service.GoalService
	ProgressService *service.ProgressService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	progressRepository := repository.NewProgressRepository(database)

	// Storage
	avatarStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry, cfg.IsProduction())
	userService := service.NewUserService(userRepository, avatarStorage)
	goalService := service.NewGoalService(goalRepository)
	progressService := service.NewProgressService(goalRepository, progressRepository)

	return &App{
		Cfg:             cfg,
		DB:              database,
		AuthService:     authService,
		UserService:     userService,
		GoalService:     goalService,
		ProgressService: progressService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
