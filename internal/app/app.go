package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/handlers"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"
	"taskmanager/internal/repository/postgres"
	taskinmemory "taskmanager/internal/repository/task/inmemory"
	taskpostgres "taskmanager/internal/repository/task/postgres"
	userinmemory "taskmanager/internal/repository/user/inmemory"
	userpostgres "taskmanager/internal/repository/user/postgres"
	"taskmanager/internal/service"
	"taskmanager/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config    *config.Config
	server    *http.Server
	sweeper   *worker.SweepWorker
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	taskRepo, userRepo, err := a.buildRepositories(ctx)
	if err != nil {
		return err
	}

	hasher := auth.NewPasswordHasher()
	tokens := auth.NewJWTManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL)

	taskService := service.NewTaskService(taskRepo)
	accountService := service.NewAccountService(userRepo, taskRepo, hasher, tokens)

	authHandler := handlers.NewAuthHandler(accountService)
	accountHandler := handlers.NewAccountHandler(accountService)
	taskHandler := handlers.NewTaskHandler(taskService)

	router := buildRouter(tokens, authHandler, accountHandler, taskHandler)

	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: router,
	}

	if a.config.Worker.Enabled {
		a.sweeper = worker.NewSweepWorker(taskRepo, userRepo, a.config.Worker.SweepInterval)
	}

	return nil
}

// Run serves until the context is cancelled, then drains connections and
// runs the registered shutdown hooks in reverse order.
func (a *App) Run(ctx context.Context) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if a.sweeper != nil {
		go a.sweeper.Start(workerCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: server started on " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.runShutdowns()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("App: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.runShutdowns()
	if err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func (a *App) buildRepositories(ctx context.Context) (service.TaskRepository, service.UserRepository, error) {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		if err := postgres.Migrate(a.config.Database.URL); err != nil {
			return nil, nil, fmt.Errorf("migrating database: %w", err)
		}

		pool, err := postgres.NewPool(ctx, a.config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: closing database pool")
			pool.Close()
		})

		return taskpostgres.New(pool), userpostgres.New(pool), nil

	case config.RepositoryInMemory:
		logger.Info("App: using in-memory repositories")
		return taskinmemory.NewTaskStorage(), userinmemory.NewUserStorage(), nil

	default:
		return nil, nil, fmt.Errorf("unknown repository type %q", a.config.Repository.Type)
	}
}

func (a *App) runShutdowns() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}

func buildRouter(tokens *auth.JWTManager, authHandler *handlers.AuthHandler, accountHandler *handlers.AccountHandler, taskHandler *handlers.TaskHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(100))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens))

		r.Route("/account", func(r chi.Router) {
			r.Get("/profile", accountHandler.GetProfile)      // GET /account/profile
			r.Put("/profile", accountHandler.UpdateProfile)   // PUT /account/profile
			r.Put("/password", accountHandler.ChangePassword) // PUT /account/password
			r.Delete("/delete", accountHandler.DeleteAccount) // DELETE /account/delete
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.GetTasks)  // GET /tasks
			r.Post("/", taskHandler.PostTask) // POST /tasks

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTaskByID)       // GET /tasks/{id}
				r.Put("/", taskHandler.UpdateTaskByID)    // PUT /tasks/{id}
				r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /tasks/{id}
			})
		})
	})

	r.Get("/health", taskHandler.HealthCheck)

	return r
}
