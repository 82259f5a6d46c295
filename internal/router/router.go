package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/taskmanager/taskmanager-api/internal/auth"
	"github.com/taskmanager/taskmanager-api/internal/config"
	"github.com/taskmanager/taskmanager-api/internal/handlers"
	"github.com/taskmanager/taskmanager-api/internal/logging"
	"github.com/taskmanager/taskmanager-api/internal/mailer"
	"github.com/taskmanager/taskmanager-api/internal/middleware"
	"github.com/taskmanager/taskmanager-api/internal/relay"
	"github.com/taskmanager/taskmanager-api/internal/repository"
	"github.com/taskmanager/taskmanager-api/internal/services"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP surface is built from.
// Suggester may be nil, which disables task suggestions.
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Log       *logrus.Entry
	Mailer    mailer.Mailer
	Suggester services.TaskSuggester
}

// App is the assembled HTTP application.
type App struct {
	Engine *gin.Engine
	Auth   *services.AuthService
	Hub    *relay.Hub
}

// Shutdown disconnects relay clients and waits for queued mail.
func (a *App) Shutdown() {
	a.Hub.Close()
	a.Auth.Wait()
}

// New wires repositories, services, handlers and middleware into a router.
func New(deps Dependencies) *App {
	cfg := deps.Config

	userRepo := repository.NewUserRepository(deps.DB)
	projectRepo := repository.NewProjectRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authService := services.NewAuthService(userRepo, deps.Mailer, tokens, deps.Log)
	projectService := services.NewProjectService(projectRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, deps.Suggester)

	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	hub := relay.NewHub(deps.Log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(deps.Log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendURL))

	r.GET("/health", health(deps.DB))
	r.GET("/metrics", gin.WrapH(middleware.MetricsHandler()))
	r.GET("/ws", hub.Handler(cfg.FrontendURL))

	requireAuth := middleware.RequireAuth(tokens, userRepo)

	api := r.Group("/api")
	{
		// User routes (public except profile)
		users := api.Group("/users")
		{
			users.POST("/signup", authHandler.Signup)
			users.POST("/login", authHandler.Login)
			users.GET("/confirm-account/:token", authHandler.ConfirmAccount)
			users.POST("/password-reset", authHandler.RequestPasswordReset)
			users.GET("/password-reset/:token", authHandler.ValidateResetToken)
			users.POST("/password-reset/:token", authHandler.ResetPassword)
			users.GET("/profile", requireAuth, authHandler.GetCurrentUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projectID := middleware.RequireIDParam("Project")

			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.POST("/collaborators", projectHandler.SearchCollaborator)
			projects.GET("/:id", projectID, projectHandler.GetProject)
			projects.PUT("/:id", projectID, projectHandler.UpdateProject)
			projects.DELETE("/:id", projectID, projectHandler.DeleteProject)
			projects.POST("/add-collaborator/:id", projectID, projectHandler.AddCollaborator)
			projects.POST("/delete-collaborator/:id", projectID, projectHandler.RemoveCollaborator)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			taskID := middleware.RequireIDParam("Task")

			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/:id", taskID, taskHandler.GetTask)
			tasks.PUT("/:id", taskID, taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskID, taskHandler.DeleteTask)
			tasks.POST("/change-status/:id", taskID, taskHandler.ToggleStatus)
		}
	}

	return &App{
		Engine: r,
		Auth:   authService,
		Hub:    hub,
	}
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}

		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"message": "Database is not reachable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Manager API is running",
		})
	}
}
