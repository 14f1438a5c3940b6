package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/teamtask/internal/config"
	"github.com/huangang/teamtask/internal/middleware"
	"github.com/huangang/teamtask/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(cfg.Server.CORSOrigins...))

	inviteLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	api.Use(middleware.AuthRequired(svc.auth))
	{
		projects := api.Group("/projects")
		{
			projects.GET("", svc.projectHandler.List)
			projects.POST("", svc.projectHandler.Create)
			projects.GET("/basic_projects", svc.projectHandler.BasicProjects)
			projects.GET("/user_projects", svc.projectHandler.UserProjects)
			projects.GET("/:id", svc.projectHandler.GetByID)
			projects.PUT("/:id", svc.projectHandler.Update)
			projects.PATCH("/:id", svc.projectHandler.Update)
			projects.DELETE("/:id", svc.projectHandler.Delete)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", svc.taskHandler.List)
			tasks.POST("", svc.taskHandler.Create)
			tasks.GET("/personal_tasks", svc.taskHandler.PersonalTasks)
			tasks.GET("/project_tasks", svc.taskHandler.ProjectTasks)
			tasks.GET("/user_visible_tasks", svc.taskHandler.UserVisibleTasks)
			tasks.GET("/:id", svc.taskHandler.GetByID)
			tasks.PUT("/:id", svc.taskHandler.Update)
			tasks.PATCH("/:id", svc.taskHandler.Update)
			tasks.DELETE("/:id", svc.taskHandler.Delete)
		}

		teams := api.Group("/teams")
		{
			teams.GET("", svc.teamHandler.List)
			teams.POST("", svc.teamHandler.Create)
			teams.GET("/:id", svc.teamHandler.GetByID)
			teams.PUT("/:id", svc.teamHandler.Update)
			teams.PATCH("/:id", svc.teamHandler.Update)
			teams.DELETE("/:id", svc.teamHandler.Delete)
		}

		comments := api.Group("/comments")
		{
			comments.GET("", svc.commentHandler.List)
			comments.POST("", svc.commentHandler.Create)
			comments.GET("/:id", svc.commentHandler.GetByID)
			comments.PUT("/:id", svc.commentHandler.Update)
			comments.PATCH("/:id", svc.commentHandler.Update)
			comments.DELETE("/:id", svc.commentHandler.Delete)
		}

		invites := api.Group("/invites", inviteLimiter.Middleware())
		{
			invites.POST("/invite_user", svc.inviteHandler.InviteUser)
			invites.GET("/pending_invites", svc.inviteHandler.PendingInvites)
			invites.POST("/respond_to_invite", svc.inviteHandler.RespondToInvite)
		}
	}
}
