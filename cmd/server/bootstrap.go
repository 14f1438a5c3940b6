package main

import (
	"github.com/huangang/teamtask/internal/config"
	"github.com/huangang/teamtask/internal/handlers"
	"github.com/huangang/teamtask/internal/identity"
	"github.com/huangang/teamtask/internal/models"
	"github.com/huangang/teamtask/internal/repository/gormstore"
	"github.com/huangang/teamtask/internal/services"
	"github.com/huangang/teamtask/pkg/logger"
)

// appServices holds the initialized handlers and the identity resolver.
type appServices struct {
	auth identity.Authenticator

	healthHandler  *handlers.HealthHandler
	teamHandler    *handlers.TeamHandler
	projectHandler *handlers.ProjectHandler
	taskHandler    *handlers.TaskHandler
	commentHandler *handlers.CommentHandler
	inviteHandler  *handlers.InviteHandler
}

// bootstrap initializes the database, the identity provider and the services.
func bootstrap(cfg *config.Config) *appServices {
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(models.GetDB()); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	resolver, cacheMode, err := identity.New(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize identity provider: %v", err)
	}
	logger.Info().Str("cache", cacheMode).Msg("Identity provider ready")

	mail := services.NewMailService(cfg.Mail)
	if !mail.Enabled() {
		logger.Info().Msg("Invite emails disabled")
	}

	store := gormstore.New(models.GetDB())
	scope := services.NewScope(store)
	roster := services.NewRosterService(store, resolver)
	projectService := services.NewProjectService(store, scope, roster)

	return &appServices{
		auth:           resolver,
		healthHandler:  handlers.NewHealthHandler(models.GetDB(), cacheMode),
		teamHandler:    handlers.NewTeamHandler(services.NewTeamService(store, scope)),
		projectHandler: handlers.NewProjectHandler(projectService),
		taskHandler:    handlers.NewTaskHandler(services.NewTaskService(store, scope, projectService)),
		commentHandler: handlers.NewCommentHandler(services.NewCommentService(store, scope)),
		inviteHandler:  handlers.NewInviteHandler(services.NewInviteService(store, resolver, mail)),
	}
}

// shutdown releases the database connection pool.
func (s *appServices) shutdown() {
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close database")
	}
}
