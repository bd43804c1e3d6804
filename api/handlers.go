package api

import (
	"time"

	"github.com/rpupo63/project-hub-backend/auth"
	"github.com/rpupo63/project-hub-backend/database"
	"github.com/rpupo63/project-hub-backend/services"
)

// Dependencies are the collaborators the HTTP layer serves requests with.
type Dependencies struct {
	Database database.Database
	Projects *services.ProjectService
	Users    *services.UserService
	Tokens   *auth.TokenManager
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, limits uploadLimits, production bool, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		projectHandler: newProjectHandler(deps.Projects, limits, production),
		authHandler:    newAuthHandler(deps.Users, production),
		userHandler:    newUserHandler(deps.Users, deps.Projects, production),
		healthHandler:  newHealthHandler(deps.Database, startupTime, production),
	}
}
