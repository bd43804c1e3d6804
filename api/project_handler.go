package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/project-hub-backend/database"
	"github.com/rpupo63/project-hub-backend/errs"
	"github.com/rpupo63/project-hub-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *services.ProjectService
	limits    uploadLimits
}

func newProjectHandler(projects *services.ProjectService, limits uploadLimits, production bool) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger, production),
		logger:    logger,
		projects:  projects,
		limits:    limits,
	}
}

// getAllProjects lists projects matching the query filters
// @Summary List projects
// @Description Filters are ANDed; search matches title or description, case-insensitively
// @Tags Projects
// @Produce json
// @Param institution query string false "Exact institution"
// @Param projectType query string false "ENTREPRENEURSHIP, INNOVATION or PRODUCT_DEVELOPMENT"
// @Param skillLevel query string false "BEGINNER, INTERMEDIATE or ADVANCED"
// @Param search query string false "Substring of title or description"
// @Success 200 {array} ProjectResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid filter value"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching projects"
// @Router /api/projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := database.ProjectFilter{
			Institution: query.Get("institution"),
			ProjectType: query.Get("projectType"),
			SkillLevel:  query.Get("skillLevel"),
			Search:      query.Get("search"),
		}

		projects, err := h.projects.ListProjects(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newProjectResponses(projects))
	}
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectResponse
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID", "project")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.GetProject(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newProjectResponse(project))
	}
}

// createProject creates a project owned by the caller
// @Summary Create project
// @Description Multipart form with title, description, institution, projectType, skillLevel, tags and up to five files
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} ProjectResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error creating project"
// @Router /api/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := ctxGetPrincipal(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		in, err := parseProjectInput(w, r, h.limits)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.CreateProject(r.Context(), principal.UserID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, newProjectResponse(project))
	}
}

// updateProject replaces a project's fields and tags and appends new files
// @Summary Update project
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} ProjectResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 403 {object} ErrorResponse "Forbidden - Caller is not the creator"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error updating project"
// @Router /api/projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := ctxGetPrincipal(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projectID, err := uuidParam(r, "projectID", "project")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		in, err := parseProjectInput(w, r, h.limits)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.UpdateProject(r.Context(), principal.UserID, projectID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newProjectResponse(project))
	}
}

// deleteProject removes a project and its media
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Forbidden - Caller is not the creator"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /api/projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := ctxGetPrincipal(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projectID, err := uuidParam(r, "projectID", "project")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.DeleteProject(r.Context(), principal.UserID, projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, MessageResponse{Message: "Project deleted successfully"})
	}
}

// deleteMedia removes one media item from a project
// @Summary Delete project media
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param mediaID path string true "Media ID" format(uuid)
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Forbidden - Caller is not the creator"
// @Failure 404 {object} ErrorResponse "Not Found - Project or media not found"
// @Router /api/projects/{projectID}/media/{mediaID} [delete]
func (h projectHandler) deleteMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := ctxGetPrincipal(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projectID, err := uuidParam(r, "projectID", "project")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		mediaID, err := uuidParam(r, "mediaID", "media")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.DeleteMedia(r.Context(), principal.UserID, projectID, mediaID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, MessageResponse{Message: "Media deleted successfully"})
	}
}

// addCollaborator grants another user read access to a project
// @Summary Add collaborator
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param body body AddCollaboratorRequest true "User to add"
// @Success 200 {object} ProjectResponse
// @Failure 403 {object} ErrorResponse "Forbidden - Caller is not the creator"
// @Failure 404 {object} ErrorResponse "Not Found - Project or user not found"
// @Router /api/projects/{projectID}/collaborators [post]
func (h projectHandler) addCollaborator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := ctxGetPrincipal(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projectID, err := uuidParam(r, "projectID", "project")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req AddCollaboratorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("collaborator request"))
			return
		}
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			h.responder.WriteError(w, errs.NewValidationError("userId", "invalid userId"))
			return
		}

		project, err := h.projects.AddCollaborator(r.Context(), principal.UserID, projectID, userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newProjectResponse(project))
	}
}

// uuidParam reads a path id. An id that does not parse cannot name an
// existing entity, so it is reported as not found.
func uuidParam(r *http.Request, name, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errs.NewNotFound(entity)
	}
	return id, nil
}
