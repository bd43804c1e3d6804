package api

import (
	"encoding/json"
	"net/http"

	"github.com/rpupo63/project-hub-backend/errs"
	"github.com/rpupo63/project-hub-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	users     *services.UserService
	projects  *services.ProjectService
}

func newUserHandler(users *services.UserService, projects *services.ProjectService, production bool) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger, production),
		logger:    logger,
		users:     users,
		projects:  projects,
	}
}

// @Summary Get profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /api/users/profile [get]
func (h userHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := ctxGetPrincipal(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		user, err := h.users.GetProfile(r.Context(), principal.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newUserResponse(user))
	}
}

// @Summary Update profile
// @Description Sets name and institution; newPassword requires currentPassword
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Current password is incorrect"
// @Router /api/users/profile [put]
func (h userHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := ctxGetPrincipal(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("profile"))
			return
		}

		user, err := h.users.UpdateProfile(r.Context(), principal.UserID, services.UpdateProfileInput{
			Name:            req.Name,
			Institution:     req.Institution,
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newUserResponse(user))
	}
}

// @Summary List my projects
// @Description Projects the caller created or collaborates on
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProjectResponse
// @Router /api/users/projects [get]
func (h userHandler) getUserProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := ctxGetPrincipal(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projects, err := h.projects.ListUserProjects(r.Context(), principal.UserID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newProjectResponses(projects))
	}
}
