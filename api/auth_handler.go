package api

import (
	"encoding/json"
	"net/http"

	"github.com/rpupo63/project-hub-backend/errs"
	"github.com/rpupo63/project-hub-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	users     *services.UserService
}

func newAuthHandler(users *services.UserService, production bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger, production),
		logger:    logger,
		users:     users,
	}
}

// register creates an account
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Account details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid input or email already registered"
// @Router /api/auth/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("register request"))
			return
		}

		session, err := h.users.Register(r.Context(), services.RegisterInput{
			Email:       req.Email,
			Password:    req.Password,
			Name:        req.Name,
			Institution: req.Institution,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, AuthResponse{
			User:  newUserResponse(session.User),
			Token: session.Token,
		})
	}
}

// login exchanges credentials for a token
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Missing email or password"
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Router /api/auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.Malformed("login request"))
			return
		}

		session, err := h.users.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, AuthResponse{
			User:  newUserResponse(session.User),
			Token: session.Token,
		})
	}
}

// verify returns the account behind the presented token
// @Summary Verify token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Not Found - User no longer exists"
// @Router /api/auth/verify [get]
func (h authHandler) verify() http.HandlerFunc {
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
