package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/project-hub-backend/models"
	"github.com/samber/lo"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	authHandler    authHandler
	userHandler    userHandler
	healthHandler  healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"title is required: missing required field"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// MessageResponse confirms an operation that has no body to return
type MessageResponse struct {
	Message string `json:"message" example:"Project deleted successfully"`
}

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type TagResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type MediaResponse struct {
	ID   uuid.UUID        `json:"id"`
	Type models.MediaType `json:"type"`
	URL  string           `json:"url"`
	Key  string           `json:"key"`
}

// ProjectResponse is a project with its creator, tags, media and collaborators
type ProjectResponse struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Institution   string              `json:"institution"`
	ProjectType   *models.ProjectType `json:"projectType"`
	SkillLevel    *models.SkillLevel  `json:"skillLevel"`
	CreatorID     uuid.UUID           `json:"creatorId"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	Creator       *UserSummary        `json:"creator"`
	Tags          []TagResponse       `json:"tags"`
	Media         []MediaResponse     `json:"media"`
	Collaborators []UserSummary       `json:"collaborators"`
}

// UserResponse is the account as shown to its owner; the password hash never leaves the server
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Institution *string   `json:"institution"`
	Role        string    `json:"role"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type RegisterRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Name        string  `json:"name"`
	Institution *string `json:"institution"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name            string  `json:"name"`
	Institution     *string `json:"institution"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

type AddCollaboratorRequest struct {
	UserID string `json:"userId"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

func newUserSummary(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Institution: u.Institution,
		Role:        u.Role,
	}
}

func newProjectResponse(p *models.Project) ProjectResponse {
	response := ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Institution: p.Institution,
		ProjectType: p.ProjectType,
		SkillLevel:  p.SkillLevel,
		CreatorID:   p.CreatorID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Tags: lo.Map(p.Tags, func(t models.Tag, _ int) TagResponse {
			return TagResponse{ID: t.ID, Name: t.Name}
		}),
		Media: lo.Map(p.Media, func(m models.Media, _ int) MediaResponse {
			return MediaResponse{ID: m.ID, Type: m.Type, URL: m.URL, Key: m.Key}
		}),
		Collaborators: lo.Map(p.Collaborators, func(u models.User, _ int) UserSummary {
			return newUserSummary(u)
		}),
	}
	if p.Creator != nil {
		creator := newUserSummary(*p.Creator)
		response.Creator = &creator
	}
	return response
}

func newProjectResponses(projects []*models.Project) []ProjectResponse {
	return lo.Map(projects, func(p *models.Project, _ int) ProjectResponse {
		return newProjectResponse(p)
	})
}
