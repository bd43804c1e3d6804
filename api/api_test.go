package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rpupo63/project-hub-backend/auth"
	"github.com/rpupo63/project-hub-backend/database"
	"github.com/rpupo63/project-hub-backend/database/dbtest"
	"github.com/rpupo63/project-hub-backend/models"
	"github.com/rpupo63/project-hub-backend/services"
	"github.com/rpupo63/project-hub-backend/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiFixture struct {
	router http.Handler
	gdb    *gorm.DB
	db     database.Database
	store  *storage.MemoryStore
	tokens *auth.TokenManager
}

func newAPIFixture(t *testing.T, c map[string]string) apiFixture {
	t.Helper()

	gdb := dbtest.Open(t)
	db := database.New(gdb)
	store := storage.NewMemoryStore("https://cdn.test")
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	deps := Dependencies{
		Database: db,
		Projects: services.NewProjectService(db, store, services.ProjectServiceOptions{UploadConcurrency: 2}),
		Users:    services.NewUserService(db, tokens),
		Tokens:   tokens,
	}
	router, err := newRouter(deps, withConfig(c), withStartupTime(time.Now()))
	require.NoError(t, err)

	return apiFixture{router: router, gdb: gdb, db: db, store: store, tokens: tokens}
}

// userWithToken inserts a user and returns a bearer token for them.
func (f apiFixture) userWithToken(t *testing.T, name string) (*models.User, string) {
	t.Helper()
	user := dbtest.CreateUser(t, f.gdb, name)
	token, err := f.tokens.Issue(user)
	require.NoError(t, err)
	return user, token
}

func (f apiFixture) do(t *testing.T, method, target, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f apiFixture) doJSON(t *testing.T, method, target, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader = http.NoBody
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return f.do(t, method, target, token, "application/json", body)
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string][]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, values := range fields {
		for _, value := range values {
			require.NoError(t, writer.WriteField(key, value))
		}
	}
	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, file.name))
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func projectFields(tags ...string) map[string][]string {
	return map[string][]string{
		"title":       {"Solar Tracker"},
		"description": {"Auto-aligns panels"},
		"institution": {"MIT"},
		"projectType": {"INNOVATION"},
		"skillLevel":  {"BEGINNER"},
		"tags":        tags,
	}
}

func projectJSON(title, institution string, tags any) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "A project",
		"institution": institution,
		"projectType": "PRODUCT_DEVELOPMENT",
		"skillLevel":  "ADVANCED",
		"tags":        tags,
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func tagNamesOf(p ProjectResponse) []string {
	names := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		names = append(names, tag.Name)
	}
	return names
}

func (f apiFixture) createProject(t *testing.T, token string, payload map[string]any) ProjectResponse {
	t.Helper()
	rec := f.doJSON(t, http.MethodPost, "/api/projects", token, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ProjectResponse](t, rec)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t, nil)
	id := "00000000-0000-0000-0000-000000000001"

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/projects"},
		{http.MethodPut, "/api/projects/" + id},
		{http.MethodDelete, "/api/projects/" + id},
		{http.MethodDelete, "/api/projects/" + id + "/media/" + id},
		{http.MethodPost, "/api/projects/" + id + "/collaborators"},
		{http.MethodGet, "/api/auth/verify"},
		{http.MethodGet, "/api/users/profile"},
		{http.MethodPut, "/api/users/profile"},
		{http.MethodGet, "/api/users/projects"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := f.do(t, route.method, route.path, "", "", http.NoBody)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = f.do(t, route.method, route.path, "not-a-jwt", "", http.NoBody)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	f := newAPIFixture(t, nil)
	user := dbtest.CreateUser(t, f.gdb, "late")

	expired, err := auth.NewTokenManager("test-secret", -time.Minute)
	require.NoError(t, err)
	token, err := expired.Issue(user)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/users/profile", token, "", http.NoBody)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authorization", decode[ErrorResponse](t, rec).Field)
}

func TestCreateProjectMultipart(t *testing.T) {
	f := newAPIFixture(t, nil)
	owner, token := f.userWithToken(t, "owner")

	body, contentType := multipartBody(t, projectFields(`["robotics"," solar ","robotics"]`), []formFile{
		{name: "panel.png", contentType: "image/png", data: []byte("png-bytes")},
		{name: "brief.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4")},
	})

	rec := f.do(t, http.MethodPost, "/api/projects", token, contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	project := decode[ProjectResponse](t, rec)
	assert.Equal(t, "Solar Tracker", project.Title)
	assert.Equal(t, owner.ID, project.CreatorID)
	require.NotNil(t, project.Creator)
	assert.Equal(t, owner.Email, project.Creator.Email)
	assert.Equal(t, []string{"robotics", "solar"}, tagNamesOf(project))
	assert.NotNil(t, project.Collaborators)
	assert.Empty(t, project.Collaborators)

	require.Len(t, project.Media, 2)
	types := []models.MediaType{project.Media[0].Type, project.Media[1].Type}
	assert.ElementsMatch(t, []models.MediaType{models.MediaImage, models.MediaDocument}, types)
	for _, media := range project.Media {
		assert.True(t, strings.HasPrefix(media.Key, "projects/"), media.Key)
		assert.Equal(t, "https://cdn.test/"+media.Key, media.URL)
	}
	assert.Len(t, f.store.Keys(), 2)
}

func TestCreateProjectRepeatedTagFields(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")

	body, contentType := multipartBody(t, projectFields("ai", "ml", "ai", " "), nil)
	rec := f.do(t, http.MethodPost, "/api/projects", token, contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, []string{"ai", "ml"}, tagNamesOf(decode[ProjectResponse](t, rec)))
}

func TestCreateProjectCommaSeparatedTags(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")

	body, contentType := multipartBody(t, projectFields("a, b ,c"), nil)
	rec := f.do(t, http.MethodPost, "/api/projects", token, contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, []string{"a", "b", "c"}, tagNamesOf(decode[ProjectResponse](t, rec)))
}

func TestCreateProjectRejectsBadUploads(t *testing.T) {
	png := formFile{name: "a.png", contentType: "image/png", data: []byte("png-bytes")}

	tests := []struct {
		name   string
		config map[string]string
		files  []formFile
	}{
		{
			name:  "too many files",
			files: []formFile{png, png, png, png, png, png},
		},
		{
			name:   "file too large",
			config: map[string]string{"MAX_UPLOAD_BYTES": "4"},
			files:  []formFile{png},
		},
		{
			name:   "type not allowed",
			config: map[string]string{"ALLOWED_UPLOAD_TYPES": "image/png,image/jpeg"},
			files:  []formFile{{name: "run.sh", contentType: "text/x-shellscript", data: []byte("#!/bin/sh")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t, tt.config)
			_, token := f.userWithToken(t, "owner")

			body, contentType := multipartBody(t, projectFields(), tt.files)
			rec := f.do(t, http.MethodPost, "/api/projects", token, contentType, body)

			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "files", decode[ErrorResponse](t, rec).Field)
			assert.Empty(t, f.store.Keys())
		})
	}
}

func TestCreateProjectSniffsUndeclaredContentType(t *testing.T) {
	f := newAPIFixture(t, map[string]string{"ALLOWED_UPLOAD_TYPES": "image/png"})
	_, token := f.userWithToken(t, "owner")

	pngHeader := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	body, contentType := multipartBody(t, projectFields(), []formFile{
		{name: "blob", contentType: "application/octet-stream", data: pngHeader},
	})

	rec := f.do(t, http.MethodPost, "/api/projects", token, contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	project := decode[ProjectResponse](t, rec)
	require.Len(t, project.Media, 1)
	assert.Equal(t, models.MediaImage, project.Media[0].Type)
}

func TestCreateProjectValidation(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")

	fields := projectFields()
	fields["title"] = []string{"   "}
	body, contentType := multipartBody(t, fields, []formFile{{name: "a.png", contentType: "image/png", data: []byte("x")}})

	rec := f.do(t, http.MethodPost, "/api/projects", token, contentType, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title", decode[ErrorResponse](t, rec).Field)
	assert.Empty(t, f.store.Keys())

	rec = f.do(t, http.MethodPost, "/api/projects", token, "application/json", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProject(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")
	created := f.createProject(t, token, projectJSON("Drone", "MIT", []string{"air"}))

	rec := f.do(t, http.MethodGet, "/api/projects/"+created.ID.String(), "", "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ProjectResponse](t, rec)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, []string{"air"}, tagNamesOf(got))

	rec = f.do(t, http.MethodGet, "/api/projects/9b2f6a57-6a0f-4b7f-9d2e-0d8b7c1d2e3f", "", "", http.NoBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/projects/not-a-uuid", "", "", http.NoBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProjectsFilters(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")
	f.createProject(t, token, projectJSON("Solar Tracker", "MIT", nil))
	f.createProject(t, token, projectJSON("Water Filter", "Stanford", nil))

	rec := f.do(t, http.MethodGet, "/api/projects", "", "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ProjectResponse](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/api/projects?institution=Stanford", "", "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decode[[]ProjectResponse](t, rec)
	require.Len(t, projects, 1)
	assert.Equal(t, "Water Filter", projects[0].Title)

	rec = f.do(t, http.MethodGet, "/api/projects?search=solar&skillLevel=ADVANCED", "", "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ProjectResponse](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/projects?institution=Harvard", "", "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = f.do(t, http.MethodGet, "/api/projects?projectType=HOBBY", "", "", http.NoBody)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "projectType", decode[ErrorResponse](t, rec).Field)
}

func TestUpdateProject(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")
	_, otherToken := f.userWithToken(t, "other")
	created := f.createProject(t, token, projectJSON("Drone", "MIT", []string{"air", "camera"}))
	target := "/api/projects/" + created.ID.String()

	rec := f.doJSON(t, http.MethodPut, target, otherToken, projectJSON("Hijacked", "MIT", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.doJSON(t, http.MethodPut, target, token, projectJSON("Drone v2", "MIT", "camera,lidar"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[ProjectResponse](t, rec)
	assert.Equal(t, "Drone v2", updated.Title)
	assert.Equal(t, []string{"camera", "lidar"}, tagNamesOf(updated))
	assert.Equal(t, created.CreatorID, updated.CreatorID)

	rec = f.doJSON(t, http.MethodPut, "/api/projects/"+"9b2f6a57-6a0f-4b7f-9d2e-0d8b7c1d2e3f", token, projectJSON("Ghost", "MIT", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProjectAppendsMedia(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")

	body, contentType := multipartBody(t, projectFields("a"), []formFile{{name: "one.png", contentType: "image/png", data: []byte("1")}})
	rec := f.do(t, http.MethodPost, "/api/projects", token, contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[ProjectResponse](t, rec)

	body, contentType = multipartBody(t, projectFields("a"), []formFile{{name: "two.mp4", contentType: "video/mp4", data: []byte("2")}})
	rec = f.do(t, http.MethodPut, "/api/projects/"+created.ID.String(), token, contentType, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decode[ProjectResponse](t, rec)
	require.Len(t, updated.Media, 2)
	assert.Equal(t, created.Media[0].ID, updated.Media[0].ID)
	assert.Equal(t, models.MediaVideo, updated.Media[1].Type)
}

func TestDeleteProject(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")
	_, otherToken := f.userWithToken(t, "other")

	body, contentType := multipartBody(t, projectFields("a"), []formFile{{name: "one.png", contentType: "image/png", data: []byte("1")}})
	rec := f.do(t, http.MethodPost, "/api/projects", token, contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[ProjectResponse](t, rec)
	target := "/api/projects/" + created.ID.String()

	rec = f.do(t, http.MethodDelete, target, otherToken, "", http.NoBody)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodDelete, target, token, "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Project deleted successfully", decode[MessageResponse](t, rec).Message)
	assert.Empty(t, f.store.Keys())

	rec = f.do(t, http.MethodGet, target, "", "", http.NoBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, target, token, "", http.NoBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMedia(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")

	body, contentType := multipartBody(t, projectFields(), []formFile{
		{name: "one.png", contentType: "image/png", data: []byte("1")},
		{name: "two.png", contentType: "image/png", data: []byte("2")},
	})
	rec := f.do(t, http.MethodPost, "/api/projects", token, contentType, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[ProjectResponse](t, rec)
	require.Len(t, created.Media, 2)

	target := fmt.Sprintf("/api/projects/%s/media/%s", created.ID, created.Media[0].ID)
	rec = f.do(t, http.MethodDelete, target, token, "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Media deleted successfully", decode[MessageResponse](t, rec).Message)
	assert.Equal(t, []string{created.Media[1].Key}, f.store.Keys())

	rec = f.do(t, http.MethodDelete, target, token, "", http.NoBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollaborators(t *testing.T) {
	f := newAPIFixture(t, nil)
	_, token := f.userWithToken(t, "owner")
	collaborator, collaboratorToken := f.userWithToken(t, "collaborator")
	created := f.createProject(t, token, projectJSON("Drone", "MIT", nil))
	target := "/api/projects/" + created.ID.String() + "/collaborators"

	rec := f.doJSON(t, http.MethodPost, target, collaboratorToken, AddCollaboratorRequest{UserID: collaborator.ID.String()})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.doJSON(t, http.MethodPost, target, token, AddCollaboratorRequest{UserID: "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(t, http.MethodPost, target, token, AddCollaboratorRequest{UserID: collaborator.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	project := decode[ProjectResponse](t, rec)
	require.Len(t, project.Collaborators, 1)
	assert.Equal(t, collaborator.ID, project.Collaborators[0].ID)

	rec = f.do(t, http.MethodGet, "/api/users/projects", collaboratorToken, "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decode[[]ProjectResponse](t, rec)
	require.Len(t, projects, 1)
	assert.Equal(t, created.ID, projects[0].ID)

	// collaborators can read but not edit
	rec = f.doJSON(t, http.MethodPut, "/api/projects/"+created.ID.String(), collaboratorToken, projectJSON("Mine now", "MIT", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	f := newAPIFixture(t, nil)

	register := RegisterRequest{Email: " Ada@Example.test ", Password: "correct-horse", Name: "Ada"}
	rec := f.doJSON(t, http.MethodPost, "/api/auth/register", "", register)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[AuthResponse](t, rec)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "ada@example.test", registered.User.Email)
	assert.Equal(t, models.RoleUser, registered.User.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = f.doJSON(t, http.MethodPost, "/api/auth/register", "", register)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decode[ErrorResponse](t, rec).Field)

	rec = f.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ada@example.test", Password: "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ada@example.test"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ada@example.test", Password: "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := decode[AuthResponse](t, rec)

	rec = f.do(t, http.MethodGet, "/api/auth/verify", session.Token, "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, registered.User.ID, decode[UserResponse](t, rec).ID)
}

func TestRegisterValidation(t *testing.T) {
	f := newAPIFixture(t, nil)

	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "long-enough", Name: "A"}, "email"},
		{"short password", RegisterRequest{Email: "a@example.test", Password: "short", Name: "A"}, "password"},
		{"missing name", RegisterRequest{Email: "a@example.test", Password: "long-enough"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.doJSON(t, http.MethodPost, "/api/auth/register", "", tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decode[ErrorResponse](t, rec).Field)
		})
	}

	rec := f.do(t, http.MethodPost, "/api/auth/register", "", "application/json", strings.NewReader("not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.doJSON(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Email: "grace@example.test", Password: "first-password", Name: "Grace"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token := decode[AuthResponse](t, rec).Token

	rec = f.do(t, http.MethodGet, "/api/users/profile", token, "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Grace", decode[UserResponse](t, rec).Name)

	institution := "Yale"
	rec = f.doJSON(t, http.MethodPut, "/api/users/profile", token, UpdateProfileRequest{Name: "Grace H", Institution: &institution})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[UserResponse](t, rec)
	assert.Equal(t, "Grace H", profile.Name)
	require.NotNil(t, profile.Institution)
	assert.Equal(t, "Yale", *profile.Institution)

	rec = f.doJSON(t, http.MethodPut, "/api/users/profile", token, UpdateProfileRequest{CurrentPassword: "guess", NewPassword: "second-password"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "currentPassword", decode[ErrorResponse](t, rec).Field)

	rec = f.doJSON(t, http.MethodPut, "/api/users/profile", token, UpdateProfileRequest{CurrentPassword: "first-password", NewPassword: "second-password"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.doJSON(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "grace@example.test", Password: "second-password"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/health", "", "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Database)

	sqlDB, err := f.db.GetDB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec = f.do(t, http.MethodGet, "/health", "", "", http.NoBody)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unreachable", decode[HealthResponse](t, rec).Database)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPIFixture(t, nil)

	f.do(t, http.MethodGet, "/health", "", "", http.NoBody)

	rec := f.do(t, http.MethodGet, "/metrics", "", "", http.NoBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `projecthub_http_requests_total{method="GET",route="/health",status="200"}`)
}

func TestCORS(t *testing.T) {
	f := newAPIFixture(t, map[string]string{"ACCEPTED_ORIGINS": "https://app.test"})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/projects", http.NoBody)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("https://app.test")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.test", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight("https://evil.test")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLimitsFromConfig(t *testing.T) {
	limits, err := limitsFromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMaxUploadFiles, limits.maxFiles)
	assert.Equal(t, int64(defaultMaxUploadBytes), limits.maxFileBytes)
	assert.True(t, limits.allows("application/zip"))

	limits, err = limitsFromConfig(map[string]string{"ALLOWED_UPLOAD_TYPES": "image/png, image/jpeg"})
	require.NoError(t, err)
	assert.True(t, limits.allows("image/jpeg"))
	assert.False(t, limits.allows("image/gif"))

	_, err = limitsFromConfig(map[string]string{"MAX_UPLOAD_FILES": "0"})
	assert.Error(t, err)
}
