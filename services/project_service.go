package services

import (
	"bytes"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/project-hub-backend/database"
	"github.com/rpupo63/project-hub-backend/errs"
	"github.com/rpupo63/project-hub-backend/metrics"
	"github.com/rpupo63/project-hub-backend/models"
	"github.com/rpupo63/project-hub-backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultKeyPrefix         = "projects"
	DefaultUploadConcurrency = 4
)

// FileUpload is one file received with a create or update request.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProjectInput carries the full field set of a project write. Updates replace
// every field, so create and update share one shape and one set of rules.
type ProjectInput struct {
	Title       string
	Description string
	Institution string
	ProjectType string // empty when not given
	SkillLevel  string // empty when not given
	Tags        []string
	Files       []FileUpload
}

type (
	CreateProjectInput = ProjectInput
	UpdateProjectInput = ProjectInput
)

// Validate checks required fields and enum values and returns the scalar
// columns to write.
func (in ProjectInput) Validate() (database.ProjectFields, error) {
	fields := database.ProjectFields{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Institution: strings.TrimSpace(in.Institution),
	}

	switch {
	case fields.Title == "":
		return fields, errs.NewMissingFieldError("title")
	case fields.Description == "":
		return fields, errs.NewMissingFieldError("description")
	case fields.Institution == "":
		return fields, errs.NewMissingFieldError("institution")
	}

	if raw := strings.TrimSpace(in.ProjectType); raw != "" {
		projectType := models.ProjectType(raw)
		if !projectType.Valid() {
			return fields, errs.NewValidationError("projectType", "invalid project type")
		}
		fields.ProjectType = &projectType
	}

	if raw := strings.TrimSpace(in.SkillLevel); raw != "" {
		skillLevel := models.SkillLevel(raw)
		if !skillLevel.Valid() {
			return fields, errs.NewValidationError("skillLevel", "invalid skill level")
		}
		fields.SkillLevel = &skillLevel
	}

	return fields, nil
}

type ProjectServiceOptions struct {
	KeyPrefix         string
	UploadConcurrency int
}

// ProjectService owns the project aggregate: the project row, its tag links
// and its media rows together with their stored objects.
type ProjectService struct {
	db     database.Database
	store  storage.ObjectStore
	logger zerolog.Logger
	opts   ProjectServiceOptions
}

func NewProjectService(db database.Database, store storage.ObjectStore, opts ProjectServiceOptions) *ProjectService {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	if opts.UploadConcurrency <= 0 {
		opts.UploadConcurrency = DefaultUploadConcurrency
	}

	return &ProjectService{
		db:     db,
		store:  store,
		logger: log.With().Str("service", "projectService").Logger(),
		opts:   opts,
	}
}

// CreateProject validates the input, uploads its files, then writes the
// project, its tags and its media in one transaction. Uploaded objects are
// removed again if anything after the upload fails.
func (s *ProjectService) CreateProject(ctx context.Context, creatorID uuid.UUID, in CreateProjectInput) (*models.Project, error) {
	fields, err := in.Validate()
	if err != nil {
		return nil, err
	}
	tagNames := NormalizeTags(in.Tags)

	media, err := s.uploadFiles(ctx, in.Files)
	if err != nil {
		return nil, err
	}

	var created *models.Project
	err = s.db.Transaction(ctx, func(tx database.Database) error {
		tags, err := tx.TagRepo().FindOrCreate(ctx, tagNames)
		if err != nil {
			return errs.NewDatabaseError("create", "tags", err)
		}

		project := &models.Project{
			Title:       fields.Title,
			Description: fields.Description,
			Institution: fields.Institution,
			ProjectType: fields.ProjectType,
			SkillLevel:  fields.SkillLevel,
			CreatorID:   creatorID,
		}
		if err := tx.ProjectRepo().Add(ctx, project); err != nil {
			return errs.NewDatabaseError("create", "project", err)
		}

		if err := tx.ProjectRepo().AttachTags(ctx, project.ID, tags); err != nil {
			return errs.NewDatabaseError("attach", "tags", err)
		}

		if err := tx.MediaRepo().AddMany(ctx, withProjectID(media, project.ID)); err != nil {
			return errs.NewDatabaseError("create", "media", err)
		}

		created, err = tx.ProjectRepo().FindByID(ctx, project.ID)
		if err != nil {
			return errs.NewDatabaseError("find", "project", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("creatorID", creatorID.String()).Msg("Failed to create project")
		s.deleteObjects(context.WithoutCancel(ctx), mediaKeys(media))
		return nil, errs.NewTransactionError("creating project", err)
	}

	metrics.ProjectsMutated.WithLabelValues("create").Inc()
	s.logger.Info().Str("projectID", created.ID.String()).Int("media", len(media)).Msg("Project created")
	return created, nil
}

// GetProject returns a project with its creator, tags, media and collaborators.
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}
	return project, nil
}

// ListProjects returns every project matching filter, newest first.
func (s *ProjectService) ListProjects(ctx context.Context, filter database.ProjectFilter) ([]*models.Project, error) {
	filter.Institution = strings.TrimSpace(filter.Institution)
	filter.ProjectType = strings.TrimSpace(filter.ProjectType)
	filter.SkillLevel = strings.TrimSpace(filter.SkillLevel)

	if filter.ProjectType != "" && !models.ProjectType(filter.ProjectType).Valid() {
		return nil, errs.NewValidationError("projectType", "invalid project type")
	}
	if filter.SkillLevel != "" && !models.SkillLevel(filter.SkillLevel).Valid() {
		return nil, errs.NewValidationError("skillLevel", "invalid skill level")
	}

	projects, err := s.db.ProjectRepo().FindAll(ctx, filter)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	return projects, nil
}

// ListUserProjects returns the projects a user created or collaborates on.
func (s *ProjectService) ListUserProjects(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	projects, err := s.db.ProjectRepo().FindForMember(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	return projects, nil
}

// UpdateProject replaces the project's fields and tag set and appends any new
// media. Only the creator may update. Existing media is left alone.
func (s *ProjectService) UpdateProject(ctx context.Context, callerID, id uuid.UUID, in UpdateProjectInput) (*models.Project, error) {
	fields, err := in.Validate()
	if err != nil {
		return nil, err
	}
	tagNames := NormalizeTags(in.Tags)

	if _, err := s.loadOwned(ctx, callerID, id); err != nil {
		return nil, err
	}

	media, err := s.uploadFiles(ctx, in.Files)
	if err != nil {
		return nil, err
	}

	var updated *models.Project
	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.ProjectRepo().UpdateFields(ctx, id, fields); err != nil {
			return errs.NewDatabaseError("update", "project", err)
		}

		tags, err := tx.TagRepo().FindOrCreate(ctx, tagNames)
		if err != nil {
			return errs.NewDatabaseError("create", "tags", err)
		}
		if err := tx.ProjectRepo().ReplaceTags(ctx, id, tags); err != nil {
			return errs.NewDatabaseError("replace", "tags", err)
		}

		if err := tx.MediaRepo().AddMany(ctx, withProjectID(media, id)); err != nil {
			return errs.NewDatabaseError("create", "media", err)
		}

		updated, err = tx.ProjectRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "project", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("projectID", id.String()).Msg("Failed to update project")
		s.deleteObjects(context.WithoutCancel(ctx), mediaKeys(media))
		return nil, errs.NewTransactionError("updating project", err)
	}
	if updated == nil {
		// deleted by a concurrent request between the ownership check and the write
		return nil, errs.NewNotFound("project")
	}

	metrics.ProjectsMutated.WithLabelValues("update").Inc()
	return updated, nil
}

// DeleteProject removes the project, its media rows and its tag and
// collaborator links in one transaction, then deletes the stored objects.
// Storage failures after the commit are logged and do not fail the call.
func (s *ProjectService) DeleteProject(ctx context.Context, callerID, id uuid.UUID) error {
	project, err := s.loadOwned(ctx, callerID, id)
	if err != nil {
		return err
	}

	var keys []string
	err = s.db.Transaction(ctx, func(tx database.Database) error {
		// re-read inside the transaction so media added since the ownership check is included
		media, err := tx.MediaRepo().ListByProject(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "media", err)
		}
		keys = mediaKeys(media)

		if _, err := tx.MediaRepo().DeleteByProject(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "media", err)
		}
		if err := tx.ProjectRepo().Delete(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "project", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("projectID", id.String()).Msg("Failed to delete project")
		return errs.NewTransactionError("deleting project", err)
	}

	s.deleteObjects(context.WithoutCancel(ctx), keys)

	metrics.ProjectsMutated.WithLabelValues("delete").Inc()
	s.logger.Info().Str("projectID", project.ID.String()).Int("media", len(keys)).Msg("Project deleted")
	return nil
}

// DeleteMedia removes one media item from a project the caller owns.
func (s *ProjectService) DeleteMedia(ctx context.Context, callerID, projectID, mediaID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, callerID, projectID); err != nil {
		return err
	}

	media, err := s.db.MediaRepo().FindByProject(ctx, projectID, mediaID)
	if err != nil {
		return errs.NewDatabaseError("find", "media", err)
	}
	if media == nil {
		return errs.NewNotFound("media")
	}

	if err := s.db.MediaRepo().Delete(ctx, media.ID); err != nil {
		return errs.NewDatabaseError("delete", "media", err)
	}

	s.deleteObjects(context.WithoutCancel(ctx), []string{media.Key})
	return nil
}

// AddCollaborator gives another user read access to a project the caller owns.
func (s *ProjectService) AddCollaborator(ctx context.Context, callerID, projectID, userID uuid.UUID) (*models.Project, error) {
	if _, err := s.loadOwned(ctx, callerID, projectID); err != nil {
		return nil, err
	}

	user, err := s.db.UserRepo().FindByID(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFound("user")
	}
	if user.ID == callerID {
		return nil, errs.NewValidationError("userId", "the creator cannot be a collaborator")
	}

	if err := s.db.ProjectRepo().AddCollaborator(ctx, projectID, userID); err != nil {
		return nil, errs.NewDatabaseError("add", "collaborator", err)
	}
	return s.GetProject(ctx, projectID)
}

// loadOwned returns the project if it exists and callerID created it.
func (s *ProjectService) loadOwned(ctx context.Context, callerID, id uuid.UUID) (*models.Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.CreatorID != callerID {
		return nil, errs.NewNotOwnerError("project")
	}
	return project, nil
}

// uploadFiles stores every file concurrently. If any upload fails the ones
// that succeeded are deleted and a storage error is returned.
func (s *ProjectService) uploadFiles(ctx context.Context, files []FileUpload) ([]models.Media, error) {
	if len(files) == 0 {
		return nil, nil
	}

	media := make([]models.Media, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.UploadConcurrency)

	for i, file := range files {
		g.Go(func() error {
			stored, err := s.store.Upload(gctx, storage.Object{
				Key:         storage.BuildKey(s.opts.KeyPrefix, file.Filename),
				ContentType: file.ContentType,
				Body:        bytes.NewReader(file.Data),
				Size:        int64(len(file.Data)),
			})
			metrics.RecordStorage("upload", err)
			if err != nil {
				return errs.NewStorageUploadError(file.Filename, err)
			}

			media[i] = models.Media{
				Type: models.ClassifyMedia(file.ContentType),
				URL:  stored.URL,
				Key:  stored.Key,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int("files", len(files)).Msg("Upload failed, removing stored objects")
		s.deleteObjects(context.WithoutCancel(ctx), mediaKeys(media))
		return nil, err
	}
	return media, nil
}

// deleteObjects removes objects concurrently. Each failure is logged and
// counted, never returned.
func (s *ProjectService) deleteObjects(ctx context.Context, keys []string) {
	var g errgroup.Group
	g.SetLimit(s.opts.UploadConcurrency)

	for _, key := range keys {
		g.Go(func() error {
			err := s.store.Delete(ctx, key)
			metrics.RecordStorage("delete", err)
			if err != nil {
				s.logger.Warn().Err(errs.NewStorageDeleteError(key, err)).Str("key", key).Msg("Best-effort storage delete failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}

func withProjectID(media []models.Media, projectID uuid.UUID) []models.Media {
	return lo.Map(media, func(m models.Media, _ int) models.Media {
		m.ProjectID = projectID
		return m
	})
}

// mediaKeys returns the non-empty storage keys of media.
func mediaKeys(media []models.Media) []string {
	return lo.FilterMap(media, func(m models.Media, _ int) (string, bool) {
		return m.Key, m.Key != ""
	})
}
