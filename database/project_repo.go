package database

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/project-hub-backend/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectFilter narrows FindAll. Empty fields apply no restriction.
type ProjectFilter struct {
	Institution string
	ProjectType string
	SkillLevel  string
	Search      string
}

// ProjectFields are the mutable scalar columns of a project.
type ProjectFields struct {
	Title       string
	Description string
	Institution string
	ProjectType *models.ProjectType
	SkillLevel  *models.SkillLevel
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// withIncludes preloads everything a project response carries.
func withIncludes(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Creator").
		Preload("Tags").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("media.created_at ASC")
		}).
		Preload("Collaborators")
}

// FindAll returns every project matching filter, newest first.
func (r *ProjectRepo) FindAll(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})

	if filter.Institution != "" {
		q = q.Where("institution = ?", filter.Institution)
	}
	if filter.ProjectType != "" {
		q = q.Where("project_type = ?", filter.ProjectType)
	}
	if filter.SkillLevel != "" {
		q = q.Where("skill_level = ?", filter.SkillLevel)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var projects []*models.Project
	if err := withIncludes(q).Order("projects.created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, r.orderTags(ctx, projects)
}

// FindForMember returns projects the user created or collaborates on.
func (r *ProjectRepo) FindForMember(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	err := withIncludes(r.db.WithContext(ctx)).
		Where("creator_id = ? OR id IN (?)", userID,
			r.db.Table("project_collaborators").Select("project_id").Where("user_id = ?", userID)).
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, r.orderTags(ctx, projects)
}

// FindByID returns a project with all includes, or nil if it does not exist.
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := withIncludes(r.db.WithContext(ctx)).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, r.orderTags(ctx, []*models.Project{&project})
}

// orderTags sorts each project's preloaded tags by their link position. The
// many2many preload itself returns tags in storage order.
func (r *ProjectRepo) orderTags(ctx context.Context, projects []*models.Project) error {
	ids := lo.FilterMap(projects, func(p *models.Project, _ int) (uuid.UUID, bool) {
		return p.ID, len(p.Tags) > 1
	})
	if len(ids) == 0 {
		return nil
	}

	var links []models.ProjectTag
	if err := r.db.WithContext(ctx).Where("project_id IN ?", ids).Find(&links).Error; err != nil {
		return err
	}

	type link struct{ project, tag uuid.UUID }
	positions := make(map[link]int, len(links))
	for _, l := range links {
		positions[link{l.ProjectID, l.TagID}] = l.Position
	}
	for _, p := range projects {
		slices.SortStableFunc(p.Tags, func(a, b models.Tag) int {
			return cmp.Compare(positions[link{p.ID, a.ID}], positions[link{p.ID, b.ID}])
		})
	}
	return nil
}

// Add inserts the project row only; associations are written separately.
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// UpdateFields overwrites the scalar columns. CreatorID is never touched.
func (r *ProjectRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields ProjectFields) error {
	result := r.db.WithContext(ctx).
		Model(&models.Project{ID: id}).
		Select("title", "description", "institution", "project_type", "skill_level", "updated_at").
		Updates(models.Project{
			Title:       fields.Title,
			Description: fields.Description,
			Institution: fields.Institution,
			ProjectType: fields.ProjectType,
			SkillLevel:  fields.SkillLevel,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceTags makes tags the project's complete tag set, in the given order.
func (r *ProjectRepo) ReplaceTags(ctx context.Context, projectID uuid.UUID, tags []models.Tag) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error; err != nil {
		return err
	}
	return linkTags(db, projectID, tags, 0)
}

// AttachTags links tags to the project after any existing links.
func (r *ProjectRepo) AttachTags(ctx context.Context, projectID uuid.UUID, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	db := r.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&models.ProjectTag{}).Where("project_id = ?", projectID).Count(&existing).Error; err != nil {
		return err
	}
	return linkTags(db, projectID, tags, int(existing))
}

// linkTags writes one join row per tag, numbering positions from start.
// Tags already linked keep their position.
func linkTags(db *gorm.DB, projectID uuid.UUID, tags []models.Tag, start int) error {
	if len(tags) == 0 {
		return nil
	}
	links := lo.Map(tags, func(t models.Tag, i int) models.ProjectTag {
		return models.ProjectTag{ProjectID: projectID, TagID: t.ID, Position: start + i}
	})
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// Delete removes the project's tag and collaborator links, then the row itself.
// Media rows must already be gone.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	project := &models.Project{ID: id}

	if err := db.Where("project_id = ?", id).Delete(&models.ProjectTag{}).Error; err != nil {
		return err
	}
	if err := db.Model(project).Association("Collaborators").Clear(); err != nil {
		return err
	}

	result := db.Delete(&models.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddCollaborator grants a user read access to the project.
func (r *ProjectRepo) AddCollaborator(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Table("project_collaborators").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"project_id": projectID, "user_id": userID}).Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
