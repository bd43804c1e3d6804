package database

import (
	"context"

	"github.com/rpupo63/project-hub-backend/models"
	"gorm.io/gorm"
)

// ClearProjectData deletes all media, tag links, collaborator links, projects
// and tags in one transaction, children first. Users are kept.
func (d Database) ClearProjectData(ctx context.Context) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

		if err := all.Delete(&models.Media{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM project_tags").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM project_collaborators").Error; err != nil {
			return err
		}
		if err := all.Delete(&models.Project{}).Error; err != nil {
			return err
		}
		return all.Delete(&models.Tag{}).Error
	})
}
