package database

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/rpupo63/project-hub-backend/models"
	"gorm.io/gorm"
)

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202410160001_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(models.All()...)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"project_collaborators",
					"project_tags",
					&models.Media{},
					&models.Project{},
					&models.Tag{},
					&models.User{},
				)
			},
		},
		{
			ID: "202410200001_project_tag_position",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasColumn(&models.ProjectTag{}, "Position") {
					return nil
				}
				return tx.Migrator().AddColumn(&models.ProjectTag{}, "Position")
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropColumn(&models.ProjectTag{}, "Position")
			},
		},
	}
}

// Migrate applies every pending schema migration.
func Migrate(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).Migrate()
}

// RollbackLast reverts the most recently applied migration.
func RollbackLast(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).RollbackLast()
}
