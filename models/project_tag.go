package models

import "github.com/google/uuid"

// ProjectTag is a row of the project_tags join table. Position keeps tags in
// the order they were given.
type ProjectTag struct {
	ProjectID uuid.UUID `json:"projectId" gorm:"type:uuid;primaryKey"`
	TagID     uuid.UUID `json:"tagId" gorm:"type:uuid;primaryKey"`
	Position  int       `json:"position" gorm:"not null;default:0"`
}

func (ProjectTag) TableName() string {
	return "project_tags"
}
