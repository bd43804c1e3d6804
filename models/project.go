package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectType string

const (
	ProjectTypeEntrepreneurship   ProjectType = "ENTREPRENEURSHIP"
	ProjectTypeInnovation         ProjectType = "INNOVATION"
	ProjectTypeProductDevelopment ProjectType = "PRODUCT_DEVELOPMENT"
)

func (p ProjectType) Valid() bool {
	switch p {
	case ProjectTypeEntrepreneurship, ProjectTypeInnovation, ProjectTypeProductDevelopment:
		return true
	}
	return false
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "BEGINNER"
	SkillIntermediate SkillLevel = "INTERMEDIATE"
	SkillAdvanced     SkillLevel = "ADVANCED"
)

func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// Project is the aggregate root. It owns its Media and links to shared Tags.
type Project struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string       `json:"title" gorm:"type:text;not null"`
	Description string       `json:"description" gorm:"type:text;not null"`
	Institution string       `json:"institution" gorm:"type:text;not null;index:idx_projects_institution"`
	ProjectType *ProjectType `json:"projectType" gorm:"type:text"`
	SkillLevel  *SkillLevel  `json:"skillLevel" gorm:"type:text"`
	CreatorID   uuid.UUID    `json:"creatorId" gorm:"type:uuid;not null;index:idx_projects_creator_id"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	Creator       *User   `json:"creator,omitempty" gorm:"foreignKey:CreatorID;references:ID;constraint:OnDelete:RESTRICT"`
	Tags          []Tag   `json:"tags" gorm:"many2many:project_tags"`
	Media         []Media `json:"media" gorm:"foreignKey:ProjectID;references:ID"`
	Collaborators []User  `json:"collaborators" gorm:"many2many:project_collaborators"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
