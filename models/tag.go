package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is shared between projects; names are unique and case-sensitive.
type Tag struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name" gorm:"type:text;not null;uniqueIndex:idx_tags_name"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
