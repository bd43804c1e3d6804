package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const RoleUser = "user"

// User is the account that owns projects. Password holds a bcrypt hash and is never serialized.
type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email       string    `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Password    string    `json:"-" gorm:"type:text;not null"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Institution *string   `json:"institution,omitempty" gorm:"type:text"`
	Role        string    `json:"role" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
