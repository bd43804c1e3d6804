package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaType string

const (
	MediaImage    MediaType = "IMAGE"
	MediaVideo    MediaType = "VIDEO"
	MediaDocument MediaType = "DOCUMENT"
)

// Media is a stored object owned by exactly one project.
type Media struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Type      MediaType `json:"type" gorm:"type:text;not null"`
	URL       string    `json:"url" gorm:"type:text;not null"`
	Key       string    `json:"key" gorm:"type:text;not null"`
	ProjectID uuid.UUID `json:"projectId" gorm:"type:uuid;not null;index:idx_media_project_id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ClassifyMedia derives the media type from a MIME type prefix.
func ClassifyMedia(mimeType string) MediaType {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return MediaImage
	case strings.HasPrefix(mt, "video/"):
		return MediaVideo
	default:
		return MediaDocument
	}
}

func (Media) TableName() string {
	return "media"
}
