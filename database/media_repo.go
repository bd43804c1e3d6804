package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/project-hub-backend/models"
	"gorm.io/gorm"
)

type MediaRepo struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) *MediaRepo {
	return &MediaRepo{db}
}

// AddMany inserts media rows for a project.
func (r *MediaRepo) AddMany(ctx context.Context, media []models.Media) error {
	if len(media) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&media).Error
}

// FindByProject returns the media row with id if it belongs to projectID, else nil.
func (r *MediaRepo) FindByProject(ctx context.Context, projectID, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	err := r.db.WithContext(ctx).Where("id = ? AND project_id = ?", id, projectID).First(&media).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// ListByProject returns every media row owned by the project.
func (r *MediaRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Media, error) {
	var media []models.Media
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at").Find(&media).Error
	return media, err
}

// DeleteByProject removes every media row owned by the project.
func (r *MediaRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.Media{})
	return result.RowsAffected, result.Error
}

// Delete removes a single media row.
func (r *MediaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Media{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
