package database

import (
	"context"

	"github.com/rpupo63/project-hub-backend/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindAll returns all tags from the database
func (r *TagRepo) FindAll(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.WithContext(ctx).Order("name").Find(&tags).Error
	return tags, err
}

// FindOrCreate returns one tag per name, in the order given, creating rows
// only for names that do not exist yet.
func (r *TagRepo) FindOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	names = lo.Uniq(names)
	if len(names) == 0 {
		return nil, nil
	}

	db := r.db.WithContext(ctx)

	candidates := lo.Map(names, func(name string, _ int) models.Tag {
		return models.Tag{Name: name}
	})
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&candidates).Error
	if err != nil {
		return nil, err
	}

	var stored []models.Tag
	if err := db.Where("name IN ?", names).Find(&stored).Error; err != nil {
		return nil, err
	}

	byName := lo.KeyBy(stored, func(t models.Tag) string { return t.Name })
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if tag, ok := byName[name]; ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}
