package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestClassifyMedia(t *testing.T) {
	tests := map[string]MediaType{
		"image/png":       MediaImage,
		"image/jpeg":      MediaImage,
		"IMAGE/GIF":       MediaImage,
		"video/mp4":       MediaVideo,
		" video/webm":     MediaVideo,
		"application/pdf": MediaDocument,
		"text/plain":      MediaDocument,
		"":                MediaDocument,
		"imagery/x":       MediaDocument,
	}
	for mime, want := range tests {
		assert.Equal(t, want, ClassifyMedia(mime), mime)
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ProjectTypeInnovation.Valid())
	assert.True(t, ProjectType("PRODUCT_DEVELOPMENT").Valid())
	assert.False(t, ProjectType("innovation").Valid())
	assert.False(t, ProjectType("").Valid())

	assert.True(t, SkillAdvanced.Valid())
	assert.False(t, SkillLevel("EXPERT").Valid())
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestBeforeCreateAssignsIDs(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(All()...))

	user := User{Email: "ada@example.com", Password: "hash", Name: "Ada"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, RoleUser, user.Role)

	tag := Tag{Name: "robotics"}
	require.NoError(t, db.Create(&tag).Error)
	assert.NotEqual(t, uuid.Nil, tag.ID)
}

func TestColumnMismatchReport(t *testing.T) {
	db := openTestDB(t)

	report, err := ColumnMismatchReport(db)
	require.NoError(t, err)
	for _, entry := range report {
		assert.True(t, entry.Missing, entry.Table)
	}

	require.NoError(t, db.AutoMigrate(All()...))
	require.NoError(t, db.Exec("ALTER TABLE projects ADD COLUMN status text").Error)

	report, err = ColumnMismatchReport(db)
	require.NoError(t, err)

	byTable := make(map[string]ColumnMismatch)
	for _, entry := range report {
		byTable[entry.Table] = entry
	}
	assert.Equal(t, []string{"status"}, byTable["projects"].Columns)
	assert.Empty(t, byTable["tags"].Columns)
	assert.False(t, byTable["media"].Missing)
}
