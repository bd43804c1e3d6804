package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpupo63/project-hub-backend/config"
)

// New builds the store selected by STORAGE_DRIVER (s3, minio or memory).
func New(ctx context.Context, c map[string]string) (ObjectStore, error) {
	driver := strings.ToLower(config.GetString(c, "STORAGE_DRIVER", "s3"))
	publicBase := config.GetString(c, "STORAGE_PUBLIC_BASE_URL", "")

	switch driver {
	case "s3":
		return NewS3Store(ctx, S3Config{
			Bucket:        config.GetString(c, "STORAGE_BUCKET", config.GetString(c, "AWS_BUCKET_NAME", "")),
			Region:        config.GetString(c, "AWS_REGION", "us-east-1"),
			AccessKey:     config.GetString(c, "AWS_ACCESS_KEY", ""),
			SecretKey:     config.GetString(c, "AWS_SECRET_KEY", ""),
			Endpoint:      config.GetString(c, "STORAGE_ENDPOINT", ""),
			PublicBaseURL: publicBase,
		})
	case "minio":
		return NewMinIOStore(ctx, MinIOConfig{
			Endpoint:      config.GetString(c, "MINIO_ENDPOINT", ""),
			AccessKey:     config.GetString(c, "MINIO_ACCESS_KEY", ""),
			SecretKey:     config.GetString(c, "MINIO_SECRET_KEY", ""),
			Bucket:        config.GetString(c, "STORAGE_BUCKET", ""),
			UseSSL:        config.GetBool(c, "MINIO_USE_SSL", false),
			PublicBaseURL: publicBase,
		})
	case "memory":
		return NewMemoryStore(publicBase), nil
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", driver)
	}
}
