package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rpupo63/project-hub-backend/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// DSN returns DATABASE_URL, or builds a key/value DSN from the DB_* settings.
func DSN(c map[string]string) (string, error) {
	if url := config.GetString(c, "DATABASE_URL", ""); url != "" {
		return url, nil
	}

	host := config.GetString(c, "DB_HOST", "")
	if host == "" {
		return "", fmt.Errorf("DATABASE_URL or DB_HOST must be set")
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host,
		config.GetString(c, "DB_USER", "postgres"),
		config.GetString(c, "DB_PASSWORD", ""),
		config.GetString(c, "DB_NAME", "projecthub"),
		config.GetString(c, "DB_PORT", "5432"),
		config.GetString(c, "DB_SSLMODE", "require"),
	), nil
}

// NewLogger builds the gorm logger used for every connection.
func NewLogger(c map[string]string) logger.Interface {
	level := logger.Warn
	if config.GetBool(c, "DB_LOG_QUERIES", false) {
		level = logger.Info
	}

	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Duration(config.GetInt(c, "DB_SLOW_QUERY_MS", 2000)) * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !config.IsProduction(c),
		},
	)
}

// Open connects to PostgreSQL. Read queries are spread across
// DATABASE_REPLICA_URLS when any are configured.
func Open(c map[string]string) (*gorm.DB, error) {
	dsn, err := DSN(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger:         NewLogger(c),
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	maxOpen := config.GetInt(c, "DB_MAX_OPEN_CONNS", 20)
	maxIdle := config.GetInt(c, "DB_MAX_IDLE_CONNS", 5)
	connLifetime := time.Duration(config.GetInt(c, "DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute

	if replicas := config.GetStrings(c, "DATABASE_REPLICA_URLS"); len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, replica := range replicas {
			dialectors = append(dialectors, postgres.New(postgres.Config{
				DSN:                  replica,
				PreferSimpleProtocol: true,
			}))
		}

		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(maxOpen).
			SetMaxIdleConns(maxIdle).
			SetConnMaxLifetime(connLifetime)

		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("error registering read replicas: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connLifetime)

	return db, nil
}
