package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/project-hub-backend/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c map[string]string, deps Dependencies) (Server, error) {
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()

	router, err := newRouter(deps, withConfig(c), withStartupTime(startupTime))
	if err != nil {
		return Server{}, err
	}

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

// limitsFromConfig reads MAX_UPLOAD_FILES, MAX_UPLOAD_BYTES and ALLOWED_UPLOAD_TYPES.
func limitsFromConfig(c map[string]string) (uploadLimits, error) {
	limits := uploadLimits{
		maxFiles:     config.GetInt(c, "MAX_UPLOAD_FILES", defaultMaxUploadFiles),
		maxFileBytes: config.GetInt64(c, "MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		allowedTypes: config.GetStrings(c, "ALLOWED_UPLOAD_TYPES"),
	}
	if limits.maxFiles <= 0 || limits.maxFileBytes <= 0 {
		return uploadLimits{}, fmt.Errorf("upload limits must be positive, got %d files of %d bytes", limits.maxFiles, limits.maxFileBytes)
	}
	return limits, nil
}

func newRouter(deps Dependencies, opts ...func(*router)) (*chi.Mux, error) {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	if router.startupTime.IsZero() {
		router.startupTime = time.Now()
	}

	limits, err := limitsFromConfig(router.config)
	if err != nil {
		return nil, err
	}
	production := config.IsProduction(router.config)

	requestLogger := log.Logger
	if !production {
		requestLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}

	handlers := initializeHandlers(deps, limits, production, router.startupTime)
	authMiddleware := newAuthMiddleware(deps.Tokens, production)

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors(NewResponder(log.Logger, production)))
	chiRouter.Use(metricsMiddleware)
	chiRouter.Use(HTTPLoggingMiddleware(requestLogger))

	acceptedOrigins := config.GetStrings(router.config, "ACCEPTED_ORIGINS")
	if len(acceptedOrigins) == 0 {
		acceptedOrigins = []string{"*"}
	}
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins, NewResponder(log.Logger, production)))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	setupOperationalRoutes(chiRouter, handlers)
	setupAPIRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter, nil
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
