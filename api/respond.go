package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpupo63/project-hub-backend/errs"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger     zerolog.Logger
	production bool
}

// NewResponder returns a responder. In production, error causes and the
// details of server errors are left out of responses.
func NewResponder(logger zerolog.Logger, production bool) Responder {
	return Responder{logger: logger, production: production}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONStatus(w, http.StatusOK, data)
}

func (r Responder) WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		response := ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		}
		if !r.production {
			response.Details = err.Error()
		}
		r.WriteJSONStatus(w, http.StatusInternalServerError, response)
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
	}

	response := ErrorResponse{
		Error:  apiErr.Message(),
		Status: "error",
		Field:  apiErr.Field,
	}
	if !r.production || apiErr.StatusCode < http.StatusInternalServerError {
		response.Details = apiErr.Details
	}
	if !r.production && apiErr.Cause != nil {
		response.Cause = apiErr.GetFullError()
	}

	r.WriteJSONStatus(w, apiErr.StatusCode, response)
}
