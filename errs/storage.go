package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrStorageUpload = errors.New("error uploading file to storage")
	ErrStorageDelete = errors.New("error deleting file from storage")
)

// NewStorageUploadError blocks the surrounding write, so it surfaces as a 500.
func NewStorageUploadError(filename string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageUpload,
		Details:    fmt.Sprintf("upload of %q failed", filename),
		Field:      "files",
		Cause:      cause,
	}
}

// NewStorageDeleteError is only ever logged; deletes are best-effort.
func NewStorageDeleteError(key string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrStorageDelete,
		Details:    fmt.Sprintf("delete of %q failed", key),
		Cause:      cause,
	}
}
