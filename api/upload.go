package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rpupo63/project-hub-backend/errs"
	"github.com/rpupo63/project-hub-backend/services"
	"github.com/samber/lo"
)

const (
	defaultMaxUploadFiles = 5
	defaultMaxUploadBytes = 5 << 20
	multipartMemory       = 8 << 20
	formOverheadBytes     = 1 << 20
)

// uploadLimits bounds what a single project write may carry.
type uploadLimits struct {
	maxFiles     int
	maxFileBytes int64
	allowedTypes []string // empty allows every type
}

func (l uploadLimits) allows(contentType string) bool {
	if len(l.allowedTypes) == 0 {
		return true
	}
	return lo.Contains(l.allowedTypes, contentType)
}

// projectJSONRequest is accepted when a write carries no files. Tags may be a
// list or a string, like the multipart field.
type projectJSONRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Institution string `json:"institution"`
	ProjectType string `json:"projectType"`
	SkillLevel  string `json:"skillLevel"`
	Tags        any    `json:"tags"`
}

// parseProjectInput reads a create or update request. Multipart forms carry
// files under "files"; JSON and urlencoded bodies carry fields only.
func parseProjectInput(w http.ResponseWriter, r *http.Request, limits uploadLimits) (services.ProjectInput, error) {
	maxBody := int64(limits.maxFiles)*limits.maxFileBytes + formOverheadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req projectJSONRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if isBodyTooLarge(err) {
				return services.ProjectInput{}, bodyTooLargeError(maxBody)
			}
			return services.ProjectInput{}, errs.NewBadRequestError("malformed request body")
		}
		return services.ProjectInput{
			Title:       req.Title,
			Description: req.Description,
			Institution: req.Institution,
			ProjectType: req.ProjectType,
			SkillLevel:  req.SkillLevel,
			Tags:        services.NormalizeTags(req.Tags),
		}, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if isBodyTooLarge(err) {
				return services.ProjectInput{}, bodyTooLargeError(maxBody)
			}
			return services.ProjectInput{}, errs.NewBadRequestError("malformed multipart form")
		}

	default:
		if err := r.ParseForm(); err != nil {
			if isBodyTooLarge(err) {
				return services.ProjectInput{}, bodyTooLargeError(maxBody)
			}
			return services.ProjectInput{}, errs.NewBadRequestError("malformed form")
		}
	}

	in := services.ProjectInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Institution: r.PostFormValue("institution"),
		ProjectType: r.PostFormValue("projectType"),
		SkillLevel:  r.PostFormValue("skillLevel"),
		Tags:        formTags(r.PostForm["tags"]),
	}

	if r.MultipartForm != nil {
		files, err := readFiles(r.MultipartForm.File["files"], limits)
		if err != nil {
			return services.ProjectInput{}, err
		}
		in.Files = files
	}
	return in, nil
}

// formTags passes a single tags field through as a string, so it can hold a
// JSON array or a comma separated list, and repeated fields as a list.
func formTags(values []string) []string {
	switch len(values) {
	case 0:
		return services.NormalizeTags(nil)
	case 1:
		return services.NormalizeTags(values[0])
	default:
		return services.NormalizeTags(values)
	}
}

func readFiles(headers []*multipart.FileHeader, limits uploadLimits) ([]services.FileUpload, error) {
	if len(headers) > limits.maxFiles {
		return nil, errs.NewTooManyFilesError(limits.maxFiles)
	}

	files := make([]services.FileUpload, 0, len(headers))
	for _, header := range headers {
		if header.Size > limits.maxFileBytes {
			return nil, errs.NewFileTooLargeError(header.Filename, limits.maxFileBytes)
		}

		data, err := readPart(header, limits.maxFileBytes)
		if err != nil {
			return nil, errs.NewBadRequestError("unreadable file " + header.Filename)
		}

		contentType := partContentType(header, data)
		if !limits.allows(contentType) {
			return nil, errs.NewUnsupportedMediaTypeError(header.Filename, contentType)
		}

		files = append(files, services.FileUpload{
			Filename:    header.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}
	return files, nil
}

func readPart(header *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, limit+1))
}

// partContentType prefers the declared part type and sniffs the bytes otherwise.
func partContentType(header *multipart.FileHeader, data []byte) string {
	declared := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
		return strings.ToLower(mediaType)
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return sniffed
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	// the multipart reader does not always wrap the underlying error
	return errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large")
}

func bodyTooLargeError(limit int64) error {
	return errs.NewFileTooLargeError("request body", limit)
}
