package analysis

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"adreport/internal/models"
)

// FormField is the multipart field carrying uploaded files.
const FormField = "files"

var (
	ErrNoFiles      = errors.New("no files uploaded")
	ErrTooManyFiles = errors.New("too many files")
	errFileTooLarge = errors.New("file exceeds the upload size limit")
)

// FromMultipart reads the uploaded files of a form. Files over limit bytes
// are returned as rejected results instead of uploads.
func FromMultipart(form *multipart.Form, maxFiles, limit int) ([]Upload, []models.FileResult, error) {
	if form == nil || len(form.File[FormField]) == 0 {
		return nil, nil, ErrNoFiles
	}
	headers := form.File[FormField]
	if maxFiles > 0 && len(headers) > maxFiles {
		return nil, nil, fmt.Errorf("%w: at most %d per upload", ErrTooManyFiles, maxFiles)
	}

	var uploads []Upload
	var rejected []models.FileResult
	for _, fh := range headers {
		data, err := readPart(fh, limit)
		if err != nil {
			msg := err.Error()
			if errors.Is(err, errFileTooLarge) {
				msg = fmt.Sprintf("File exceeds the %d MB limit", limit>>20)
			}
			rejected = append(rejected, models.FileResult{
				Name:    fh.Filename,
				Outcome: models.OutcomeRejected,
				Error:   msg,
			})
			continue
		}
		uploads = append(uploads, Upload{Name: fh.Filename, Data: data})
	}
	return uploads, rejected, nil
}

func readPart(fh *multipart.FileHeader, limit int) ([]byte, error) {
	if fh.Size > int64(limit) {
		return nil, errFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > limit {
		return nil, errFileTooLarge
	}
	return data, nil
}
