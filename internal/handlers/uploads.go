package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

var errMissingFile = errors.New("file field is missing")

// parseMultipart bounds the request body at maxBytes before parsing the
// multipart form. Oversized uploads get a 413, malformed ones a 400, and the
// response is already written when false comes back.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) bool {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(r.Context(), w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
			return false
		}
		respondError(r.Context(), w, http.StatusBadRequest, "expected multipart form data")
		return false
	}
	return true
}

// stageUpload copies one multipart file field to the temp dir and returns the
// local path. Callers hand the path to MediaStore.Store, which removes the
// staged file whether or not the upload succeeds.
func stageUpload(r *http.Request, field, tempDir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", errMissingFile
		}
		return "", fmt.Errorf("read form file %q: %w", field, err)
	}
	defer file.Close()

	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure temp dir: %w", err)
	}

	staged, err := os.CreateTemp(tempDir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	if _, err := io.Copy(staged, file); err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := staged.Close(); err != nil {
		os.Remove(staged.Name())
		return "", fmt.Errorf("close staging file: %w", err)
	}

	return staged.Name(), nil
}
