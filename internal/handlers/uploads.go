package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
)

const multipartMemory = 8 << 20

// Uploads receives multipart files into a temp directory for the media delegate.
type Uploads struct {
	TempDir  string
	MaxBytes int64
}

// form is a parsed multipart request whose files were spooled to disk.
type form struct {
	values map[string][]string
	files  map[string]string
}

func (f *form) value(key string) string {
	if v := f.values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func (f *form) file(key string) string {
	return f.files[key]
}

// cleanup removes temp files the delegate did not consume.
func (f *form) cleanup(r *http.Request) {
	for _, path := range f.files {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.FromContext(r.Context()).Warn("temp upload not removed", zap.String("path", path), zap.Error(err))
		}
	}
}

// parse reads the multipart body and spools each named file field to a temp file that keeps
// the client's extension. Callers must defer cleanup.
func (u Uploads) parse(w http.ResponseWriter, r *http.Request, fileFields ...string) (*form, error) {
	if u.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, u.MaxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation(fmt.Sprintf("upload exceeds %d MB", u.MaxBytes>>20))
		}
		return nil, apperr.Validation("invalid multipart form")
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	f := &form{values: r.MultipartForm.Value, files: make(map[string]string)}
	for _, field := range fileFields {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}
		path, err := u.spool(headers[0])
		if err != nil {
			f.cleanup(r)
			return nil, apperr.Internal("failed to receive upload", err)
		}
		f.files[field] = path
	}
	return f, nil
}

func (u Uploads) spool(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(u.TempDir, "upload-*"+safeExt(header.Filename))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return dst.Name(), nil
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
