// Package storage persists uploaded post images on local disk. Files are
// served back under the /uploads static prefix; the stored path is what gets
// recorded on the post as featuredImage.
package storage

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"inkwell/apperr"
)

const MaxImageBytes = 5 << 20

// URLPrefix is the public path prefix uploaded images are served under.
const URLPrefix = "/uploads"

// Extension and declared content type must both appear here, and must agree
// with each other, for an upload to be accepted.
var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type ImageStore struct {
	dir string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ImageStore{dir: dir}, nil
}

func (s *ImageStore) Dir() string {
	return s.dir
}

// ValidateImage checks the upload against the type and size contract without
// touching disk.
func ValidateImage(header *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	wantType, ok := allowedImageTypes[ext]
	if !ok {
		return apperr.Validation("image must be jpg, jpeg, png, gif or webp")
	}

	declared := header.Header.Get("Content-Type")
	if mediaType, _, found := strings.Cut(declared, ";"); found {
		declared = mediaType
	}
	if strings.TrimSpace(declared) != wantType {
		return apperr.Validation("image content type does not match its extension")
	}

	if header.Size > MaxImageBytes {
		return apperr.Validation("image must be at most 5 MB")
	}
	return nil
}

// Save validates the upload and writes it under the store directory with a
// generated name. It returns the public URL path for the stored file.
func (s *ImageStore) Save(header *multipart.FileHeader) (string, error) {
	if err := ValidateImage(header); err != nil {
		return "", err
	}

	src, err := header.Open()
	if err != nil {
		return "", apperr.Internal("failed to read uploaded image", err)
	}
	defer src.Close()

	name := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", apperr.Internal("failed to store uploaded image", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", apperr.Internal("failed to store uploaded image", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", apperr.Internal("failed to store uploaded image", err)
	}

	return URLPrefix + "/" + name, nil
}

// Remove deletes a previously stored image by its public URL path. Used to
// compensate when the database write after an upload fails, and to drop a
// replaced image. Paths outside the store are ignored.
func (s *ImageStore) Remove(urlPath string) error {
	name, ok := strings.CutPrefix(urlPath, URLPrefix+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
