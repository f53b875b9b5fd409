package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
)

// LocalResumeStore keep resumes under a directory on local disk
type LocalResumeStore struct {
	dir string
}

// NewLocalResumeStore create dir when missing
func NewLocalResumeStore(dir string) (*LocalResumeStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, resumeObjectPrefix), 0o750); err != nil {
		return nil, apperr.Storage(err, "create resume directory")
	}
	return &LocalResumeStore{dir: dir}, nil
}

// Save implements ResumeStore
func (s *LocalResumeStore) Save(_ context.Context, userID uuid.UUID, extension string, r io.Reader) (string, error) {
	ref := objectName(userID, extension)
	path := filepath.Join(s.dir, filepath.FromSlash(ref))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", apperr.Storage(err, "create resume file")
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", apperr.Storage(err, "write resume file")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", apperr.Storage(err, "close resume file")
	}

	logger.Debugf("stored resume %s", ref)
	return ref, nil
}

// Open implements ResumeStore
func (s *LocalResumeStore) Open(_ context.Context, ref string) (io.ReadCloser, int64, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, 0, apperr.New(apperr.NotFound, "Resume not found")
	}
	if err != nil {
		return nil, 0, apperr.Storage(err, "open resume file")
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, apperr.Storage(err, "stat resume file")
	}
	return f, info.Size(), nil
}

// resolve map ref to a path and refuse anything outside the resume directory
func (s *LocalResumeStore) resolve(ref string) (string, error) {
	root := filepath.Join(s.dir, resumeObjectPrefix)
	path := filepath.Join(s.dir, filepath.FromSlash(ref))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", apperr.New(apperr.NotFound, "Resume not found")
	}
	return path, nil
}
