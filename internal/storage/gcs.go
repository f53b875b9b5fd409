package storage

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/himansu2198/Job-Listing-Portal/internal/apperr"
)

// GCSResumeStore keep resumes as objects of a Google Cloud Storage bucket
type GCSResumeStore struct {
	bucketName string
	client     *storage.Client
}

// NewGCSResumeStore create a client from application default credentials
func NewGCSResumeStore(ctx context.Context, bucketName string) (*GCSResumeStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, apperr.Storage(err, "create cloud storage client")
	}
	return &GCSResumeStore{
		bucketName: bucketName,
		client:     client,
	}, nil
}

// Save implements ResumeStore
func (s *GCSResumeStore) Save(ctx context.Context, userID uuid.UUID, extension string, r io.Reader) (string, error) {
	ref := objectName(userID, extension)
	obj := s.client.Bucket(s.bucketName).Object(ref)

	err := writeObject(ctx, func(ctx context.Context) io.WriteCloser {
		wc := obj.NewWriter(ctx)
		wc.ContentType = "application/pdf"
		return wc
	}, r)
	if err != nil {
		return "", err
	}

	logger.Debugf("uploaded resume gs://%s/%s", s.bucketName, ref)
	return ref, nil
}

// writeObject copy r into the writer made by open. A failed copy cancels the
// writer's context before closing it, so the partial object is never committed.
func writeObject(ctx context.Context, open func(context.Context) io.WriteCloser, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wc := open(ctx)
	if _, err := io.Copy(wc, r); err != nil {
		cancel()
		_ = wc.Close()
		return apperr.Storage(err, "write data to object")
	}
	if err := wc.Close(); err != nil {
		return apperr.Storage(err, "close object writer")
	}
	return nil
}

// Open implements ResumeStore
func (s *GCSResumeStore) Open(ctx context.Context, ref string) (io.ReadCloser, int64, error) {
	rc, err := s.client.Bucket(s.bucketName).Object(ref).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, 0, apperr.New(apperr.NotFound, "Resume not found")
	}
	if err != nil {
		return nil, 0, apperr.Storage(err, "read object")
	}
	return rc, rc.Attrs.Size, nil
}

// Close release the underlying client
func (s *GCSResumeStore) Close() error {
	return s.client.Close()
}
