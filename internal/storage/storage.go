// Package storage keeps uploaded resume files and hands back the reference
// string stored on the user and snapshotted by applications.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("jobportal.storage")

const resumeObjectPrefix = "resumes"

// ResumeStore persists resume files
type ResumeStore interface {
	// Save store the content read from r and return its reference
	Save(ctx context.Context, userID uuid.UUID, extension string, r io.Reader) (string, error)
	// Open return the content behind ref and its size, size is -1 when unknown
	Open(ctx context.Context, ref string) (io.ReadCloser, int64, error)
}

func objectName(userID uuid.UUID, extension string) string {
	return fmt.Sprintf("%s/%s_%s%s", resumeObjectPrefix, userID, uuid.NewString(), extension)
}
