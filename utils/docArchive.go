package utils

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client.
// Prefers ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS).
// If you need to provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GCSArchiver keeps an audit copy of every generated document in a bucket,
// keyed by account. The vendor document store stays the system of record.
type GCSArchiver struct {
	Bucket string
}

// NewGCSArchiverFromEnv returns nil when no archive bucket is configured;
// archiving is optional.
func NewGCSArchiverFromEnv() *GCSArchiver {
	bucket := strings.TrimSpace(os.Getenv("DOC_ARCHIVE_BUCKET"))
	if bucket == "" {
		return nil
	}
	return &GCSArchiver{Bucket: bucket}
}

func (a *GCSArchiver) Archive(ctx context.Context, objectName string, content []byte, contentType string) error {
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}

	w := client.Bucket(a.Bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(content); err != nil {
		w.Close()
		return fmt.Errorf("failed to write archive object %s: %w", objectName, err)
	}
	return w.Close()
}
