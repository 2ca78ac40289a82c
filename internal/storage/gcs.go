package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// SplitGCSURI splits "gs://bucket/path/to/object" into bucket and object.
func SplitGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// IsGCSURI reports whether uri points into a bucket.
func IsGCSURI(uri string) bool {
	return strings.HasPrefix(uri, "gs://")
}

// UploadFile uploads a local file to a GCS bucket under the given object name.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
func UploadFile(ctx context.Context, client *gcs.Client, bucketName, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	return upload(ctx, client, bucketName, objectName, contentTypeForName(filePath), f)
}

// UploadBytes writes data to bucketName/objectName.
func UploadBytes(ctx context.Context, client *gcs.Client, bucketName, objectName, contentType string, data []byte) error {
	return upload(ctx, client, bucketName, objectName, contentType, bytes.NewReader(data))
}

func upload(ctx context.Context, client *gcs.Client, bucketName, objectName, contentType string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy to GCS writer: %w", err)
	}

	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload gs://%s/%s: %w", bucketName, objectName, err)
	}
	return nil
}

// FetchFromGCS downloads the object bytes for the given GCS URI.
func FetchFromGCS(ctx context.Context, client *gcs.Client, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := SplitGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading bytes: %w", err)
	}
	return data, nil
}

// ObjectName joins a prefix and file name into an object path.
func ObjectName(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
