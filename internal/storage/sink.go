package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
)

// ReportSink stores generated report files.
type ReportSink interface {
	// Write stores data under name and returns where it ended up.
	Write(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// LocalSink writes reports into a directory, creating it as needed.
type LocalSink struct {
	Dir string
}

func (s *LocalSink) Write(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("LocalSink: create %s: %w", s.Dir, err)
	}
	p := filepath.Join(s.Dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("LocalSink: write %s: %w", p, err)
	}
	return p, nil
}

// GCSSink uploads reports to a bucket under Prefix.
type GCSSink struct {
	Client *gcs.Client
	Bucket string
	Prefix string
}

func (s *GCSSink) Write(ctx context.Context, name, contentType string, data []byte) (string, error) {
	object := ObjectName(s.Prefix, name)
	if err := UploadBytes(ctx, s.Client, s.Bucket, object, contentType, data); err != nil {
		return "", fmt.Errorf("GCSSink: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.Bucket, object), nil
}

// MultiSink writes to every sink in order and returns all locations.
// It stops at the first error.
type MultiSink []ReportSink

func (m MultiSink) WriteAll(ctx context.Context, name, contentType string, data []byte) ([]string, error) {
	locations := make([]string, 0, len(m))
	for _, s := range m {
		loc, err := s.Write(ctx, name, contentType, data)
		if err != nil {
			return locations, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}
