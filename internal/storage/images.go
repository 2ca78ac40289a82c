package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ImageExtensions are the receipt image types picked up from a folder.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".tiff", ".bmp"}

var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".heic": "image/heic",
}

// ImageStore reads receipt images from local paths or gs:// URIs.
// The GCS client is created on first use and shared afterwards.
type ImageStore struct {
	opts []option.ClientOption

	mu     sync.Mutex
	client *gcs.Client
}

// NewImageStore returns an ImageStore. opts are passed to the GCS client.
func NewImageStore(opts ...option.ClientOption) *ImageStore {
	return &ImageStore{opts: opts}
}

// Fetch returns the image bytes and MIME type for uri.
func (s *ImageStore) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	var (
		data []byte
		err  error
	)
	if IsGCSURI(uri) {
		client, cerr := s.Client(ctx)
		if cerr != nil {
			return nil, "", cerr
		}
		data, err = FetchFromGCS(ctx, client, uri)
	} else {
		data, err = os.ReadFile(uri)
		if err != nil {
			err = fmt.Errorf("read image %q: %w", uri, err)
		}
	}
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image %q is empty", uri)
	}
	return data, DetectMIMEType(uri, data), nil
}

// Client returns the shared GCS client, creating it if needed.
func (s *ImageStore) Client(ctx context.Context) (*gcs.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		client, err := gcs.NewClient(ctx, s.opts...)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		s.client = client
	}
	return s.client, nil
}

// Close releases the GCS client if one was created.
func (s *ImageStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

// DetectMIMEType picks a MIME type from the file extension, falling back to
// sniffing the content.
func DetectMIMEType(name string, data []byte) string {
	if mt := contentTypeForName(name); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}

func contentTypeForName(name string) string {
	return mimeByExt[strings.ToLower(filepath.Ext(name))]
}

// DiscoverImages lists receipt images directly inside dir, sorted by name.
func DiscoverImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("DiscoverImages: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range ImageExtensions {
			if ext == want {
				paths = append(paths, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
