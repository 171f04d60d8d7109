package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize caps product image uploads at 5MB.
const MaxImageSize = 5 * 1024 * 1024

// ObjectStore holds uploaded product images and resolves them to public URLs.
// Deletion is keyed by the URL the upload returned.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// ImageKey builds an object key under the uploader and product:
// {sellerID}/{productID}/{uuid}.{ext}.
func ImageKey(sellerID, productID uint, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%d/%d/%s%s", sellerID, productID, uuid.NewString(), ext)
}

// LocalPrefix returns the route prefix for serving uploads when the public
// base URL is a path on this server. An absolute URL points at external
// hosting and gets no local route.
func LocalPrefix(baseURL string) (string, bool) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	return u.Path, true
}

// FileStore keeps objects on local disk and serves them under BaseURL.
type FileStore struct {
	Dir     string
	BaseURL string
}

func NewFileStore(dir, baseURL string) *FileStore {
	return &FileStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *FileStore) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	dst := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("storage: create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxImageSize)); err != nil {
		return "", fmt.Errorf("storage: write object: %w", err)
	}
	return s.BaseURL + "/" + key, nil
}

func (s *FileStore) Delete(ctx context.Context, publicURL string) error {
	key, ok := strings.CutPrefix(publicURL, s.BaseURL+"/")
	if !ok {
		return fmt.Errorf("storage: url %q is not under %q", publicURL, s.BaseURL)
	}
	dst := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete object: %w", err)
	}
	return nil
}
