package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	applog "posdash/internal/log"
)

// PublicPathPrefix is where Storage.Handler serves public objects.
const PublicPathPrefix = "/storage/v1/object/public/"

var (
	ErrObjectExists = errors.New("the resource already exists")
	ErrInvalidKey   = errors.New("invalid object key")
)

// Storage is a directory of buckets. Each bucket is a sub-directory and every
// object is publicly readable.
type Storage struct {
	root      string
	publicURL string
}

func newStorage(root, publicURL string) *Storage {
	return &Storage{root: root, publicURL: publicURL}
}

// Bucket returns the named bucket.
func (s *Storage) Bucket(name string) *Bucket {
	return &Bucket{name: name, dir: filepath.Join(s.root, name), publicURL: s.publicURL}
}

// Object identifies a stored file.
type Object struct {
	Bucket string
	Key    string
	Size   int64
}

type Bucket struct {
	name      string
	dir       string
	publicURL string
}

// Upload stores body under key. Existing keys are never overwritten.
func (b *Bucket) Upload(ctx context.Context, key string, body io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return Object{}, err
	}

	target := filepath.Join(b.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Object{}, fmt.Errorf("create bucket directory: %w", err)
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return Object{}, fmt.Errorf("upload %s/%s: %w", b.name, clean, ErrObjectExists)
	}
	if err != nil {
		return Object{}, fmt.Errorf("upload %s/%s: %w", b.name, clean, err)
	}

	size, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(target)
		return Object{}, fmt.Errorf("upload %s/%s: %w", b.name, clean, errors.Join(copyErr, closeErr))
	}

	applog.Debug(ctx, "object stored", "bucket", b.name, "key", clean, "bytes", size)
	return Object{Bucket: b.name, Key: clean, Size: size}, nil
}

// PublicURL returns the URL under which key is served.
func (b *Bucket) PublicURL(key string) string {
	segments := strings.Split(strings.TrimPrefix(key, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return b.publicURL + PublicPathPrefix + url.PathEscape(b.name) + "/" + strings.Join(segments, "/")
}

// Handler serves objects below PublicPathPrefix. Directory listings are not exposed.
func (s *Storage) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, PublicPathPrefix)
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || strings.Contains(bucket, "..") {
			http.NotFound(w, r)
			return
		}
		clean, err := cleanKey(key)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		f, err := os.Open(filepath.Join(s.root, bucket, filepath.FromSlash(clean)))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
