package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBucketUploadAndServe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, _ := newTestClient(t)
	bucket := client.Storage.Bucket("products")

	obj, err := bucket.Upload(ctx, "1700000000000_latte art.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if obj.Size != int64(len("png-bytes")) || obj.Bucket != "products" {
		t.Fatalf("unexpected object: %+v", obj)
	}

	publicURL := bucket.PublicURL(obj.Key)
	want := "http://pos.test/storage/v1/object/public/products/1700000000000_latte%20art.png"
	if publicURL != want {
		t.Fatalf("PublicURL() = %q, want %q", publicURL, want)
	}

	req := httptest.NewRequest(http.MethodGet, strings.TrimPrefix(publicURL, "http://pos.test"), nil)
	rr := httptest.NewRecorder()
	client.Storage.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("serve status = %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if string(body) != "png-bytes" {
		t.Fatalf("served body = %q", body)
	}
}

func TestBucketUploadRejectsDuplicatesAndTraversal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, _ := newTestClient(t)
	bucket := client.Storage.Bucket("products")

	if _, err := bucket.Upload(ctx, "a.png", strings.NewReader("one")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if _, err := bucket.Upload(ctx, "a.png", strings.NewReader("two")); !errors.Is(err, ErrObjectExists) {
		t.Fatalf("duplicate Upload() error = %v, want ErrObjectExists", err)
	}
	for _, key := range []string{"", "../escape.png", "/abs.png", `..\win.png`} {
		if _, err := bucket.Upload(ctx, key, strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Upload(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestStorageHandlerNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	handler := client.Storage.Handler()

	for _, path := range []string{
		PublicPathPrefix + "products/missing.png",
		PublicPathPrefix + "products",
		PublicPathPrefix + "products/",
	} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, want 404", path, rr.Code)
		}
	}
}
