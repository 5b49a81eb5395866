package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"posdash/internal/backend"
	"posdash/models"
)

const (
	productsTable = "products"
	// ProductsBucket holds uploaded product images.
	ProductsBucket = "products"
	// MaxImageBytes caps an uploaded product image.
	MaxImageBytes = 5 << 20
)

var productSortColumns = []string{"id", "name", "price", "categories_id", "created_at"}

// ProductInput is the payload for creating a product. CategoriesID is
// optional.
type ProductInput struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	CategoriesID *int64          `json:"categories_id"`
}

// Validate requires a name and a non-negative price.
func (in ProductInput) Validate() error {
	if err := required("name", in.Name); err != nil {
		return err
	}
	return validPrice(in.Price)
}

// ProductPatch updates only the non-nil fields. ClearCategory removes the
// category link and wins over CategoriesID.
type ProductPatch struct {
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	CategoriesID  *int64           `json:"categories_id"`
	ClearCategory bool             `json:"clear_category"`
}

func (p ProductPatch) values() (map[string]any, error) {
	values := map[string]any{}
	if p.Name != nil {
		if err := required("name", *p.Name); err != nil {
			return nil, err
		}
		values["name"] = *p.Name
	}
	if p.Price != nil {
		if err := validPrice(*p.Price); err != nil {
			return nil, err
		}
		values["price"] = *p.Price
	}
	switch {
	case p.ClearCategory:
		values["categories_id"] = nil
	case p.CategoriesID != nil:
		values["categories_id"] = *p.CategoriesID
	}
	return values, nil
}

func validPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ValidationError("price", "Price must not be negative")
	}
	return nil
}

// ImageUpload is a product image received from a form or API client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Validate requires a named body with an image/* content type.
func (img ImageUpload) Validate() error {
	if strings.TrimSpace(img.Filename) == "" || img.Body == nil {
		return ValidationError("image", "Image file is required")
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return ValidationError("image", "Only image files can be uploaded")
	}
	return nil
}

// Products manages the product catalogue and product images.
type Products struct {
	table  backend.Table[models.Product]
	bucket *backend.Bucket
	now    func() time.Time
}

// NewProducts returns the product service storing images in the
// ProductsBucket bucket of client.
func NewProducts(client *backend.Client) *Products {
	return &Products{
		table:  backend.From[models.Product](client, productsTable),
		bucket: client.Storage.Bucket(ProductsBucket),
		now:    time.Now,
	}
}

// Create uploads img when given and stores the product with the image's
// public URL. A failed insert leaves the uploaded object in place.
func (s *Products) Create(ctx context.Context, in ProductInput, img *ImageUpload) (models.Product, error) {
	if err := in.Validate(); err != nil {
		return models.Product{}, err
	}
	row := models.Product{Name: in.Name, Price: in.Price, CategoriesID: in.CategoriesID}
	if img != nil {
		url, err := s.UploadImage(ctx, *img)
		if err != nil {
			return models.Product{}, err
		}
		row.Image = &url
	}
	if err := s.table.Insert(ctx, &row); err != nil {
		return models.Product{}, wrap("Failed to create product", err)
	}
	return row, nil
}

// UploadImage stores img under a millisecond timestamp prefixed key and
// returns its public URL.
func (s *Products) UploadImage(ctx context.Context, img ImageUpload) (string, error) {
	if err := img.Validate(); err != nil {
		return "", err
	}
	key := fmt.Sprintf("%d_%s", s.now().UnixMilli(), sanitizeFilename(img.Filename))
	obj, err := s.bucket.Upload(ctx, key, &cappedReader{r: img.Body, remaining: MaxImageBytes})
	if err != nil {
		return "", wrap("Failed to upload image", err)
	}
	return s.bucket.PublicURL(obj.Key), nil
}

// List returns products filtered, sorted and limited by opts.
func (s *Products) List(ctx context.Context, opts ListOptions) ([]models.Product, error) {
	q, err := opts.query(productSortColumns)
	if err != nil {
		return nil, err
	}
	rows, err := s.table.Select(ctx, q)
	if err != nil {
		return nil, wrap("Failed to fetch products", err)
	}
	return rows, nil
}

// Get returns the product with id or a NotFound error.
func (s *Products) Get(ctx context.Context, id int64) (models.Product, error) {
	row, err := s.table.Single(ctx, backend.Eq("id", id))
	if err != nil {
		return models.Product{}, wrap("Product not found", err)
	}
	return row, nil
}

// Update applies patch and, when img is given, replaces the image URL. The
// previous image object is not removed.
func (s *Products) Update(ctx context.Context, id int64, patch ProductPatch, img *ImageUpload) (models.Product, error) {
	values, err := patch.values()
	if err != nil {
		return models.Product{}, err
	}
	if img != nil {
		url, err := s.UploadImage(ctx, *img)
		if err != nil {
			return models.Product{}, err
		}
		values["image"] = url
	}
	row, err := s.table.Update(ctx, id, values)
	if err != nil {
		return models.Product{}, wrap("Failed to update product", err)
	}
	return row, nil
}

// Delete removes the product with id. A product used by a recipe yields a
// Conflict error. The image object stays in storage.
func (s *Products) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, s.table, id, "Failed to delete product")
}

// Count returns the number of products.
func (s *Products) Count(ctx context.Context) (int64, error) {
	n, err := s.table.Count(ctx)
	if err != nil {
		return 0, wrap("Failed to count products", err)
	}
	return n, nil
}

var errImageTooLarge = ValidationError("image", fmt.Sprintf("Image must be at most %d MB", MaxImageBytes>>20))

// cappedReader fails instead of truncating once more than remaining bytes are read.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, errImageTooLarge
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, errImageTooLarge
	}
	return n, err
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "image"
	}
	return name
}
