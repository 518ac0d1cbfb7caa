package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Image is a stored binary object.
type Image struct {
	Key         string
	ContentType string
	Data        []byte
}

// ImageStorage is the object storage port for product images.
type ImageStorage interface {
	// Upload stores data under key, replacing any previous object.
	Upload(ctx context.Context, key, contentType string, data []byte) error
	// Get returns ErrImageNotFound if nothing is stored under key.
	Get(ctx context.Context, key string) (*Image, error)
	// Delete removes the object under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL of the object stored under key.
	URL(key string) string
}

// ImageKey returns the storage key of a product's image.
func ImageKey(productID string) string {
	return "products/" + productID
}

type baseURL string

func (b baseURL) URL(key string) string {
	return strings.TrimSuffix(string(b), "/") + "/" + key
}

// PgImageStore keeps images in the product_images table.
type PgImageStore struct {
	baseURL
	db *pgxpool.Pool
}

// NewPgImageStore creates an image store whose public URLs start with publicBaseURL.
func NewPgImageStore(dbp *pgxpool.Pool, publicBaseURL string) *PgImageStore {
	return &PgImageStore{baseURL: baseURL(publicBaseURL), db: dbp}
}

func (s *PgImageStore) Upload(ctx context.Context, key, contentType string, data []byte) error {
	_, err := s.db.Exec(ctx, `INSERT INTO product_images (key, content_type, data) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data`,
		key, contentType, data)
	if err != nil {
		return fmt.Errorf("failed to upload image %s: %w", key, err)
	}
	return nil
}

func (s *PgImageStore) Get(ctx context.Context, key string) (*Image, error) {
	img := Image{Key: key}
	err := s.db.QueryRow(ctx, `SELECT content_type, data FROM product_images WHERE key = $1`, key).
		Scan(&img.ContentType, &img.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image %s: %w", key, err)
	}
	return &img, nil
}

func (s *PgImageStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM product_images WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}

// InMemoryImages is an ImageStorage backed by a map.
type InMemoryImages struct {
	baseURL
	mu     sync.RWMutex
	images map[string]Image
}

func NewInMemoryImages(publicBaseURL string) *InMemoryImages {
	return &InMemoryImages{baseURL: baseURL(publicBaseURL), images: make(map[string]Image)}
}

func (s *InMemoryImages) Upload(_ context.Context, key, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[key] = Image{Key: key, ContentType: contentType, Data: append([]byte(nil), data...)}
	return nil
}

func (s *InMemoryImages) Get(_ context.Context, key string) (*Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[key]
	if !ok {
		return nil, perrors.ErrImageNotFound
	}
	return &img, nil
}

func (s *InMemoryImages) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, key)
	return nil
}
