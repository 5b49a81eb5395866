// Package backend is the single gateway to persistence, authentication and
// object storage. A Client is constructed once at startup and passed to every
// consumer; there is no package-level handle.
package backend

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Config wires the client to its collaborators.
type Config struct {
	DB         *gorm.DB
	Auth       AuthConfig
	StorageDir string
	// PublicURL is the base used for emailed links and public object URLs.
	PublicURL string
	Mailer    Mailer
}

// Client exposes tables, the auth provider and storage buckets.
type Client struct {
	db      *gorm.DB
	Auth    *Auth
	Storage *Storage
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	if cfg.DB == nil {
		return nil, errors.New("backend: database handle is required")
	}
	if strings.TrimSpace(cfg.StorageDir) == "" {
		return nil, errors.New("backend: storage directory is required")
	}
	mailer := cfg.Mailer
	if mailer == nil {
		mailer = LogMailer{}
	}
	publicURL := strings.TrimRight(cfg.PublicURL, "/")

	auth, err := newAuth(cfg.DB, cfg.Auth, publicURL, mailer)
	if err != nil {
		return nil, err
	}

	return &Client{
		db:      cfg.DB,
		Auth:    auth,
		Storage: newStorage(cfg.StorageDir, publicURL),
	}, nil
}

// Transaction runs fn against a client whose tables share one database
// transaction. Auth and storage are not transactional.
func (c *Client) Transaction(ctx context.Context, fn func(tx *Client) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := *c
		scoped.db = tx
		return fn(&scoped)
	})
}

// Ping checks that the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates every table the client serves.
func (c *Client) Migrate(ctx context.Context, models ...any) error {
	return c.db.WithContext(ctx).AutoMigrate(models...)
}
