package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultHealthCheckTimeout bounds one readiness ping
const DefaultHealthCheckTimeout = 2 * time.Second

// Config holds MongoDB connection configuration. Credentials belong in URI.
type Config struct {
	URI                string
	Database           string
	AppName            string
	ConnectTimeout     time.Duration
	HealthCheckTimeout time.Duration
	MaxPoolSize        uint64
	MinPoolSize        uint64
}

// DefaultConfig returns the zone-profile store defaults
func DefaultConfig() *Config {
	return &Config{
		URI:                "mongodb://localhost:27017",
		Database:           "dropzone_db",
		AppName:            "dropzone-service",
		ConnectTimeout:     10 * time.Second,
		HealthCheckTimeout: DefaultHealthCheckTimeout,
		MaxPoolSize:        10,
		MinPoolSize:        1,
	}
}

// Client is a connected handle on the service database
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	config   *Config
}

// NewClient connects and pings the primary. A failed ping disconnects again.
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	clientOpts := options.Client().
		ApplyURI(config.URI).
		SetAppName(config.AppName).
		SetConnectTimeout(config.ConnectTimeout).
		SetMaxPoolSize(config.MaxPoolSize).
		SetMinPoolSize(config.MinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	c := &Client{
		client:   client,
		database: client.Database(config.Database),
		config:   config,
	}
	if err := c.HealthCheck(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return c, nil
}

// Database returns the database handle
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// HealthCheck pings the primary within the configured timeout. The error
// names the database so the readiness payload shows which store is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	timeout := c.config.HealthCheckTimeout
	if timeout <= 0 {
		timeout = DefaultHealthCheckTimeout
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb %q unreachable: %w", c.config.Database, err)
	}
	return nil
}
