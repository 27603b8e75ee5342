package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "dropzone_db", config.Database)
	assert.Equal(t, "dropzone-service", config.AppName)
	assert.Equal(t, DefaultHealthCheckTimeout, config.HealthCheckTimeout)
}

func TestNewClient_UnreachableNamesDatabase(t *testing.T) {
	config := DefaultConfig()
	config.URI = "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200"
	config.Database = "dropzone_test"
	config.ConnectTimeout = 200 * time.Millisecond
	config.HealthCheckTimeout = 500 * time.Millisecond

	client, err := NewClient(context.Background(), config)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), `mongodb "dropzone_test" unreachable`)
}
