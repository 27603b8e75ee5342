package domain

import (
	"context"
)

// SearchOptions tunes a single container search
type SearchOptions struct {
	// Silent suppresses diagnostic logging only
	Silent bool
}

// ContainerSearcher performs one request against the container-search
// endpoint. Failures are returned as *SearchError.
type ContainerSearcher interface {
	Search(ctx context.Context, containerID string, session SessionContext, opts SearchOptions) (*ContainerRecord, error)
}

// EventPublisher publishes scan lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// ZoneProfileRepository defines the interface for zone profile persistence
type ZoneProfileRepository interface {
	// Save persists a profile (upsert by name)
	Save(ctx context.Context, profile *ZoneProfile) error

	// FindByName retrieves a profile, returning nil when it does not exist
	FindByName(ctx context.Context, name string) (*ZoneProfile, error)

	// FindAll retrieves all profiles ordered by name
	FindAll(ctx context.Context) ([]*ZoneProfile, error)

	// Delete removes a profile, returning ErrProfileNotFound when absent
	Delete(ctx context.Context, name string) error
}
