// Package store defines the durable key-value storage a collection is
// mirrored into, and opens the configured backend.
package store

import (
	"context"
	"errors"
)

// Backend is a local, string-valued key-value store.
// GetItem reports ok=false, err=nil for an absent key.
type Backend interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

var ErrUnknownDriver = errors.New("unknown storage driver")
