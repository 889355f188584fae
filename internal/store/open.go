package store

import (
	"context"
	"fmt"

	"github.com/idilsaglam/questlog/internal/store/jsonstore"
	"github.com/idilsaglam/questlog/internal/store/memstore"
	"github.com/idilsaglam/questlog/internal/store/pgstore"
	"github.com/idilsaglam/questlog/internal/store/redisstore"
	"github.com/idilsaglam/questlog/internal/store/sqlitestore"
)

// Options selects and configures a backend.
type Options struct {
	Driver string

	Dir         string // file
	SQLitePath  string // sqlite
	PostgresDSN string // postgres

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open returns the backend named by opt.Driver.
func Open(ctx context.Context, opt Options) (Backend, error) {
	switch opt.Driver {
	case DriverFile, "":
		s, err := jsonstore.Open(opt.Dir)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return s, nil
	case DriverMemory:
		return memstore.New(), nil
	case DriverSQLite:
		s, err := sqlitestore.Open(opt.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return s, nil
	case DriverRedis:
		s, err := redisstore.Open(ctx, redisstore.Options{
			Addr:     opt.RedisAddr,
			Password: opt.RedisPassword,
			DB:       opt.RedisDB,
			Prefix:   opt.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		return s, nil
	case DriverPostgres:
		s, err := pgstore.Open(ctx, opt.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opt.Driver)
}
