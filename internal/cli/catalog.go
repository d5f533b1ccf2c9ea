package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/inferschema"
	"github.com/aretw0/inferschema/internal/config"
	"github.com/aretw0/inferschema/pkg/adapters/loam"
	"github.com/aretw0/inferschema/pkg/adapters/memory"
	"github.com/aretw0/inferschema/pkg/adapters/redis"
	"github.com/aretw0/inferschema/pkg/persistence/middleware"
	"github.com/aretw0/inferschema/pkg/ports"
	"github.com/aretw0/inferschema/pkg/schema"
)

// OpenStore creates the definition store selected by cfg.Driver, with
// writes logged and, when cfg.ReadOnly is set, refused.
// The returned close function releases its connections.
func OpenStore(cfg config.StoreConfig, logger *slog.Logger) (ports.DefinitionStore, func() error, error) {
	store, closeFn, err := openBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	mws := []middleware.Middleware{middleware.NewAuditMiddleware(logger)}
	if cfg.ReadOnly {
		mws = append(mws, middleware.NewReadOnlyMiddleware())
	}
	return middleware.Chain(store, mws...), closeFn, nil
}

func openBackend(cfg config.StoreConfig) (ports.DefinitionStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewStore(), noop, nil
	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return s, s.Close, nil
	case config.DriverLoam:
		s, err := loam.Open(cfg.Loam.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewCatalog opens the configured store and builds a catalog over it.
// With store.loam.watch set, the catalog follows edits made on disk until
// ctx ends.
func NewCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger, hooks ...inferschema.Hooks) (*inferschema.Catalog, func() error, error) {
	store, closeStore, err := OpenStore(cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}

	var merged inferschema.Hooks
	for _, h := range hooks {
		merged = merged.Merge(h)
	}

	cat := inferschema.New(
		inferschema.WithStore(store),
		inferschema.WithLogger(logger),
		inferschema.WithHooks(merged),
		inferschema.WithUnknownFields(cfg.Decode.UnknownFields),
		inferschema.WithMaxDepth(cfg.Decode.MaxDepth),
	)

	if cfg.Store.Driver == config.DriverLoam && cfg.Store.Loam.Watch {
		if err := cat.Watch(ctx); err != nil {
			_ = closeStore()
			return nil, nil, fmt.Errorf("watch definitions: %w", err)
		}
		logger.Info("watching definitions", "dir", cfg.Store.Loam.Dir)
	}
	return cat, closeStore, nil
}

// Follow keeps the catalog's decode defaults in step with the config file.
func Follow(h *config.Holder, cat *inferschema.Catalog) {
	h.OnChange(func(c *config.Config) {
		cat.SetDecodeDefaults(c.Decode.UnknownFields, c.Decode.MaxDepth)
	})
}

// RegisterAll registers defs in order and stops at the first failure.
func RegisterAll(ctx context.Context, cat *inferschema.Catalog, defs []schema.Definition) error {
	for _, def := range defs {
		if _, err := cat.Register(ctx, def); err != nil {
			return err
		}
	}
	return nil
}
