package runtime

import (
	"context"

	"github.com/rzbill/flume/internal/buffer"
	cfgpkg "github.com/rzbill/flume/internal/config"
	"github.com/rzbill/flume/internal/partition"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
}

// Runtime wires the buffered store, the key codec, and config for a
// single-node instance.
type Runtime struct {
	store  *buffer.Store
	codec  partition.Codec
	config cfgpkg.Config
}

// Open builds the store client and returns a Runtime. The connection is
// lazy; call CheckHealth to verify reachability at startup.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if cfg.RedisAddr == "" {
		cfg = cfgpkg.Default()
	}
	store := buffer.New(buffer.Options{
		Addr:       cfg.RedisAddr,
		OpTimeout:  cfg.OpTimeout(),
		TTL:        cfg.TTL(),
		DisableTTL: cfg.DisableTTL,
	})
	return &Runtime{
		store:  store,
		codec:  partition.NewCodec(cfg.BucketSeconds),
		config: cfg,
	}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// CheckHealth verifies the buffered store is reachable.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Store returns the buffered store.
func (r *Runtime) Store() *buffer.Store { return r.store }

// Codec returns the partition key codec.
func (r *Runtime) Codec() partition.Codec { return r.codec }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
