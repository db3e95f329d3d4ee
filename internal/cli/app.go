package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/dircache/internal/cache"
	"github.com/rshade/dircache/internal/config"
	"github.com/rshade/dircache/internal/explorer"
	"github.com/rshade/dircache/internal/logging"
	"github.com/rshade/dircache/internal/snapshot"
)

// app carries the state shared by every command of one invocation.
type app struct {
	flags     rootFlags
	cfg       *config.Config
	logger    zerolog.Logger
	logResult *logging.LogPathResult
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if _, err := a.flags.entryTTL(); err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	cfg, err := config.LoadWithProject(a.flags.configDir, config.FindProjectDir(cwd), zerolog.Nop())
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	a.cfg = cfg

	result := setupLogging(cmd, cfg.Logging, a.flags.debug)
	a.logResult = &result
	a.logger = logging.ComponentLogger(result.Logger, "cli")
	return nil
}

// cleanup releases the log file.
func (a *app) cleanup(_ *cobra.Command) error {
	if a.logResult != nil {
		return a.logResult.Close()
	}
	return nil
}

// withCache opens the state store and a Cache, runs fn and closes the cache,
// which flushes the last state write.
func (a *app) withCache(ctx context.Context, fn func(c *cache.Cache) error) error {
	settings, err := a.cfg.CacheSettings()
	if err != nil {
		return err
	}

	opts := []cache.Option{
		cache.WithConfig(settings),
		cache.WithLogger(logging.ComponentLogger(a.logger, "cache")),
	}

	store, err := snapshot.Open(ctx, a.cfg.SnapshotOptions())
	if err != nil {
		a.logger.Warn().Ctx(ctx).Err(err).Msg("state store unavailable, running in memory only")
	} else {
		opts = append(opts, cache.WithStateStore(store))
	}

	c, err := cache.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			a.logger.Warn().Ctx(ctx).Err(closeErr).Msg("closing cache")
		}
	}()

	if overrideErr := a.applyOverrides(ctx, c); overrideErr != nil {
		return overrideErr
	}

	return fn(c)
}

// applyOverrides pushes the cache settings set in the config file, the
// environment or by config set over the restored cache state.
func (a *app) applyOverrides(ctx context.Context, c *cache.Cache) error {
	update, err := a.cfg.CacheOverrides()
	if err != nil {
		return err
	}

	current := c.Config()
	if update.Apply(current) == current {
		return nil
	}
	if updateErr := c.UpdateConfig(update); updateErr != nil {
		return fmt.Errorf("applying cache settings: %w", updateErr)
	}
	a.logger.Debug().Ctx(ctx).Msg("applied configured cache settings over persisted state")
	return nil
}

// withExplorer is withCache plus an Explorer using --cache-ttl for its entries.
func (a *app) withExplorer(ctx context.Context, fn func(c *cache.Cache, ex *explorer.Explorer) error) error {
	ttl, err := a.flags.entryTTL()
	if err != nil {
		return err
	}

	return a.withCache(ctx, func(c *cache.Cache) error {
		ex := explorer.New(c,
			explorer.WithLogger(logging.ComponentLogger(a.logger, "explorer")),
			explorer.WithTTL(ttl),
		)
		return fn(c, ex)
	})
}
