package cli

import (
	"context"

	"github.com/cruciblehq/pkgerd/internal/config"
	"github.com/cruciblehq/pkgerd/internal/state"
)

// CleanCacheCmd implements 'pkger clean-cache', discarding every
// recorded dependency-install cache entry (C9, §4.2) so the next
// build reinstalls every image's dependencies from scratch.
type CleanCacheCmd struct{}

func (c *CleanCacheCmd) Run(ctx context.Context) error {
	store, err := state.Open(config.CacheFile())
	if err != nil {
		return err
	}
	store.Clear()
	return store.Save()
}
