package job

import (
	"context"
	"os"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// harvest archives outDir from inside the container, pruning the
// recipe's exclude patterns, and writes it to hostTarPath (§4.5, §4.7).
func harvest(ctx context.Context, ctr container, outDir, hostTarPath string, excludes []string) error {
	f, err := os.Create(hostTarPath)
	if err != nil {
		return errctx.Wrap(ErrJob, err)
	}
	defer f.Close()

	if err := ctr.CopyFromFiltered(ctx, f, outDir, excludes); err != nil {
		return errctx.Wrap(ErrJob, err)
	}
	return nil
}
