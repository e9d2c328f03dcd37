package containerengine

import (
	"context"
	"io"
	"path/filepath"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// MkdirAll creates path and its parents inside the container.
func (c *Container) MkdirAll(ctx context.Context, path string) error {
	return c.mustExec(ctx, "mkdir", nil, nil, "mkdir", "-p", path)
}

// CopyTo extracts a tar stream from r into destDir inside the
// container, piping it through "tar xf -" (§4.3: source fetch and
// patch application land in the container this way).
func (c *Container) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	return c.mustExec(ctx, "tar extract", r, nil, "tar", "xf", "-", "-C", destDir)
}

// CopyFrom archives path from inside the container as a tar stream
// written to w (§4.7: harvesting build outputs onto the host).
func (c *Container) CopyFrom(ctx context.Context, w io.Writer, path string) error {
	return c.mustExec(ctx, "tar archive", nil, w, "tar", "cf", "-", "-C", filepath.Dir(path), filepath.Base(path))
}

// CopyFromFiltered is CopyFrom with a recipe's exclude patterns (§4.5,
// §4.7: harvest applies an "exclude" prune) pruned out before the
// archive ever leaves the container, rather than re-filtering the tar
// stream on the host.
func (c *Container) CopyFromFiltered(ctx context.Context, w io.Writer, path string, excludes []string) error {
	args := []string{"tar"}
	for _, pattern := range excludes {
		args = append(args, "--exclude="+pattern)
	}
	args = append(args, "cf", "-", "-C", filepath.Dir(path), filepath.Base(path))
	return c.mustExec(ctx, "tar archive (filtered)", nil, w, args...)
}

func (c *Container) mustExec(ctx context.Context, desc string, stdin io.Reader, stdout io.Writer, args ...string) error {
	exitCode, stderr, err := c.execCommand(ctx, stdin, stdout, nil, "", args...)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return errctx.Wrapf(ErrEngine, "%s failed with exit code %d (%s)", desc, exitCode, stderr)
	}
	return nil
}
