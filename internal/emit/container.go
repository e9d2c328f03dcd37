package emit

import (
	"context"
	"io"

	"github.com/cruciblehq/pkgerd/internal/containerengine"
)

// container is the subset of containerengine.Container the emitter
// drives to stage descriptor files, invoke a native packaging tool,
// and pull the resulting artifact back out. Method signatures match
// containerengine.Container exactly, so a real *containerengine.
// Container satisfies this with no adapter (the same pattern
// internal/job uses for its own execer/container interfaces).
type container interface {
	ExecArgs(ctx context.Context, env []string, workdir string, args ...string) (*containerengine.ExecResult, error)
	MkdirAll(ctx context.Context, path string) error
	CopyTo(ctx context.Context, r io.Reader, destDir string) error
	CopyFrom(ctx context.Context, w io.Writer, path string) error
}
