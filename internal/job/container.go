package job

import (
	"context"
	"io"

	"github.com/cruciblehq/pkgerd/internal/containerengine"
)

// execer is the subset of containerengine.Container used to run
// commands, narrowed so tests can fake it without a live containerd
// connection. Its method signatures match containerengine.Container
// exactly (down to the shared *containerengine.ExecResult type), so a
// real *containerengine.Container satisfies it with no adapter.
type execer interface {
	Exec(ctx context.Context, shell, command string, env []string, workdir string) (*containerengine.ExecResult, error)
	ExecArgs(ctx context.Context, env []string, workdir string, args ...string) (*containerengine.ExecResult, error)
}

// container is the full set of container operations a job drives
// against a build container.
type container interface {
	execer
	MkdirAll(ctx context.Context, path string) error
	CopyTo(ctx context.Context, r io.Reader, destDir string) error
	CopyFrom(ctx context.Context, w io.Writer, path string) error
	CopyFromFiltered(ctx context.Context, w io.Writer, path string, excludes []string) error
	Destroy(ctx context.Context)
}
