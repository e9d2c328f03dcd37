package source

import (
	"context"

	"github.com/cruciblehq/pkgerd/internal/containerengine"
)

// ContainerAdapter wraps a real containerengine.Container to satisfy
// containerTarget, converting its *containerengine.ExecResult into the
// local execResult shape this package tests against.
type ContainerAdapter struct {
	*containerengine.Container
}

// Adapt wraps c so it can be passed to Stage.
func Adapt(c *containerengine.Container) ContainerAdapter {
	return ContainerAdapter{c}
}

func (a ContainerAdapter) Exec(ctx context.Context, shell, command string, env []string, workdir string) (*execResult, error) {
	res, err := a.Container.Exec(ctx, shell, command, env, workdir)
	if err != nil {
		return nil, err
	}
	return &execResult{ExitCode: res.ExitCode, Stderr: res.Stderr}, nil
}

func (a ContainerAdapter) ExecArgs(ctx context.Context, env []string, workdir string, args ...string) (*execResult, error) {
	res, err := a.Container.ExecArgs(ctx, env, workdir, args...)
	if err != nil {
		return nil, err
	}
	return &execResult{ExitCode: res.ExitCode, Stderr: res.Stderr}, nil
}
