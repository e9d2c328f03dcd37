package imagecache

import (
	"context"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// DefaultDeps are installed into every build image unless the recipe
// sets skip_default_deps (§4.2).
var DefaultDeps = []string{"gzip", "git", "tar", "curl"}

// manager describes how to invoke a target's native package manager
// non-interactively inside a build container.
type manager struct {
	updateCmd  []string // refresh the package index; nil if not needed
	installCmd []string // append package names
}

var managers = map[string]manager{
	"rpm": {
		installCmd: []string{"dnf", "install", "-y"},
	},
	"deb": {
		updateCmd:  []string{"apt-get", "update"},
		installCmd: []string{"apt-get", "install", "-y"},
	},
	"pkg": {
		installCmd: []string{"pacman", "-Sy", "--noconfirm"},
	},
	"apk": {
		updateCmd:  []string{"apk", "update"},
		installCmd: []string{"apk", "add"},
	},
}

// managerFor resolves the package manager for target. gzip has no
// native package format of its own; it installs through whichever
// manager its declared OS uses, so the caller passes the image's OS
// override. os is tried first, then target's own entry in the manager
// table; a gzip target whose os names none of rpm/deb/pkg/apk has no
// entry there and yields ErrUnknownPackageManager.
func managerFor(target, os string) (manager, error) {
	if os != "" {
		if m, ok := managers[os]; ok {
			return m, nil
		}
	}
	if m, ok := managers[target]; ok {
		return m, nil
	}
	return manager{}, errctx.Wrapf(ErrUnknownPackageManager, "target %q os %q", target, os)
}

// InstallCommand returns the command line pkger runs inside a build
// container to install deps via the package manager managerFor resolves
// from target and os. There is no fallback manager: a "gzip" target whose
// os names none of the other four returns ErrUnknownPackageManager.
func InstallCommand(target, os string, deps []string) ([]string, error) {
	m, err := managerFor(target, os)
	if err != nil {
		return nil, err
	}
	if len(deps) == 0 {
		return nil, nil
	}

	cmd := append([]string(nil), m.installCmd...)
	return append(cmd, deps...), nil
}

// UpdateCommand returns the package index refresh command for target,
// or nil if the manager needs none (dnf/pacman resolve against their
// configured repos without a separate refresh step).
func UpdateCommand(target, os string) ([]string, error) {
	m, err := managerFor(target, os)
	if err != nil {
		return nil, err
	}
	if len(m.updateCmd) == 0 {
		return nil, nil
	}
	return append([]string(nil), m.updateCmd...), nil
}

// execResult is the subset of containerengine.ExecResult installInto
// needs, kept as a local shape so this file doesn't import
// containerengine directly.
type execResult struct {
	ExitCode int
	Stderr   string
}

// execer is the subset of containerengine.Container used to install
// dependencies, kept narrow so tests can fake it without a live
// containerd connection.
type execer interface {
	ExecArgs(ctx context.Context, env []string, workdir string, args ...string) (*execResult, error)
}

// installInto runs target's update (if any) and install commands inside
// an already-started container.
func installInto(ctx context.Context, c execer, target, os string, deps []string) error {
	if update, err := UpdateCommand(target, os); err != nil {
		return err
	} else if len(update) > 0 {
		res, err := c.ExecArgs(ctx, nil, "", update...)
		if err != nil {
			return errctx.Wrap(ErrImage, err)
		}
		if res.ExitCode != 0 {
			return errctx.Wrapf(ErrImage, "dependency index refresh failed (%d): %s", res.ExitCode, res.Stderr)
		}
	}

	install, err := InstallCommand(target, os, deps)
	if err != nil {
		return err
	}
	if len(install) == 0 {
		return nil
	}

	res, err := c.ExecArgs(ctx, nil, "", install...)
	if err != nil {
		return errctx.Wrap(ErrImage, err)
	}
	if res.ExitCode != 0 {
		return errctx.Wrapf(ErrImage, "dependency install failed (%d): %s", res.ExitCode, res.Stderr)
	}
	return nil
}
