package source

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/cruciblehq/pkgerd/internal/errctx"
	"github.com/cruciblehq/pkgerd/internal/recipe"
)

// execResult is the subset of containerengine.ExecResult Stage needs,
// kept local so this package doesn't import containerengine just for a
// result shape (mirrors internal/imagecache's installer.go).
type execResult struct {
	ExitCode int
	Stderr   string
}

// containerTarget is the subset of containerengine.Container Stage
// drives, narrowed so tests can fake it without a live containerd
// connection.
type containerTarget interface {
	CopyTo(ctx context.Context, r io.Reader, destDir string) error
	Exec(ctx context.Context, shell, command string, env []string, workdir string) (*execResult, error)
	ExecArgs(ctx context.Context, env []string, workdir string, args ...string) (*execResult, error)
}

// Stage fetches r's Source and Git entries into bldDir inside target,
// then applies every patch that matches image (§4.3).
func Stage(ctx context.Context, f httpFetcher, target containerTarget, r recipe.Recipe, image, bldDir string) error {
	if r.Source != "" {
		if err := stageSource(ctx, f, target, r.Source, r.Dir, bldDir); err != nil {
			return err
		}
	}

	if r.Git != nil {
		if err := cloneGit(ctx, target, r.Git, bldDir); err != nil {
			return err
		}
	}

	for _, patch := range r.Patches {
		if !patch.AppliesTo(image) {
			continue
		}
		if err := applyPatch(ctx, f, target, patch, r.Dir, bldDir, image); err != nil {
			return err
		}
	}

	return nil
}

func stageSource(ctx context.Context, f httpFetcher, target containerTarget, source, recipeDir, bldDir string) error {
	localPath, isDir, cleanup, err := resolveEntry(ctx, f, source, recipeDir)
	defer cleanup()
	if err != nil {
		return err
	}

	if isDir {
		return copyDir(ctx, target, localPath, bldDir)
	}
	return copyFile(ctx, target, localPath, entryBaseName(source), bldDir)
}

func copyDir(ctx context.Context, target containerTarget, dir, bldDir string) error {
	pr, pw := io.Pipe()
	go func() {
		tw := tar.NewWriter(pw)
		err := tarDir(dir, tw)
		if err == nil {
			err = tw.Close()
		}
		pw.CloseWithError(err)
	}()
	if err := target.CopyTo(ctx, pr, bldDir); err != nil {
		return errctx.Wrap(ErrSource, err)
	}
	return nil
}

func copyFile(ctx context.Context, target containerTarget, localPath, name, bldDir string) error {
	switch detectArchive(name) {
	case kindZip:
		return copyZip(ctx, target, localPath, bldDir)
	case kindTarXz:
		return copyTarXz(ctx, target, localPath, name, bldDir)
	case kindTar, kindTarGz, kindTarBz2:
		return streamTarFamily(ctx, target, localPath, name, bldDir)
	default:
		return copyBareFile(ctx, target, localPath, name, bldDir)
	}
}

func streamTarFamily(ctx context.Context, target containerTarget, localPath, name, bldDir string) error {
	f, err := openFile(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	stream, err := tarReader(detectArchive(name), f)
	if err != nil {
		return err
	}
	if err := target.CopyTo(ctx, stream, bldDir); err != nil {
		return errctx.Wrap(ErrSource, err)
	}
	return nil
}

func copyZip(ctx context.Context, target containerTarget, localPath, bldDir string) error {
	pr, pw := io.Pipe()
	go func() {
		tw := tar.NewWriter(pw)
		err := extractZipToTar(localPath, tw)
		if err == nil {
			err = tw.Close()
		}
		pw.CloseWithError(err)
	}()
	if err := target.CopyTo(ctx, pr, bldDir); err != nil {
		return errctx.Wrap(ErrSource, err)
	}
	return nil
}

// copyTarXz stages the compressed archive verbatim into bldDir and
// extracts it with the container's own tar (§source package doc: no
// stdlib xz decompressor), then removes the staged archive.
func copyTarXz(ctx context.Context, target containerTarget, localPath, name, bldDir string) error {
	if err := copyBareFile(ctx, target, localPath, name, bldDir); err != nil {
		return err
	}
	staged := path.Join(bldDir, name)
	res, err := target.ExecArgs(ctx, nil, bldDir, "tar", "xf", staged, "-C", bldDir)
	if err != nil {
		return errctx.Wrap(ErrSource, err)
	}
	if res.ExitCode != 0 {
		return errctx.Wrapf(ErrSource, "extracting %s: exit %d: %s", name, res.ExitCode, res.Stderr)
	}
	if _, err := target.ExecArgs(ctx, nil, bldDir, "rm", "-f", staged); err != nil {
		return errctx.Wrap(ErrSource, err)
	}
	return nil
}

func copyBareFile(ctx context.Context, target containerTarget, localPath, name, bldDir string) error {
	f, err := openFile(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	size, err := fileSize(f)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	go func() {
		tw := tar.NewWriter(pw)
		err := singleFileTar(tw, name, size, f)
		if err == nil {
			err = tw.Close()
		}
		pw.CloseWithError(err)
	}()
	if err := target.CopyTo(ctx, pr, bldDir); err != nil {
		return errctx.Wrap(ErrSource, err)
	}
	return nil
}

// cloneGit clones r into a scratch directory inside the container, then
// merges its contents into bldDir so a prior Source fetch's files
// survive alongside it (§4.3: "Both source and git may coexist").
func cloneGit(ctx context.Context, target containerTarget, g *recipe.GitRef, bldDir string) error {
	scratch := path.Join(bldDir, ".pkger-git-src")
	cmd := fmt.Sprintf(
		"set -e; rm -rf %q; git clone --branch %q %q %q; cp -a %q/. %q; rm -rf %q",
		scratch, g.EffectiveBranch(), g.URL, scratch, scratch, bldDir, scratch,
	)
	res, err := target.Exec(ctx, "/bin/sh", cmd, nil, bldDir)
	if err != nil {
		return errctx.Wrap(ErrSource, err)
	}
	if res.ExitCode != 0 {
		return errctx.Wrapf(ErrSource, "git clone %s: exit %d: %s", g.URL, res.ExitCode, res.Stderr)
	}
	return nil
}

// applyPatch stages patch.Source into bldDir, runs `patch -pN` against
// it, then removes the staged patch file. Non-zero exit surfaces as
// ErrPatchFailed naming the patch and image (§4.3).
func applyPatch(ctx context.Context, f httpFetcher, target containerTarget, p recipe.Patch, recipeDir, bldDir, image string) error {
	localPath, _, cleanup, err := resolveEntry(ctx, f, p.Source, recipeDir)
	defer cleanup()
	if err != nil {
		return err
	}

	name := entryBaseName(p.Source)
	if err := copyBareFile(ctx, target, localPath, name, bldDir); err != nil {
		return err
	}
	staged := path.Join(bldDir, name)
	defer target.ExecArgs(ctx, nil, bldDir, "rm", "-f", staged)

	res, err := target.ExecArgs(ctx, nil, bldDir, "patch", fmt.Sprintf("-p%d", p.StripLevel()), "-i", staged)
	if err != nil {
		return errctx.Wrap(ErrPatchFailed, err)
	}
	if res.ExitCode != 0 {
		return errctx.Wrapf(ErrPatchFailed, "%s on %s: exit %d: %s", p.Source, image, res.ExitCode, res.Stderr)
	}
	return nil
}
