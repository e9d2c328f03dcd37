package emit

import (
	"archive/tar"
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// stageFile tars a single regular file named name with contents body
// and copies it into destDir inside ctr, via CopyTo's "tar xf -" pipe.
func stageFile(ctx context.Context, ctr container, destDir, name string, body []byte) error {
	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	if err := w.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		return errctx.Wrap(ErrEmit, err)
	}
	if _, err := w.Write(body); err != nil {
		return errctx.Wrap(ErrEmit, err)
	}
	if err := w.Close(); err != nil {
		return errctx.Wrap(ErrEmit, err)
	}
	if err := ctr.MkdirAll(ctx, destDir); err != nil {
		return errctx.Wrap(ErrEmit, err)
	}
	if err := ctr.CopyTo(ctx, &buf, destDir); err != nil {
		return errctx.Wrap(ErrEmit, err)
	}
	return nil
}

// detectArch runs uname -m inside ctr, used when a recipe doesn't
// pin an explicit arch (§4.7's naming table needs one regardless).
func detectArch(ctx context.Context, ctr container) (string, error) {
	res, err := ctr.ExecArgs(ctx, nil, "", "uname", "-m")
	if err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	if res.ExitCode != 0 {
		return "", errctx.Wrapf(ErrEmit, "uname -m: exit code %d: %s", res.ExitCode, res.Stderr)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// installedSize runs du -sb against dir inside ctr and returns its
// total byte size, used for deb's Installed-Size field (§4.7).
func installedSize(ctx context.Context, ctr container, dir string) (int64, error) {
	res, err := ctr.ExecArgs(ctx, nil, "", "du", "-sb", dir)
	if err != nil {
		return 0, errctx.Wrap(ErrEmit, err)
	}
	if res.ExitCode != 0 {
		return 0, errctx.Wrapf(ErrEmit, "du -sb %s: exit code %d: %s", dir, res.ExitCode, res.Stderr)
	}
	field, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\t")
	n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
	if err != nil {
		return 0, errctx.Wrapf(ErrEmit, "parsing du output %q: %w", res.Stdout, err)
	}
	return n, nil
}
