package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// httpFetcher is the subset of BreakingFetcher that resolveEntry needs,
// narrowed so tests can supply a fake without a real network.
type httpFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// resolveEntry locates one source or patch entry on the host and
// returns a local filesystem path to it, per §4.3's three forms:
// http(s) URL (downloaded to a temp file), absolute local path (used
// directly), or relative local path (resolved against recipeDir). The
// returned cleanup removes any temp file resolveEntry created; callers
// must always invoke it.
func resolveEntry(ctx context.Context, f httpFetcher, entry, recipeDir string) (path string, isDir bool, cleanup func(), err error) {
	noop := func() {}

	switch {
	case strings.HasPrefix(entry, "http://"), strings.HasPrefix(entry, "https://"):
		body, err := f.Fetch(ctx, entry)
		if err != nil {
			return "", false, noop, err
		}
		defer body.Close()

		tmp, err := os.CreateTemp("", "pkger-source-*"+filepath.Ext(entry))
		if err != nil {
			return "", false, noop, errctx.Wrap(ErrSource, err)
		}
		if _, err := io.Copy(tmp, body); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", false, noop, errctx.Wrap(ErrSource, err)
		}
		tmp.Close()
		return tmp.Name(), false, func() { os.Remove(tmp.Name()) }, nil

	case filepath.IsAbs(entry):
		return statEntry(entry)

	default:
		return statEntry(filepath.Join(recipeDir, entry))
	}
}

func statEntry(path string) (string, bool, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false, func() {}, errctx.Wrap(ErrSource, err)
	}
	return path, info.IsDir(), func() {}, nil
}

// entryBaseName returns the name used for archive-suffix detection:
// the URL's path for an http(s) entry, else the path's own base name.
func entryBaseName(entry string) string {
	if strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://") {
		if idx := strings.IndexAny(entry, "?#"); idx >= 0 {
			entry = entry[:idx]
		}
	}
	return filepath.Base(entry)
}
