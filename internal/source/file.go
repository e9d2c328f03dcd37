package source

import (
	"os"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errctx.Wrap(ErrSource, err)
	}
	return f, nil
}

func fileSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, errctx.Wrap(ErrSource, err)
	}
	return info.Size(), nil
}
