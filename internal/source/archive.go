package source

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// archiveKind identifies one of the recognized archive suffixes of §4.3.
type archiveKind int

const (
	kindNone archiveKind = iota
	kindTar
	kindTarGz
	kindTarBz2
	kindTarXz
	kindZip
)

// detectArchive classifies name by its suffix (§4.3: ".tar", ".tar.gz"/
// ".tgz", ".tar.xz", ".tar.bz2", ".zip"; anything else is copied
// verbatim).
func detectArchive(name string) archiveKind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return kindTarGz
	case strings.HasSuffix(lower, ".tar.bz2"):
		return kindTarBz2
	case strings.HasSuffix(lower, ".tar.xz"):
		return kindTarXz
	case strings.HasSuffix(lower, ".tar"):
		return kindTar
	case strings.HasSuffix(lower, ".zip"):
		return kindZip
	default:
		return kindNone
	}
}

// tarReader wraps r in whatever decompression kind needs so the result
// is a plain tar stream, suitable for Container.CopyTo's "tar xf -"
// pipe without ever touching disk. kindTarXz and kindZip can't be
// streamed this way (no stdlib xz decompressor, and zip's central
// directory requires random access) and are handled separately by the
// caller.
func tarReader(kind archiveKind, r io.Reader) (io.Reader, error) {
	switch kind {
	case kindTar:
		return r, nil
	case kindTarGz:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errctx.Wrap(ErrSource, err)
		}
		return gz, nil
	case kindTarBz2:
		return bzip2.NewReader(r), nil
	default:
		return r, nil
	}
}

// extractZipToTar reads a zip archive from path and re-encodes its
// contents as a plain tar stream written to w, so the same CopyTo path
// used for every other archive kind can stage a zip's contents too.
func extractZipToTar(path string, w *tar.Writer) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return errctx.Wrap(ErrSource, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		hdr := &tar.Header{
			Name:    f.Name,
			Mode:    int64(f.Mode().Perm()),
			Size:    int64(f.UncompressedSize64),
			ModTime: f.Modified,
		}
		if f.FileInfo().IsDir() {
			hdr.Typeflag = tar.TypeDir
			hdr.Size = 0
		} else {
			hdr.Typeflag = tar.TypeReg
		}
		if err := w.WriteHeader(hdr); err != nil {
			return errctx.Wrap(ErrSource, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return errctx.Wrap(ErrSource, err)
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			return errctx.Wrap(ErrSource, err)
		}
	}
	return nil
}

// tarDir walks root and writes it as a plain tar stream to w, used to
// stage a local source directory into a container via CopyTo.
func tarDir(root string, w *tar.Writer) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := w.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}

// singleFileTar writes one regular file entry named name with contents
// r to w, used to stage a bare (non-archive) source or a patch file.
func singleFileTar(w *tar.Writer, name string, size int64, r io.Reader) error {
	if err := w.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: size, Typeflag: tar.TypeReg}); err != nil {
		return err
	}
	_, err := io.Copy(w, r)
	return err
}
