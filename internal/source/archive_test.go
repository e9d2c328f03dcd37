package source

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create entry: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
}

func TestDetectArchive(t *testing.T) {
	cases := map[string]archiveKind{
		"foo.tar":     kindTar,
		"foo.tar.gz":  kindTarGz,
		"foo.tgz":     kindTarGz,
		"foo.tar.bz2": kindTarBz2,
		"foo.tar.xz":  kindTarXz,
		"foo.zip":     kindZip,
		"foo.patch":   kindNone,
		"README":      kindNone,
	}
	for name, want := range cases {
		if got := detectArchive(name); got != want {
			t.Errorf("detectArchive(%q) = %v want %v", name, got, want)
		}
	}
}

func TestSingleFileTarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	content := "hello world"
	if err := singleFileTar(tw, "payload.txt", int64(len(content)), strings.NewReader(content)); err != nil {
		t.Fatalf("singleFileTar: %v", err)
	}
	tw.Close()

	tr := tar.NewReader(&buf)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("tar.Next: %v", err)
	}
	if hdr.Name != "payload.txt" {
		t.Fatalf("got name %q", hdr.Name)
	}
	got := make([]byte, hdr.Size)
	if _, err := io.ReadFull(tr, got); err != nil {
		t.Fatalf("reading tar body: %v", err)
	}
	if string(got) != content {
		t.Fatalf("got body %q want %q", got, content)
	}
}

func TestTarDirWalksRecursively(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "f.txt"), []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tarDir(dir, tw); err != nil {
		t.Fatalf("tarDir: %v", err)
	}
	tw.Close()

	var names []string
	tr := tar.NewReader(&buf)
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}

	found := false
	for _, n := range names {
		if n == "sub/f.txt" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sub/f.txt among %v", names)
	}
}

func TestExtractZipToTar(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "archive.zip")
	writeTestZip(t, zipPath, map[string]string{"a.txt": "aaa", "nested/b.txt": "bbb"})

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := extractZipToTar(zipPath, tw); err != nil {
		t.Fatalf("extractZipToTar: %v", err)
	}
	tw.Close()

	seen := map[string]string{}
	tr := tar.NewReader(&buf)
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		b := make([]byte, hdr.Size)
		tr.Read(b)
		seen[hdr.Name] = string(b)
	}

	if seen["a.txt"] != "aaa" || seen["nested/b.txt"] != "bbb" {
		t.Fatalf("unexpected zip->tar contents: %v", seen)
	}
}
