package job

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type fakeContainer struct {
	fakeExecer
	mkdirs      []string
	copyFromCalls []struct {
		path     string
		excludes []string
	}
	writeBack []byte
	err       error
}

func (f *fakeContainer) MkdirAll(ctx context.Context, path string) error {
	f.mkdirs = append(f.mkdirs, path)
	return nil
}

func (f *fakeContainer) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	return nil
}

func (f *fakeContainer) CopyFrom(ctx context.Context, w io.Writer, path string) error {
	return f.CopyFromFiltered(ctx, w, path, nil)
}

func (f *fakeContainer) CopyFromFiltered(ctx context.Context, w io.Writer, path string, excludes []string) error {
	f.copyFromCalls = append(f.copyFromCalls, struct {
		path     string
		excludes []string
	}{path, excludes})
	if f.err != nil {
		return f.err
	}
	_, err := w.Write(f.writeBack)
	return err
}

func (f *fakeContainer) Destroy(ctx context.Context) {}

var _ container = (*fakeContainer)(nil)

func TestHarvestCopiesOutDirWithExcludes(t *testing.T) {
	dir := t.TempDir()
	tarPath := filepath.Join(dir, "out.tar")

	fc := &fakeContainer{writeBack: []byte("tar-bytes")}
	if err := harvest(context.Background(), fc, "/out", tarPath, []string{"*.log", "tmp/"}); err != nil {
		t.Fatalf("harvest: %v", err)
	}

	if len(fc.copyFromCalls) != 1 {
		t.Fatalf("expected 1 CopyFromFiltered call, got %d", len(fc.copyFromCalls))
	}
	call := fc.copyFromCalls[0]
	if call.path != "/out" {
		t.Errorf("path = %q want /out", call.path)
	}
	if len(call.excludes) != 2 || call.excludes[0] != "*.log" || call.excludes[1] != "tmp/" {
		t.Errorf("excludes = %v", call.excludes)
	}

	got, err := os.ReadFile(tarPath)
	if err != nil {
		t.Fatalf("reading harvested tar: %v", err)
	}
	if string(got) != "tar-bytes" {
		t.Errorf("tar contents = %q", got)
	}
}

func TestHarvestPropagatesCopyError(t *testing.T) {
	dir := t.TempDir()
	tarPath := filepath.Join(dir, "out.tar")

	fc := &fakeContainer{err: io.ErrUnexpectedEOF}
	if err := harvest(context.Background(), fc, "/out", tarPath, nil); err == nil {
		t.Fatalf("expected error from failing CopyFromFiltered")
	}
}

func TestHarvestNilExcludes(t *testing.T) {
	dir := t.TempDir()
	tarPath := filepath.Join(dir, "out.tar")

	fc := &fakeContainer{}
	if err := harvest(context.Background(), fc, "/out", tarPath, nil); err != nil {
		t.Fatalf("harvest: %v", err)
	}
	if fc.copyFromCalls[0].excludes != nil {
		t.Errorf("expected nil excludes passed through unchanged")
	}
}
