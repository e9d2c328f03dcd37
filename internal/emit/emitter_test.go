package emit

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cruciblehq/pkgerd/internal/containerengine"
	"github.com/cruciblehq/pkgerd/internal/job"
	"github.com/cruciblehq/pkgerd/internal/recipe"
)

func testSpec() buildSpec {
	return buildSpec{
		Recipe:  recipe.Recipe{Name: "htop", Release: "1", Description: "viewer", License: "GPL-2.0"},
		Image:   "rockylinux9",
		Version: "3.3.0",
		OutDir:  "/pkger/out",
		Arch:    "x86_64",
	}
}

func TestBuildRPMReturnsExpectedArtifactPath(t *testing.T) {
	fc := &fakeContainer{execResults: map[string]*containerengine.ExecResult{
		"du":       {ExitCode: 0, Stdout: "100\t/pkger/out\n"},
		"rpmbuild": {ExitCode: 0},
	}}
	path, err := buildRPM(context.Background(), fc, testSpec())
	if err != nil {
		t.Fatalf("buildRPM: %v", err)
	}
	want := "/tmp/pkger-emit/rpmbuild/RPMS/x86_64/htop-3.3.0-1.x86_64.rpm"
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	if len(fc.copiedTo) == 0 {
		t.Fatal("expected spec file to be staged")
	}
}

func TestBuildRPMPropagatesNonZeroExit(t *testing.T) {
	fc := &fakeContainer{execResults: map[string]*containerengine.ExecResult{
		"du":       {ExitCode: 0, Stdout: "100\t/pkger/out\n"},
		"rpmbuild": {ExitCode: 1, Stderr: "bad spec"},
	}}
	if _, err := buildRPM(context.Background(), fc, testSpec()); err == nil {
		t.Fatal("expected error on rpmbuild failure")
	}
}

func TestBuildDebStagesControlUnderOutDirDEBIAN(t *testing.T) {
	fc := &fakeContainer{execResults: map[string]*containerengine.ExecResult{
		"du":       {ExitCode: 0, Stdout: "100\t/pkger/out\n"},
		"dpkg-deb": {ExitCode: 0},
	}}
	path, err := buildDeb(context.Background(), fc, testSpec())
	if err != nil {
		t.Fatalf("buildDeb: %v", err)
	}
	if path != "/tmp/pkger-emit/output.deb" {
		t.Fatalf("path = %q", path)
	}
	found := false
	for _, c := range fc.copiedTo {
		if c.destDir == "/pkger/out/DEBIAN" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected control staged under /pkger/out/DEBIAN, got %+v", fc.copiedTo)
	}
}

func TestBuildPkgStagesInstallScriptletWhenPresent(t *testing.T) {
	spec := testSpec()
	spec.Recipe.Pkg.Install = "post_install() { :; }"
	fc := &fakeContainer{execResults: map[string]*containerengine.ExecResult{
		"makepkg": {ExitCode: 0},
	}}
	path, err := buildPkg(context.Background(), fc, spec)
	if err != nil {
		t.Fatalf("buildPkg: %v", err)
	}
	if path != "/tmp/pkger-emit/pkg/htop-3.3.0-1-x86_64.pkg.tar.zst" {
		t.Fatalf("path = %q", path)
	}
	var sawInstall bool
	for _, c := range fc.copiedTo {
		for _, f := range c.files {
			if f == "htop.install" {
				sawInstall = true
			}
		}
	}
	if !sawInstall {
		t.Fatal("expected htop.install to be staged")
	}
}

func TestBuildApkPropagatesNonZeroExit(t *testing.T) {
	fc := &fakeContainer{execResults: map[string]*containerengine.ExecResult{
		"abuild": {ExitCode: 1, Stderr: "missing key"},
	}}
	if _, err := buildApk(context.Background(), fc, testSpec()); err == nil {
		t.Fatal("expected error on abuild failure")
	}
}

func TestEmitGzipCompressesHarvestedTar(t *testing.T) {
	dir := t.TempDir()
	tarPath := filepath.Join(dir, "htop.tar")
	writeTestTar(t, tarPath)

	r := recipe.Recipe{Name: "htop", Release: "1"}
	destPath, err := emitGzip(r, "3.3.0", tarPath, dir)
	if err != nil {
		t.Fatalf("emitGzip: %v", err)
	}
	if filepath.Base(destPath) != "htop-3.3.0-1.tar.gz" {
		t.Fatalf("destPath = %q", destPath)
	}

	f, err := os.Open(destPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer gz.Close()
	if _, err := io.ReadAll(gz); err != nil {
		t.Fatalf("reading decompressed content: %v", err)
	}
}

func TestEmitReturnsErrorWithoutLiveContainerForNonGzip(t *testing.T) {
	dir := t.TempDir()
	e := New(Config{OutputDir: dir})
	r := recipe.Recipe{Name: "htop", Release: "1"}
	j := job.New(r, recipe.Image{Name: "rockylinux9"}, "3.3.0", "rpm", "/build", "/pkger/out")

	if _, err := e.Emit(context.Background(), j, ""); err == nil {
		t.Fatal("expected error when job has no live container")
	}
}

func writeTestTar(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	body := []byte("#!/bin/sh\necho hi\n")
	if err := w.WriteHeader(&tar.Header{Name: "usr/bin/htop", Mode: 0o755, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	if _, err := w.Write(body); err != nil {
		t.Fatalf("tar write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		t.Fatalf("write tar file: %v", err)
	}
}
