package source

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cruciblehq/pkgerd/internal/recipe"
)

type execCall struct {
	shell, command, workdir string
	args                    []string
}

type fakeTarget struct {
	copied   [][]byte
	destDirs []string
	execs    []execCall
	result   *execResult
	err      error
}

func (f *fakeTarget) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.copied = append(f.copied, data)
	f.destDirs = append(f.destDirs, destDir)
	return nil
}

func (f *fakeTarget) Exec(ctx context.Context, shell, command string, env []string, workdir string) (*execResult, error) {
	f.execs = append(f.execs, execCall{shell: shell, command: command, workdir: workdir})
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &execResult{ExitCode: 0}, nil
}

func (f *fakeTarget) ExecArgs(ctx context.Context, env []string, workdir string, args ...string) (*execResult, error) {
	f.execs = append(f.execs, execCall{workdir: workdir, args: args})
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &execResult{ExitCode: 0}, nil
}

func tarNames(t *testing.T, data []byte) []string {
	t.Helper()
	var names []string
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}
	return names
}

func TestStageBareFileSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "payload.bin"), []byte("contents"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := recipe.Recipe{Source: "payload.bin", Dir: dir}
	target := &fakeTarget{}

	if err := Stage(context.Background(), &fakeHTTPFetcher{}, target, r, "centos8", "/build"); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if len(target.copied) != 1 {
		t.Fatalf("expected one CopyTo call, got %d", len(target.copied))
	}
	names := tarNames(t, target.copied[0])
	if len(names) != 1 || names[0] != "payload.bin" {
		t.Fatalf("got tar names %v", names)
	}
}

func TestStageDirectorySource(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "main.c"), []byte("int main(){}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := recipe.Recipe{Source: "src", Dir: dir}
	target := &fakeTarget{}

	if err := Stage(context.Background(), &fakeHTTPFetcher{}, target, r, "centos8", "/build"); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	names := tarNames(t, target.copied[0])
	found := false
	for _, n := range names {
		if n == "main.c" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected main.c among %v", names)
	}
}

func TestStageGitClone(t *testing.T) {
	r := recipe.Recipe{Git: &recipe.GitRef{URL: "https://example.com/repo.git", Branch: "develop"}}
	target := &fakeTarget{}

	if err := Stage(context.Background(), &fakeHTTPFetcher{}, target, r, "centos8", "/build"); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if len(target.execs) != 1 {
		t.Fatalf("expected one exec call, got %d", len(target.execs))
	}
	call := target.execs[0]
	if call.shell != "/bin/sh" {
		t.Fatalf("expected shell clone invocation, got %q", call.shell)
	}
	if !contains(call.command, "develop") || !contains(call.command, "https://example.com/repo.git") {
		t.Fatalf("clone command missing branch/url: %s", call.command)
	}
}

func TestStageGitDefaultBranch(t *testing.T) {
	r := recipe.Recipe{Git: &recipe.GitRef{URL: "https://example.com/repo.git"}}
	target := &fakeTarget{}

	if err := Stage(context.Background(), &fakeHTTPFetcher{}, target, r, "centos8", "/build"); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if !contains(target.execs[0].command, "master") {
		t.Fatalf("expected default branch master in %s", target.execs[0].command)
	}
}

func TestStagePatchAppliesWhenImageMatches(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fix.diff"), []byte("diff --git a b"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := recipe.Recipe{Dir: dir, Patches: []recipe.Patch{{Source: "fix.diff", Images: []string{"centos8"}}}}
	target := &fakeTarget{}

	if err := Stage(context.Background(), &fakeHTTPFetcher{}, target, r, "centos8", "/build"); err != nil {
		t.Fatalf("Stage: %v", err)
	}

	foundPatchCall := false
	for _, c := range target.execs {
		if len(c.args) > 0 && c.args[0] == "patch" {
			foundPatchCall = true
		}
	}
	if !foundPatchCall {
		t.Fatalf("expected a patch invocation, got execs %v", target.execs)
	}
}

func TestStagePatchSkippedForNonMatchingImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fix.diff"), []byte("diff"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := recipe.Recipe{Dir: dir, Patches: []recipe.Patch{{Source: "fix.diff", Images: []string{"debian11"}}}}
	target := &fakeTarget{}

	if err := Stage(context.Background(), &fakeHTTPFetcher{}, target, r, "centos8", "/build"); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if len(target.copied) != 0 || len(target.execs) != 0 {
		t.Fatalf("expected no-op for non-matching image, got copies=%d execs=%v", len(target.copied), target.execs)
	}
}

func TestStagePatchFailureReturnsErrPatchFailed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fix.diff"), []byte("diff"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := recipe.Recipe{Dir: dir, Patches: []recipe.Patch{{Source: "fix.diff"}}}
	target := &fakeTarget{result: &execResult{ExitCode: 1, Stderr: "malformed patch"}}

	err := Stage(context.Background(), &fakeHTTPFetcher{}, target, r, "centos8", "/build")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrPatchFailed) {
		t.Fatalf("expected ErrPatchFailed, got %v", err)
	}
}

func contains(s, substr string) bool {
	return bytes.Contains([]byte(s), []byte(substr))
}
