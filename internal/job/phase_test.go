package job

import (
	"context"
	"errors"
	"testing"

	"github.com/cruciblehq/pkgerd/internal/containerengine"
	"github.com/cruciblehq/pkgerd/internal/recipe"
	"github.com/cruciblehq/pkgerd/internal/vars"
)

type fakeExecer struct {
	calls  []string
	shells []string
	env    [][]string
	result *containerengine.ExecResult
	err    error
}

func (f *fakeExecer) Exec(ctx context.Context, shell, command string, env []string, workdir string) (*containerengine.ExecResult, error) {
	f.calls = append(f.calls, command)
	f.shells = append(f.shells, shell)
	f.env = append(f.env, env)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &containerengine.ExecResult{ExitCode: 0}, nil
}

func (f *fakeExecer) ExecArgs(ctx context.Context, env []string, workdir string, args ...string) (*containerengine.ExecResult, error) {
	return &containerengine.ExecResult{ExitCode: 0}, nil
}

func TestRunPhaseNilIsNoop(t *testing.T) {
	f := &fakeExecer{}
	resolver := vars.NewResolver(nil, nil)
	if err := runPhase(context.Background(), f, phaseBuild, nil, "htop", "centos8", "1.0", "rpm", resolver, nil); err != nil {
		t.Fatalf("runPhase: %v", err)
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no exec calls for nil phase")
	}
}

func TestRunPhaseRunsApplicableSteps(t *testing.T) {
	phase := &recipe.Phase{
		Steps: []recipe.Step{
			{Cmd: "make"},
			{Cmd: "make rpm-only", RPM: boolPtr(true)},
			{Cmd: "make deb-only", Deb: boolPtr(true)},
		},
	}
	f := &fakeExecer{}
	resolver := vars.NewResolver(nil, nil)
	if err := runPhase(context.Background(), f, phaseBuild, phase, "htop", "centos8", "1.0", "rpm", resolver, nil); err != nil {
		t.Fatalf("runPhase: %v", err)
	}
	if len(f.calls) != 2 {
		t.Fatalf("expected 2 applicable steps, got %v", f.calls)
	}
	if f.calls[0] != "make" || f.calls[1] != "make rpm-only" {
		t.Fatalf("got calls %v", f.calls)
	}
}

func TestRunPhaseResolvesVars(t *testing.T) {
	phase := &recipe.Phase{Steps: []recipe.Step{{Cmd: "echo $NAME"}}}
	f := &fakeExecer{}
	resolver := vars.NewResolver(map[string]string{"NAME": "htop"}, nil)
	if err := runPhase(context.Background(), f, phaseBuild, phase, "htop", "centos8", "1.0", "rpm", resolver, nil); err != nil {
		t.Fatalf("runPhase: %v", err)
	}
	if f.calls[0] != "echo htop" {
		t.Fatalf("got %q", f.calls[0])
	}
}

func TestRunPhaseUsesPhaseShell(t *testing.T) {
	phase := &recipe.Phase{Shell: "/bin/bash", Steps: []recipe.Step{{Cmd: "true"}}}
	f := &fakeExecer{}
	resolver := vars.NewResolver(nil, nil)
	if err := runPhase(context.Background(), f, phaseBuild, phase, "htop", "centos8", "1.0", "rpm", resolver, nil); err != nil {
		t.Fatalf("runPhase: %v", err)
	}
	if f.shells[0] != "/bin/bash" {
		t.Fatalf("got shell %q", f.shells[0])
	}
}

func TestRunPhaseNonZeroExitIsStepFailed(t *testing.T) {
	phase := &recipe.Phase{Steps: []recipe.Step{{Cmd: "false"}}}
	f := &fakeExecer{result: &containerengine.ExecResult{ExitCode: 1, Stderr: "nope"}}
	resolver := vars.NewResolver(nil, nil)
	err := runPhase(context.Background(), f, phaseBuild, phase, "htop", "centos8", "1.0", "rpm", resolver, nil)
	if !errors.Is(err, ErrStepFailed) {
		t.Fatalf("expected ErrStepFailed, got %v", err)
	}
}

func TestRunPhaseWorkdirRequiresBraces(t *testing.T) {
	phase := &recipe.Phase{WorkingDir: "$UNDEFINED", Steps: []recipe.Step{{Cmd: "true"}}}
	f := &fakeExecer{}
	resolver := vars.NewResolver(nil, nil)
	if err := runPhase(context.Background(), f, phaseBuild, phase, "htop", "centos8", "1.0", "rpm", resolver, nil); err != nil {
		t.Fatalf("bare $VAR in working_dir should pass through literally: %v", err)
	}
}

func TestRunPhaseUndefinedBracedWorkdirErrors(t *testing.T) {
	phase := &recipe.Phase{WorkingDir: "${UNDEFINED}", Steps: []recipe.Step{{Cmd: "true"}}}
	f := &fakeExecer{}
	resolver := vars.NewResolver(nil, nil)
	if err := runPhase(context.Background(), f, phaseBuild, phase, "htop", "centos8", "1.0", "rpm", resolver, nil); err == nil {
		t.Fatalf("expected error for undefined braced working_dir")
	}
}

func boolPtr(b bool) *bool { return &b }
