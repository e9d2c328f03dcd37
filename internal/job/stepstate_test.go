package job

import (
	"testing"

	"github.com/cruciblehq/pkgerd/internal/recipe"
	"github.com/cruciblehq/pkgerd/internal/vars"
)

func TestNewStepStateDefaultsShell(t *testing.T) {
	s := newStepState(nil, nil)
	if s.shell != defaultShell {
		t.Fatalf("shell = %q want %q", s.shell, defaultShell)
	}
	if s.workdir != "" {
		t.Fatalf("expected empty workdir, got %q", s.workdir)
	}
}

func TestNewStepStateUsesPhaseShellAndWorkdir(t *testing.T) {
	phase := &recipe.Phase{Shell: "/bin/bash", WorkingDir: "/src"}
	s := newStepState(phase, nil)
	if s.shell != "/bin/bash" {
		t.Fatalf("shell = %q", s.shell)
	}
	if s.workdir != "/src" {
		t.Fatalf("workdir = %q", s.workdir)
	}
}

func TestNewStepStateCopiesRecipeEnv(t *testing.T) {
	recipeEnv := map[string]string{"FOO": "bar"}
	s := newStepState(nil, recipeEnv)
	s.env["BAZ"] = "qux"
	if _, ok := recipeEnv["BAZ"]; ok {
		t.Fatalf("mutating stepState.env must not leak back into recipeEnv")
	}
	if s.env["FOO"] != "bar" {
		t.Fatalf("expected FOO copied from recipeEnv")
	}
}

func TestStepStateEnvironRendersValues(t *testing.T) {
	s := newStepState(nil, map[string]string{"NAME": "${TARGET}-pkg"})
	resolver := vars.NewResolver(nil, map[string]string{"TARGET": "rpm"})
	env, err := s.environ(resolver)
	if err != nil {
		t.Fatalf("environ: %v", err)
	}
	if len(env) != 1 || env[0] != "NAME=rpm-pkg" {
		t.Fatalf("got %v", env)
	}
}

func TestStepStateEnvironUndefinedExpandsEmpty(t *testing.T) {
	s := newStepState(nil, map[string]string{"NAME": "$MISSING"})
	resolver := vars.NewResolver(nil, nil)
	env, err := s.environ(resolver)
	if err != nil {
		t.Fatalf("environ: %v", err)
	}
	if env[0] != "NAME=" {
		t.Fatalf("got %v", env)
	}
}
