package vars

import (
	"errors"
	"testing"
)

func TestResolverCmdModeUndefinedExpandsEmpty(t *testing.T) {
	r := NewResolver(nil, map[string]string{"PKGER_BLD_DIR": "/tmp/test"})
	r.osLookup = func(string) (string, bool) { return "", false }

	got, err := r.Render("cd $PKGER_BLD_DIR/${DOESNT_EXIST}/done", ModeCmd)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "cd /tmp/test//done"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolverFieldModeRequiresBraces(t *testing.T) {
	r := NewResolver(map[string]string{"RECIPE": "pkger-test"}, nil)
	r.osLookup = func(string) (string, bool) { return "", false }

	got, err := r.Render("$RECIPE/${RECIPE}", ModeField)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "$RECIPE/pkger-test"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolverFieldModeUndefinedIsError(t *testing.T) {
	r := NewResolver(nil, nil)
	r.osLookup = func(string) (string, bool) { return "", false }

	_, err := r.Render("${MISSING}", ModeField)
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("got %v, want *ResolveError", err)
	}
	if resolveErr.Name != "MISSING" {
		t.Fatalf("Name = %q, want MISSING", resolveErr.Name)
	}
}

func TestResolverPrecedenceRecipeOverBuildOverProcess(t *testing.T) {
	r := NewResolver(
		map[string]string{"NAME": "from-recipe"},
		map[string]string{"NAME": "from-build", "OTHER": "from-build"},
	)
	r.osLookup = func(k string) (string, bool) {
		if k == "NAME" {
			return "from-process", true
		}
		return "", false
	}

	got, err := r.Render("${NAME}/${OTHER}", ModeField)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "from-recipe/from-build" {
		t.Fatalf("got %q", got)
	}
}

func TestResolverProcessEnvFallback(t *testing.T) {
	r := NewResolver(nil, nil)
	r.osLookup = func(k string) (string, bool) {
		if k == "HOME" {
			return "/root", true
		}
		return "", false
	}

	got, err := r.Render("${HOME}", ModeField)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "/root" {
		t.Fatalf("got %q", got)
	}
}
