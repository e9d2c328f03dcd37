package recipe

import "testing"

func TestValidateStepsAcceptsWellFormedCommands(t *testing.T) {
	r := Recipe{
		Name: "ok",
		Build: &Phase{Steps: []Step{
			{Cmd: "make -j$(nproc)"},
			{Cmd: `for f in *.c; do echo "$f"; done`},
		}},
	}
	if err := ValidateSteps(r); err != nil {
		t.Fatalf("ValidateSteps: %v", err)
	}
}

func TestValidateStepsRejectsMalformedCommand(t *testing.T) {
	r := Recipe{
		Name: "bad",
		Build: &Phase{Steps: []Step{
			{Cmd: `echo "unterminated`},
		}},
	}
	if err := ValidateSteps(r); err == nil {
		t.Fatalf("expected error for unterminated quote")
	}
}

func TestValidateStepsRejectsEmptyCommand(t *testing.T) {
	r := Recipe{
		Name:      "empty",
		Configure: &Phase{Steps: []Step{{Cmd: "   "}}},
	}
	if err := ValidateSteps(r); err == nil {
		t.Fatalf("expected error for empty cmd")
	}
}
