package recipe

import (
	"strings"

	"github.com/cruciblehq/pkgerd/internal/errctx"
	"mvdan.cc/sh/v3/syntax"
)

// ValidateSteps parses every step command in the recipe's three phases
// with a POSIX shell parser, catching malformed scripts (unbalanced
// quotes, dangling heredocs, ...) before a build container is ever
// started. pkger does not execute steps through this parser — each step
// still runs via `sh -c` inside the build container (§4.5) — this is a
// static lint only, grounded on the same mvdan.cc/sh/v3 syntax package
// invowk-invowk uses to validate user-supplied shell fragments.
func ValidateSteps(r Recipe) error {
	for _, phase := range []struct {
		name string
		p    *Phase
	}{
		{"configure", r.Configure},
		{"build", r.Build},
		{"install", r.Install},
	} {
		if phase.p == nil {
			continue
		}
		for i, step := range phase.p.Steps {
			if strings.TrimSpace(step.Cmd) == "" {
				return errctx.Wrapf(ErrValidate, "%s: %s step %d: empty cmd", r.Name, phase.name, i)
			}
			parser := syntax.NewParser()
			if _, err := parser.Parse(strings.NewReader(step.Cmd), ""); err != nil {
				return errctx.Wrapf(ErrValidate, "%s: %s step %d: %w", r.Name, phase.name, i, err)
			}
		}
	}
	return nil
}
