package job

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/pkgerd/internal/errctx"
	"github.com/cruciblehq/pkgerd/internal/recipe"
	"github.com/cruciblehq/pkgerd/internal/vars"
)

// phaseName identifies which of the three script phases is executing,
// for StepFailed's {phase, index} pair (§4.5).
type phaseName string

const (
	phaseConfigure phaseName = "configure"
	phaseBuild     phaseName = "build"
	phaseInstall   phaseName = "install"
)

// runPhase executes every step of phase in order against ctr, skipping
// steps whose filter excludes this job's (image, version, target)
// (§4.5). cmd is resolved in vars.ModeCmd (undefined vars expand to
// empty, matching shell semantics); working_dir is resolved in
// vars.ModeField (bare $VAR left as literal text, undefined is an
// error), since an unresolved directory is far more likely a recipe
// typo than an intentional blank (§4.6).
func runPhase(ctx context.Context, ctr execer, name phaseName, phase *recipe.Phase, recipeName, image, version, target string, resolver *vars.Resolver, recipeEnv map[string]string) error {
	if phase == nil {
		return nil
	}

	state := newStepState(phase, recipeEnv)

	workdir := state.workdir
	if workdir != "" {
		resolved, err := resolver.Render(workdir, vars.ModeField)
		if err != nil {
			return errctx.Wrapf(ErrJob, "%s phase working_dir: %w", name, err)
		}
		workdir = resolved
	}

	env, err := state.environ(resolver)
	if err != nil {
		return errctx.Wrapf(ErrJob, "%s phase env: %w", name, err)
	}

	for i, step := range phase.Steps {
		if !step.Applies(image, version, target) {
			continue
		}

		cmd, err := resolver.Render(step.Cmd, vars.ModeCmd)
		if err != nil {
			return errctx.Wrapf(ErrStepFailed, "%s step %d: resolving cmd: %w", name, i, err)
		}

		slog.Debug("running step", "phase", name, "index", i, "shell", state.shell)
		logStepStart(recipeName, name, i, cmd)
		res, err := ctr.Exec(ctx, state.shell, cmd, env, workdir)
		if err != nil {
			return errctx.Wrapf(ErrJob, "%s step %d: %w", name, i, err)
		}
		if res.ExitCode != 0 {
			logStepFailed(recipeName, name, i, res.ExitCode)
			return errctx.Wrapf(ErrStepFailed, "%s step %d: exit code %d: %s", name, i, res.ExitCode, res.Stderr)
		}
		logStepDone(recipeName, name, i)
	}

	return nil
}
