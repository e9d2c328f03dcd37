package job

import (
	"maps"

	"github.com/cruciblehq/pkgerd/internal/recipe"
	"github.com/cruciblehq/pkgerd/internal/vars"
)

const defaultShell = "/bin/sh"

// stepState carries the shell/working_dir/env modifiers that accumulate
// across a phase's steps (§3, §4.5), adapted from cruxd's
// internal/build/stepstate.go. cruxd's steps can themselves carry these
// as standalone modifier entries in a nested platform group; pkger's
// recipe.Phase instead sets shell/working_dir once for the whole phase
// and layers the recipe's own env map underneath, so stepState here
// starts pre-seeded from the phase rather than mutating as steps run.
type stepState struct {
	shell   string
	workdir string
	env     map[string]string
}

func newStepState(phase *recipe.Phase, recipeEnv map[string]string) *stepState {
	s := &stepState{shell: defaultShell, env: make(map[string]string, len(recipeEnv))}
	maps.Copy(s.env, recipeEnv)
	if phase != nil {
		if phase.Shell != "" {
			s.shell = phase.Shell
		}
		s.workdir = phase.WorkingDir
	}
	return s
}

// environ renders the state's env map as resolved "key=value" pairs,
// running every value through r in ModeCmd (§4.6: env entries behave
// like shell assignments, silently dropping undefined references).
func (s *stepState) environ(r *vars.Resolver) ([]string, error) {
	out := make([]string, 0, len(s.env))
	for k, v := range s.env {
		rendered, err := r.Render(v, vars.ModeCmd)
		if err != nil {
			return nil, err
		}
		out = append(out, k+"="+rendered)
	}
	return out, nil
}
