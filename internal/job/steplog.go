package job

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// stepLogger renders per-step build progress as human-friendly lines,
// distinct from the daemon-level slog stream (§4.5): one line per step
// start/pass/fail, prefixed by recipe name, so `pkger build` output
// reads like a build log rather than an ops log. Grounded on
// invowk-invowk's sshserver.Server, which attaches its own
// log.NewWithOptions logger alongside the process-wide slog handler.
var (
	stepLoggerOnce sync.Once
	stepLoggerInst *log.Logger
)

func stepLogger() *log.Logger {
	stepLoggerOnce.Do(func() {
		stepLoggerInst = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "pkger",
		})
	})
	return stepLoggerInst
}

func logStepStart(recipeName string, phase phaseName, index int, cmd string) {
	stepLogger().Info("running step", "recipe", recipeName, "phase", string(phase), "index", index, "cmd", cmd)
}

func logStepDone(recipeName string, phase phaseName, index int) {
	stepLogger().Debug("step ok", "recipe", recipeName, "phase", string(phase), "index", index)
}

func logStepFailed(recipeName string, phase phaseName, index int, exitCode int) {
	stepLogger().Error("step failed", "recipe", recipeName, "phase", string(phase), "index", index, "exit", exitCode)
}
