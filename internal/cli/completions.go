package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/pkgerd/internal/pkger"
)

// PrintCompletionsCmd implements 'pkger print-completions'. kong has
// no built-in completion generator (unlike the Cobra-based CLI this
// pack's other examples use), so this is a small in-repo template set
// rather than a library dependency (§6).
type PrintCompletionsCmd struct {
	Shell string `arg:"" enum:"bash,zsh,fish,powershell,elvish" help:"Shell to generate a completion script for."`
}

func (c *PrintCompletionsCmd) Run(ctx context.Context) error {
	script, ok := completionScripts[c.Shell]
	if !ok {
		return fmt.Errorf("unsupported shell %q", c.Shell)
	}
	fmt.Print(script)
	return nil
}

var completionScripts = map[string]string{
	"bash": `_pkger_completions() {
    COMPREPLY=($(compgen -W "build new remove list edit init clean-cache print-completions version" -- "${COMP_WORDS[COMP_CWORD]}"))
}
complete -F _pkger_completions ` + pkger.Name + `
`,
	"zsh": `#compdef ` + pkger.Name + `
_arguments '1: :(build new remove list edit init clean-cache print-completions version)'
`,
	"fish": `complete -c ` + pkger.Name + ` -f -a "build new remove list edit init clean-cache print-completions version"
`,
	"powershell": `Register-ArgumentCompleter -Native -CommandName ` + pkger.Name + ` -ScriptBlock {
    param($wordToComplete)
    "build","new","remove","list","edit","init","clean-cache","print-completions","version" |
        Where-Object { $_ -like "$wordToComplete*" }
}
`,
	"elvish": `set edit:completion:arg-completer[` + pkger.Name + `] = {|@args|
    put build new remove list edit init clean-cache print-completions version
}
`,
}
