package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/cruciblehq/pkgerd/internal/logctx"
	"github.com/cruciblehq/pkgerd/internal/pkger"
)

// RootCmd is pkger's top-level command set (§6).
var RootCmd struct {
	Quiet   bool   `short:"q" help:"Suppress informational output."`
	Verbose bool   `short:"v" help:"Enable verbose output."`
	Debug   bool   `short:"d" help:"Enable debug output."`
	Config  string `short:"c" help:"Path to .pkger.yml." placeholder:"PATH" default:".pkger.yml"`

	Build             BuildCmd             `cmd:"" help:"Build packages from recipes."`
	New               NewCmd               `cmd:"" help:"Scaffold a new recipe."`
	Remove            RemoveCmd            `cmd:"" help:"Remove a recipe."`
	List              ListCmd              `cmd:"" help:"List recipes or emitted packages."`
	Edit              EditCmd              `cmd:"" help:"Open a recipe in $EDITOR."`
	Init              InitCmd              `cmd:"" help:"Scaffold a new .pkger.yml and recipes/images directories."`
	CleanCache        CleanCacheCmd        `cmd:"" name:"clean-cache" help:"Clear the dependency-install image cache."`
	PrintCompletions  PrintCompletionsCmd  `cmd:"" name:"print-completions" help:"Print a shell completion script."`
	Version           VersionCmd           `cmd:"" help:"Show version information."`
}

// Execute parses arguments, configures logging, and runs the selected
// subcommand. The context bound into kong for subcommands is cancelled
// on SIGINT/SIGTERM so a build in progress can stop between job steps
// (§4.6).
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(pkger.Name),
		kong.Description("Build native Linux packages from declarative recipes."),
		kong.UsageOnError(),
		kong.Vars{
			"version": pkger.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// configureLogger reconfigures the global logger from the parsed
// -q/-v/-d flags, the same post-parse handshake cruxd's root.go does
// against its own crex.Handler.
func configureLogger() {
	handler, ok := slog.Default().Handler().(*logctx.Handler)
	if !ok {
		return
	}

	debug := RootCmd.Debug || pkger.IsDebug()
	quiet := RootCmd.Quiet || pkger.IsQuiet()
	verbose := RootCmd.Verbose || pkger.IsVerbose()

	formatter := logctx.NewPrettyFormatter(isatty(os.Stderr))
	formatter.SetVerbose(verbose)

	switch {
	case debug:
		handler.SetLevel(slog.LevelDebug)
	case quiet:
		handler.SetLevel(slog.LevelWarn)
	default:
		handler.SetLevel(slog.LevelInfo)
	}

	handler.SetFormatter(formatter)
	handler.SetStream(os.Stderr)
	handler.Flush()
}

func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
