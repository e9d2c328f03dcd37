package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/pkgerd/internal/cli"
	"github.com/cruciblehq/pkgerd/internal/logctx"
	"github.com/cruciblehq/pkgerd/internal/pkger"
)

// The entry point for the pkger CLI.
//
// Initializes logging, then executes the root command. If any error
// occurs during execution (including a build reporting a non-zero
// exit code, §4.6), it exits with a non-zero code.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", pkger.VersionString())
	slog.Debug("pkger is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// logger creates the default logger, its level seeded from build-time
// linker flags. It is reconfigured after flag parsing via cli.Execute.
func logger() *slog.Logger {
	handler := logctx.NewHandler()
	handler.SetLevel(logLevel())
	return slog.New(handler.WithGroup(pkger.Name))
}

func logLevel() slog.Level {
	if pkger.IsDebug() {
		return slog.LevelDebug
	}
	if pkger.IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
