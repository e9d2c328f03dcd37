// Package cli implements pkger's command-line surface (§6): kong
// subcommands for building packages, scaffolding and editing recipes,
// listing recipes/output, and maintenance commands.
//
// The shape — a RootCmd struct with `cmd:""`-tagged subcommand fields,
// kong.Vars injecting the version string, kong.BindTo wiring a
// SIGINT/SIGTERM-cancelled context into every Run method, and a
// post-parse configureLogger step — is carried over from cruxd's own
// internal/cli almost unchanged; only the subcommand set differs,
// since cruxd's daemon has one real subcommand (start) where pkger is
// a batch-build CLI with several.
package cli
