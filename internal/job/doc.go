// Package job implements the build job state machine (§4.5): the
// linear Created→ImageReady→ContainerUp→Fetched→Configured→Built→
// Installed→Harvested→Packaged→Done progression, each transition
// driving exactly one of image cache resolution, container creation,
// source fetch, a script phase, harvest, or package emission.
//
// The step-execution core (stepState carrying shell/workdir/env
// modifiers across a phase's steps, operations resolved against that
// state) is adapted from cruxd's internal/build/step.go and
// stepstate.go: cruxd's manifest.Step carries arbitrary nested
// platform groups and run/copy operations against OCI build stages,
// while pkger's recipe.Step is flat (§3) and is filtered by
// recipe.Step.Applies (image/version/target) rather than by a
// platform string, but the "permanent modifiers vs. scoped overlay"
// split and its resolve-without-mutating contract carry over exactly.
package job
