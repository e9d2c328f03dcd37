// Package containerengine implements C4: the ephemeral build-container
// session that every job drives through its ContainerUp..Harvested
// states (§4.5).
//
// It is grounded on cruxd's own containerd/v2 wrapper (internal/runtime
// in the retrieved reference material) almost verbatim for the
// low-level primitives — pull/tag/unpack, container create/start, exec,
// tar-pipe copy — since that wrapper already implements exactly what a
// build orchestration engine needs from a container runtime. Two things
// are pkger-specific and have no cruxd analog:
//
//   - Pull, which resolves and fetches a named image straight from a
//     registry (recipes reference base images by name, e.g.
//     "rockylinux:9", not pre-built local archives).
//   - Session, a cancellation-aware wrapper around Container that
//     implements the engine's SIGTERM-then-SIGKILL teardown contract
//     (§4.5) and the cooperative cancellation check the scheduler polls
//     between build steps.
package containerengine
