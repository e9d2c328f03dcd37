// Package state implements pkger's persistent image-state cache (C9): a
// schema-versioned, atomically-written JSON file recording which images
// have already had their dependencies installed, so a rerun can skip
// rebuilding a container image whose recipe, dependency set, and
// Dockerfile contents are unchanged (§4.2).
//
// The on-disk shape is JSON rather than the CBOR the reference
// implementation's image state used (see state.rs in the retrieved
// material) — pkger already leans on gopkg.in/yaml.v3 for every other
// on-disk format and there is no other consumer needing a binary
// encoding, so staying text-based keeps the cache file inspectable with
// plain tools. The load/save/dirty-tracking shape — skip writing back
// when nothing actually changed — is carried over unchanged.
package state
