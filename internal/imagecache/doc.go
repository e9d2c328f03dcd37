// Package imagecache implements C2: the content-addressed cache that
// lets pkger skip reinstalling a recipe's build dependencies into a
// base image when nothing relevant has changed since the last run
// (§4.2).
//
// A dependency fingerprint (dep_hash) is computed from the resolved
// build-dependency list, the skip_default_deps flag, and the image's
// Dockerfile contents. Provider.Prepare consults internal/state for a
// cache hit keyed by (image, target); on a miss it starts a container
// from the image's base, dispatches to the target's native package
// manager to install the dependency set, and commits the result as a
// new local image tag via internal/containerengine — adapting the
// snapshot-diff-then-export machinery cruxd's runtime.Export uses for
// producing a final package archive into a commit that instead stays
// inside containerd as a reusable tagged image.
package imagecache
