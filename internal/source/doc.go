// Package source implements pkger's source & patch fetcher (§4.3).
//
// The contract says fetch "executes inside the target container, so
// tooling availability matches the image" — true for git clones and
// patch application, both of which this package runs via container
// exec against binaries the dependency-install cache (internal/imagecache)
// already guaranteed are present (git, tar, patch). Plain HTTP/local
// source retrieval is different: it has nothing to do with the image's
// tooling, only with the network, and needs the same retry/circuit-break/
// DNS-cache discipline a package registry proxy would want. That logic
// is ported from git-pkgs-registries' fetch.Fetcher and
// fetch.CircuitBreakerFetcher (github.com/cenk/backoff for the
// per-breaker exponential delay, github.com/rubyist/circuitbreaker for
// the breaker itself, github.com/rs/dnscache for the dialer), so this
// package downloads on the host and then streams the result into the
// container's $BLD_DIR via Container.CopyTo's "tar xf -" pipe, rather
// than shelling out to curl inside the container for every source URL.
//
// Archive extraction follows the same host-first approach where Go's
// standard library covers the format (tar, tar.gz/.tgz, tar.bz2, zip);
// CopyTo already speaks a raw tar stream, so tar-family archives are
// decompressed in a reader chain and piped straight across without ever
// touching disk twice. tar.xz has no standard-library decompressor and
// none of the example repos pull one in, so it is copied into the
// container as-is and extracted there with the container's own tar,
// which in every target image links against liblzma.
package source
