// Package emit implements the package emitter (C7, §4.7): format
// dispatch, descriptor generation, and the native packaging tool
// invocation that turns a job's harvested install tree into a
// distribution-native artifact.
//
// cruxd never shells out to a host or in-container packaging tool —
// its job ends at image/container lifecycle management, one layer
// below where package formats live — so this package's exec-a-native-
// tool shape is grounded instead on the build orchestrators in the
// wider retrieved pack (sauzerOS-hokuto's build.go, gitpod-io-leeway's
// build.go, distr1-distri's build.go), all of which drive rpmbuild/
// dpkg-deb/makepkg-style tools via os/exec with string-built argument
// lists rather than an encoding library: no Go package in the
// ecosystem re-implements RPM/DEB/PKG/APK's binary formats faithfully
// enough to replace the native tools, and §1 explicitly scopes their
// internal encoding out.
//
// rpmbuild, dpkg-deb, makepkg, and abuild all need to run against the
// exact userland of the target image (the spec file or control file
// references tools the container already has installed — rpm, dpkg,
// pacman, apk — that a build host is not guaranteed to carry for every
// target in a multi-distro matrix). So descriptor files are staged
// into the still-live build container via Container.CopyTo, the
// native tool runs there via Container.ExecArgs, and only the final
// artifact is copied back out — the harvested install tree itself
// never leaves the container until it's packaged. Only the gzip format
// (a plain tar, no distro-native tool involved) is assembled purely on
// the host, directly from the harvest's own tar stream.
package emit
