package emit

import (
	"fmt"
	"strings"

	"github.com/cruciblehq/pkgerd/internal/errctx"
	"github.com/cruciblehq/pkgerd/internal/recipe"
)

// Format identifies one of the five emission targets (§4.7's table).
type Format string

const (
	FormatRPM  Format = "rpm"
	FormatDeb  Format = "deb"
	FormatPkg  Format = "pkg"
	FormatApk  Format = "apk"
	FormatGzip Format = "gzip"
)

// ParseFormat validates target against the five known formats.
func ParseFormat(target string) (Format, error) {
	switch Format(target) {
	case FormatRPM, FormatDeb, FormatPkg, FormatApk, FormatGzip:
		return Format(target), nil
	default:
		return "", errctx.Wrapf(ErrEmit, "unknown target %q", target)
	}
}

// Signable reports whether f participates in GPG signing (§4.7: rpm
// and deb only).
func (f Format) Signable() bool {
	return f == FormatRPM || f == FormatDeb
}

// OutputName computes the emitted filename per §4.7's naming table.
func (f Format) OutputName(r recipe.Recipe, version, arch string) string {
	switch f {
	case FormatRPM:
		return fmt.Sprintf("%s-%s-%s.%s.rpm", r.Name, version, r.Release, arch)
	case FormatDeb:
		return fmt.Sprintf("%s-%s-%s.%s.deb", debName(r.Name), version, r.Release, debArch(arch))
	case FormatPkg:
		return fmt.Sprintf("%s-%s-%s-%s.pkg.tar.zst", r.Name, version, r.Release, arch)
	case FormatApk:
		return fmt.Sprintf("%s-%s-%s.apk", r.Name, version, r.Release)
	case FormatGzip:
		return fmt.Sprintf("%s-%s-%s.tar.gz", r.Name, version, r.Release)
	default:
		return fmt.Sprintf("%s-%s-%s", r.Name, version, r.Release)
	}
}

// debName applies deb's underscore→hyphen name remap (§4.7).
func debName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// debArch remaps an RPM-style arch name to Debian's naming (§4.7:
// "arch remapped x86_64→amd64").
func debArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	case "armv7hl", "armhf":
		return "armhf"
	case "i386", "i686":
		return "i386"
	default:
		return arch
	}
}
