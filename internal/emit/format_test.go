package emit

import (
	"errors"
	"testing"

	"github.com/cruciblehq/pkgerd/internal/recipe"
)

func TestParseFormatKnownTargets(t *testing.T) {
	for _, target := range []string{"rpm", "deb", "pkg", "apk", "gzip"} {
		f, err := ParseFormat(target)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", target, err)
		}
		if string(f) != target {
			t.Fatalf("ParseFormat(%q) = %q", target, f)
		}
	}
}

func TestParseFormatUnknown(t *testing.T) {
	_, err := ParseFormat("msi")
	if !errors.Is(err, ErrEmit) {
		t.Fatalf("expected ErrEmit, got %v", err)
	}
}

func TestFormatSignable(t *testing.T) {
	cases := map[Format]bool{
		FormatRPM:  true,
		FormatDeb:  true,
		FormatPkg:  false,
		FormatApk:  false,
		FormatGzip: false,
	}
	for f, want := range cases {
		if got := f.Signable(); got != want {
			t.Errorf("%s.Signable() = %v, want %v", f, got, want)
		}
	}
}

func TestOutputNameRPM(t *testing.T) {
	r := recipe.Recipe{Name: "htop", Release: "1"}
	got := FormatRPM.OutputName(r, "3.3.0", "x86_64")
	want := "htop-3.3.0-1.x86_64.rpm"
	if got != want {
		t.Fatalf("OutputName = %q, want %q", got, want)
	}
}

func TestOutputNameDebRemapsNameAndArch(t *testing.T) {
	r := recipe.Recipe{Name: "lib_foo", Release: "2"}
	got := FormatDeb.OutputName(r, "1.0", "x86_64")
	want := "lib-foo-1.0-2.amd64.deb"
	if got != want {
		t.Fatalf("OutputName = %q, want %q", got, want)
	}
}

func TestOutputNamePkg(t *testing.T) {
	r := recipe.Recipe{Name: "htop", Release: "1"}
	got := FormatPkg.OutputName(r, "3.3.0", "x86_64")
	want := "htop-3.3.0-1-x86_64.pkg.tar.zst"
	if got != want {
		t.Fatalf("OutputName = %q, want %q", got, want)
	}
}

func TestOutputNameApk(t *testing.T) {
	r := recipe.Recipe{Name: "htop", Release: "1"}
	got := FormatApk.OutputName(r, "3.3.0", "x86_64")
	want := "htop-3.3.0-1.apk"
	if got != want {
		t.Fatalf("OutputName = %q, want %q", got, want)
	}
}

func TestOutputNameGzipIgnoresArch(t *testing.T) {
	r := recipe.Recipe{Name: "htop", Release: "1"}
	got := FormatGzip.OutputName(r, "3.3.0", "")
	want := "htop-3.3.0-1.tar.gz"
	if got != want {
		t.Fatalf("OutputName = %q, want %q", got, want)
	}
}

func TestDebArchRemap(t *testing.T) {
	cases := map[string]string{
		"x86_64":  "amd64",
		"aarch64": "arm64",
		"armv7hl": "armhf",
		"i686":    "i386",
		"riscv64": "riscv64",
	}
	for in, want := range cases {
		if got := debArch(in); got != want {
			t.Errorf("debArch(%q) = %q, want %q", in, got, want)
		}
	}
}
