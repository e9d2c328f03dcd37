package emit

import (
	"strings"
	"text/template"

	"github.com/cruciblehq/pkgerd/internal/recipe"
)

// descriptorData is the common view of a recipe every format's
// template renders from.
type descriptorData struct {
	Name         string
	Version      string
	Release      string
	Epoch        string
	Description  string
	License      string
	Maintainer   string
	URL          string
	Arch         string
	Group        string
	Depends      []string
	BuildDepends []string
	Provides     []string
	Conflicts    []string
	InstalledKB  int64

	Obsoletes    []string // rpm
	PreDepends   []string // deb
	OptDepends   []string // pkg
	CheckDepends []string // apk

	Pre, Post, Preun, Postun string // rpm scriptlets
	Install                  string // pkg .install scriptlet contents
	OutDir                   string // in-container install tree package() copies from
}

func newDescriptorData(r recipe.Recipe, image, target, version, arch string, installedBytes int64) descriptorData {
	return descriptorData{
		Name:         r.Name,
		Version:      version,
		Release:      r.Release,
		Epoch:        r.Epoch,
		Description:  r.Description,
		License:      r.License,
		Maintainer:   r.Maintainer,
		URL:          r.URL,
		Arch:         arch,
		Group:        r.Group,
		Depends:      r.Depends.Resolve(image, target),
		BuildDepends: r.BuildDepends.Resolve(image, target),
		Provides:     r.Provides.Resolve(image, target),
		Conflicts:    r.Conflicts.Resolve(image, target),
		InstalledKB:  installedBytes / 1024,
		Obsoletes:    r.RPM.Obsoletes.Resolve(image, target),
		PreDepends:   r.Deb.PreDepends.Resolve(image, target),
		OptDepends:   r.Pkg.OptDepends.Resolve(image, target),
		CheckDepends: r.Apk.CheckDepends.Resolve(image, target),
		Pre:          r.RPM.Pre,
		Post:         r.RPM.Post,
		Preun:        r.RPM.Preun,
		Postun:       r.RPM.Postun,
		Install:      r.Pkg.Install,
	}
}

var tmplFuncs = template.FuncMap{
	"join": func(sep string, items []string) string { return strings.Join(items, sep) },
	"commaList": func(items []string) string {
		return strings.Join(items, ", ")
	},
}

var rpmSpecTmpl = template.Must(template.New("rpm").Funcs(tmplFuncs).Parse(`
Name: {{ .Name }}
Version: {{ .Version }}
Release: {{ .Release }}
{{- if .Epoch }}
Epoch: {{ .Epoch }}
{{- end }}
Summary: {{ .Description }}
License: {{ .License }}
{{- if .URL }}
URL: {{ .URL }}
{{- end }}
{{- if .Group }}
Group: {{ .Group }}
{{- end }}
BuildArch: {{ .Arch }}
{{- range .Depends }}
Requires: {{ . }}
{{- end }}
{{- range .BuildDepends }}
BuildRequires: {{ . }}
{{- end }}
{{- range .Provides }}
Provides: {{ . }}
{{- end }}
{{- range .Conflicts }}
Conflicts: {{ . }}
{{- end }}
{{- range .Obsoletes }}
Obsoletes: {{ . }}
{{- end }}

%description
{{ .Description }}

%files
/*
{{- if .Pre }}

%pre
{{ .Pre }}
{{- end }}
{{- if .Post }}

%post
{{ .Post }}
{{- end }}
{{- if .Preun }}

%preun
{{ .Preun }}
{{- end }}
{{- if .Postun }}

%postun
{{ .Postun }}
{{- end }}
`))

// RPMSpec renders the .spec file content for r, given the package's
// resolved version, target arch, and the harvested tree's byte size
// (unused by rpmbuild itself, carried for symmetry with deb).
func RPMSpec(r recipe.Recipe, image, version, arch string, installedBytes int64) string {
	var b strings.Builder
	data := newDescriptorData(r, image, "rpm", version, arch, installedBytes)
	if err := rpmSpecTmpl.Execute(&b, data); err != nil {
		panic(err) // template is compile-time constant; a render error is a programming error
	}
	return b.String()
}

var debControlTmpl = template.Must(template.New("deb").Funcs(tmplFuncs).Parse(`Package: {{ .Name }}
Version: {{ .Version }}-{{ .Release }}
Architecture: {{ .Arch }}
Maintainer: {{ .Maintainer }}
Installed-Size: {{ .InstalledKB }}
{{- if .PreDepends }}
Pre-Depends: {{ commaList .PreDepends }}
{{- end }}
{{- if .Depends }}
Depends: {{ commaList .Depends }}
{{- end }}
{{- if .Conflicts }}
Conflicts: {{ commaList .Conflicts }}
{{- end }}
{{- if .Provides }}
Provides: {{ commaList .Provides }}
{{- end }}
Section: {{ if .Group }}{{ .Group }}{{ else }}misc{{ end }}
Priority: optional
Description: {{ .Description }}
`))

// DebControl renders a deb control file, with Installed-Size computed
// from the harvested tree's total byte size (§4.7).
func DebControl(r recipe.Recipe, image, version, arch string, installedBytes int64) string {
	var b strings.Builder
	data := newDescriptorData(r, image, "deb", version, arch, installedBytes)
	data.Name = debName(r.Name)
	data.Arch = debArch(arch)
	if err := debControlTmpl.Execute(&b, data); err != nil {
		panic(err)
	}
	return b.String()
}

var pkgbuildTmpl = template.Must(template.New("pkg").Funcs(tmplFuncs).Parse(`# Generated PKGBUILD
pkgname={{ .Name }}
pkgver={{ .Version }}
pkgrel={{ .Release }}
pkgdesc="{{ .Description }}"
url="{{ .URL }}"
arch=('{{ .Arch }}')
license=('{{ .License }}')
{{- if .Depends }}
depends=({{ range .Depends }}'{{ . }}' {{ end }})
{{- end }}
{{- if .Conflicts }}
conflicts=({{ range .Conflicts }}'{{ . }}' {{ end }})
{{- end }}
{{- if .Provides }}
provides=({{ range .Provides }}'{{ . }}' {{ end }})
{{- end }}
{{- if .OptDepends }}
optdepends=({{ range .OptDepends }}'{{ . }}' {{ end }})
{{- end }}
{{- if .Install }}
install={{ .Name }}.install
{{- end }}

package() {
  cp -a "{{ .OutDir }}"/. "$pkgdir"/
}
`))

// PKGBUILD renders a PKGBUILD for r. pkger has already run its own
// configure/build/install phases (§4.5), so the generated package()
// function copies outDir (the in-container install tree) straight
// into $pkgdir rather than relying on makepkg's own build() stage or
// its $srcdir staging convention.
func PKGBUILD(r recipe.Recipe, image, version, arch, outDir string) string {
	var b strings.Builder
	data := newDescriptorData(r, image, "pkg", version, arch, 0)
	data.OutDir = outDir
	if err := pkgbuildTmpl.Execute(&b, data); err != nil {
		panic(err)
	}
	return b.String()
}

var apkbuildTmpl = template.Must(template.New("apk").Funcs(tmplFuncs).Parse(`# Generated APKBUILD
pkgname={{ .Name }}
pkgver={{ .Version }}
pkgrel={{ .Release }}
pkgdesc="{{ .Description }}"
url="{{ .URL }}"
arch="{{ .Arch }}"
license="{{ .License }}"
{{- if .Depends }}
depends="{{ join " " .Depends }}"
{{- end }}
{{- if .Provides }}
provides="{{ join " " .Provides }}"
{{- end }}
{{- if .CheckDepends }}
checkdepends="{{ join " " .CheckDepends }}"
{{- end }}

package() {
  cp -a "{{ .OutDir }}"/. "$pkgdir"/
}
`))

// APKBUILD renders an APKBUILD for r, structured the same way as
// PKGBUILD above.
func APKBUILD(r recipe.Recipe, image, version, arch, outDir string) string {
	var b strings.Builder
	data := newDescriptorData(r, image, "apk", version, arch, 0)
	data.OutDir = outDir
	if err := apkbuildTmpl.Execute(&b, data); err != nil {
		panic(err)
	}
	return b.String()
}
