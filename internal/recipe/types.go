package recipe

import "gopkg.in/yaml.v3"

// Recipe is the central declarative entity (§3). Fields mirror the YAML
// schema of recipe.yml; zero values mean "not set by this recipe" so that
// the inheritance merge (merge.go) can tell an explicit override from an
// absent field.
type Recipe struct {
	Name        string      `yaml:"name"`
	Version     VersionList `yaml:"version"`
	Release     string      `yaml:"release"`
	Epoch       string      `yaml:"epoch,omitempty"`
	From        string      `yaml:"from,omitempty"`
	Description string      `yaml:"description"`
	License     string      `yaml:"license"`
	Maintainer  string      `yaml:"maintainer,omitempty"`
	URL         string      `yaml:"url,omitempty"`
	Arch        string      `yaml:"arch,omitempty"`
	Group       string      `yaml:"group,omitempty"`

	Images    []ImageRef `yaml:"images,omitempty"`
	AllImages bool       `yaml:"all_images,omitempty"`

	Source  string  `yaml:"source,omitempty"`
	Git     *GitRef `yaml:"git,omitempty"`
	Patches []Patch `yaml:"patches,omitempty"`

	Depends      DepMap `yaml:"depends,omitempty"`
	BuildDepends DepMap `yaml:"build_depends,omitempty"`
	Conflicts    DepMap `yaml:"conflicts,omitempty"`
	Provides     DepMap `yaml:"provides,omitempty"`

	Deb DebExtras `yaml:"deb,omitempty"`
	RPM RPMExtras `yaml:"rpm,omitempty"`
	Pkg PkgExtras `yaml:"pkg,omitempty"`
	Apk ApkExtras `yaml:"apk,omitempty"`

	Configure *Phase `yaml:"configure,omitempty"`
	Build     *Phase `yaml:"build,omitempty"`
	Install   *Phase `yaml:"install,omitempty"`

	Exclude         []string          `yaml:"exclude,omitempty"`
	SkipDefaultDeps bool              `yaml:"skip_default_deps,omitempty"`
	Env             map[string]string `yaml:"env,omitempty"`

	// Dir is the recipe's directory on the host, used to resolve
	// recipe-relative source/patch paths (§4.3). Set by the loader, not
	// read from YAML.
	Dir string `yaml:"-"`
}

// ImageRef is one entry of a recipe's `images` list. Recipes may declare a
// bare image name, or (in the older recipe format) a full object carrying
// its own target/os. §9's open question on precedence is resolved by
// rejecting the conflict when both this and configuration disagree on the
// image's target (see resolveImages in internal/cli/build.go).
type ImageRef struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target,omitempty"`
	OS     string `yaml:"os,omitempty"`
}

// UnmarshalYAML accepts either a bare image name or a {name, target, os}
// mapping.
func (i *ImageRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&i.Name)
	}
	type plain ImageRef
	return value.Decode((*plain)(i))
}

// GitRef is a `git:` source entry: a bare URL string, or {url, branch}.
type GitRef struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
}

// UnmarshalYAML accepts either a bare URL string or a {url, branch}
// mapping.
func (g *GitRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&g.URL)
	}
	type plain GitRef
	return value.Decode((*plain)(g))
}

// EffectiveBranch returns Branch, defaulting to "master" (§4.3).
func (g *GitRef) EffectiveBranch() string {
	if g == nil || g.Branch == "" {
		return "master"
	}
	return g.Branch
}

// Patch is one entry of the `patches` list: a local file, URL, or
// recipe-relative path, an optional strip level (default 1 per §4.3), and
// an optional image filter.
type Patch struct {
	Source string   `yaml:"patch"`
	Strip  *int     `yaml:"strip,omitempty"`
	Images []string `yaml:"images,omitempty"`
}

// StripLevel returns the -pN strip level, defaulting to 1 (§4.3).
func (p Patch) StripLevel() int {
	if p.Strip == nil {
		return 1
	}
	return *p.Strip
}

// AppliesTo reports whether this patch's image filter includes image, or
// whether it carries no filter at all (always applies).
func (p Patch) AppliesTo(image string) bool {
	if len(p.Images) == 0 {
		return true
	}
	for _, img := range p.Images {
		if img == image {
			return true
		}
	}
	return false
}

// DebExtras carries deb-specific packaging fields (§3, §6).
type DebExtras struct {
	PreDepends DepMap `yaml:"pre_depends,omitempty"`
}

// RPMExtras carries rpm-specific packaging fields, including the
// pre/post/preun/postun scriptlets emitted into the spec file (§4.7).
type RPMExtras struct {
	Obsoletes DepMap `yaml:"obsoletes,omitempty"`
	Pre       string `yaml:"pre,omitempty"`
	Post      string `yaml:"post,omitempty"`
	Preun     string `yaml:"preun,omitempty"`
	Postun    string `yaml:"postun,omitempty"`
}

// PkgExtras carries Arch-package-specific fields.
type PkgExtras struct {
	OptDepends DepMap `yaml:"optdepends,omitempty"`
	Install    string `yaml:"install,omitempty"`
}

// ApkExtras carries Alpine-package-specific fields.
type ApkExtras struct {
	CheckDepends DepMap `yaml:"checkdepends,omitempty"`
}

// Phase is one of the three script phases: configure, build, install (§3).
type Phase struct {
	Shell      string `yaml:"shell,omitempty"`
	WorkingDir string `yaml:"working_dir,omitempty"`
	Steps      []Step `yaml:"steps"`
}

// Step is a single command with optional filters gating whether it runs
// for a given (image, version, target) (§3, §4.5).
type Step struct {
	Cmd      string   `yaml:"cmd"`
	Images   []string `yaml:"images,omitempty"`
	Versions []string `yaml:"versions,omitempty"`

	// Per-target booleans. Pointers so that "unspecified" (nil, no
	// constraint) is distinguishable from an explicit `false` (negative
	// filter), per §4.5.
	RPM  *bool `yaml:"rpm,omitempty"`
	Deb  *bool `yaml:"deb,omitempty"`
	Pkg  *bool `yaml:"pkg,omitempty"`
	Apk  *bool `yaml:"apk,omitempty"`
	Gzip *bool `yaml:"gzip,omitempty"`
}

// Image is a directory under images_dir holding a Dockerfile and the
// configuration-declared target it builds (§3).
type Image struct {
	Name   string
	Target string
	OS     string
	Dir    string // directory containing the Dockerfile
}
