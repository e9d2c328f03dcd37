package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/cruciblehq/pkgerd/internal/errctx"
	"github.com/cruciblehq/pkgerd/internal/paths"
	"gopkg.in/yaml.v3"
)

// Sentinel error category for configuration problems (§7: ConfigError).
var ErrConfig = errors.New("configuration error")

// Default container engine address when Docker is left unset.
const DefaultDockerAddress = "unix:///var/run/docker.sock"

// Image names pkger falls back to for simple builds when a recipe has no
// custom images and --simple is given (§6).
var DefaultSimpleImages = map[string]string{
	"rpm":  "rockylinux:latest",
	"deb":  "debian:latest",
	"pkg":  "archlinux",
	"apk":  "alpine:latest",
	"gzip": "debian:latest",
}

// SSH holds options forwarded to build containers needing outbound git/ssh
// access.
type SSH struct {
	ForwardAgent           bool `yaml:"forward_agent"`
	DisableKeyVerification bool `yaml:"disable_key_verification"`
}

// ImageConfig declares one entry of the top-level `images:` list: an image
// directory name, the package target it builds, and an optional OS override
// used when the engine can't auto-detect the distribution from
// /etc/os-release.
type ImageConfig struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
	OS     string `yaml:"os,omitempty"`
}

// Config is the decoded contents of .pkger.yml (§6).
type Config struct {
	RecipesDir          string            `yaml:"recipes_dir"`
	OutputDir           string            `yaml:"output_dir"`
	ImagesDir           string            `yaml:"images_dir"`
	Docker              string            `yaml:"docker"`
	Filter              string            `yaml:"filter"`
	SSH                 SSH               `yaml:"ssh"`
	Images              []ImageConfig     `yaml:"images"`
	CustomSimpleImages  map[string]string `yaml:"custom_simple_images"`
	GPGKey              string            `yaml:"gpg_key"`
	GPGName             string            `yaml:"gpg_name"`

	// path is the file this config was loaded from, kept for error messages.
	path string
}

// Load reads and decodes the configuration file at path.
//
// Missing recipes_dir/images_dir default to "recipes" and "images" next to
// the config file's directory is the caller's responsibility (paths are
// resolved relative to the current working directory at use time, not
// here). output_dir is required.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errctx.Wrap(ErrConfig, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errctx.Wrapf(ErrConfig, "parse %s: %w", path, err)
	}
	cfg.path = path

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate enforces the required-field contract from §6.
func (c *Config) validate() error {
	if c.OutputDir == "" {
		return errctx.Wrapf(ErrConfig, "%s: output_dir is required", c.path)
	}
	for _, img := range c.Images {
		if img.Name == "" {
			return errctx.Wrapf(ErrConfig, "%s: image entry missing name", c.path)
		}
		if !ValidTarget(img.Target) {
			return errctx.Wrapf(ErrConfig, "%s: image %q has unknown target %q", c.path, img.Name, img.Target)
		}
	}
	return nil
}

// ValidTarget reports whether target is one of the five supported package
// formats (§3).
func ValidTarget(target string) bool {
	switch target {
	case "rpm", "deb", "pkg", "apk", "gzip":
		return true
	}
	return false
}

// ImageByName looks up a configured image definition by name.
func (c *Config) ImageByName(name string) (ImageConfig, bool) {
	for _, img := range c.Images {
		if img.Name == name {
			return img, true
		}
	}
	return ImageConfig{}, false
}

// DockerAddress returns the configured engine URI, or the default.
func (c *Config) DockerAddress() string {
	if c.Docker == "" {
		return DefaultDockerAddress
	}
	return c.Docker
}

// SimpleImageFor returns the image reference to use for a simple build of
// target, preferring a user override from custom_simple_images.
func (c *Config) SimpleImageFor(target string) (string, error) {
	if ref, ok := c.CustomSimpleImages[target]; ok {
		return ref, nil
	}
	if ref, ok := DefaultSimpleImages[target]; ok {
		return ref, nil
	}
	return "", fmt.Errorf("no simple image defined for target %q", target)
}

// CacheFile returns the path pkger persists its image-state cache to.
func CacheFile() string {
	return paths.StateFile()
}
