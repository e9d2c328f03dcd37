package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pkgerd/internal/config"
)

// NewCmd scaffolds a new recipe directory with a starter recipe.yml,
// mirroring pkger-cli's recipe generator (its --build-depends,
// --license, etc. repeated-flag surface; the interactive editor
// invocation it also offers stays out of scope, §1).
type NewCmd struct {
	Name         string   `arg:"" help:"Recipe name."`
	Version      string   `default:"0.1.0" help:"Initial version."`
	Release      string   `default:"1" help:"Initial release number."`
	Description  string   `help:"Short description."`
	License      string   `help:"SPDX license identifier."`
	URL          string   `help:"Upstream project URL."`
	Depends      []string `help:"Runtime dependency (repeatable)." sep:"none"`
	BuildDepends []string `name:"build-depends" help:"Build-time dependency (repeatable)." sep:"none"`
}

func (c *NewCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(RootCmd.Config)
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.RecipesDir, c.Name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("recipe %q already exists at %s", c.Name, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	content := c.render()
	path := filepath.Join(dir, "recipe.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}

func (c *NewCmd) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", c.Name)
	fmt.Fprintf(&b, "version: %s\n", c.Version)
	fmt.Fprintf(&b, "release: %q\n", c.Release)
	if c.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", c.Description)
	}
	if c.License != "" {
		fmt.Fprintf(&b, "license: %s\n", c.License)
	}
	if c.URL != "" {
		fmt.Fprintf(&b, "url: %s\n", c.URL)
	}
	if len(c.Depends) > 0 {
		fmt.Fprintf(&b, "depends:\n  all: [%s]\n", strings.Join(c.Depends, ", "))
	}
	if len(c.BuildDepends) > 0 {
		fmt.Fprintf(&b, "build_depends:\n  all: [%s]\n", strings.Join(c.BuildDepends, ", "))
	}
	b.WriteString("\nconfigure:\n  steps: []\n\nbuild:\n  steps: []\n\ninstall:\n  steps: []\n")
	return b.String()
}
