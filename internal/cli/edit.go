package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cruciblehq/pkgerd/internal/config"
)

// EditCmd implements 'pkger edit', opening a recipe's recipe.yml in
// $EDITOR.
type EditCmd struct {
	Name string `arg:"" help:"Recipe name to edit."`
}

func (c *EditCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(RootCmd.Config)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.RecipesDir, c.Name, "recipe.yml")
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("recipe %q not found: %w", c.Name, err)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	return cmd.Run()
}
