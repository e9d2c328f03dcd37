package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cruciblehq/pkgerd/internal/config"
)

// RemoveCmd implements 'pkger remove', deleting a recipe's directory.
type RemoveCmd struct {
	Name string `arg:"" help:"Recipe name to remove."`
}

func (c *RemoveCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(RootCmd.Config)
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.RecipesDir, c.Name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("recipe %q not found: %w", c.Name, err)
	}
	return os.RemoveAll(dir)
}
