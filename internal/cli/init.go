package cli

import (
	"context"
	"fmt"
	"os"
)

// InitCmd scaffolds a new .pkger.yml alongside empty recipes/ and
// images/ directories, so 'pkger new' and 'pkger build' have
// somewhere to work right after a fresh checkout.
type InitCmd struct {
	OutputDir string `default:"dist" help:"output_dir to write into the new configuration."`
}

const initConfigTemplate = `recipes_dir: recipes
images_dir: images
output_dir: %s
`

func (c *InitCmd) Run(ctx context.Context) error {
	if _, err := os.Stat(RootCmd.Config); err == nil {
		return fmt.Errorf("%s already exists", RootCmd.Config)
	}

	if err := os.WriteFile(RootCmd.Config, []byte(fmt.Sprintf(initConfigTemplate, c.OutputDir)), 0o644); err != nil {
		return err
	}
	if err := os.MkdirAll("recipes", 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll("images", 0o755); err != nil {
		return err
	}

	fmt.Println(RootCmd.Config)
	return nil
}
