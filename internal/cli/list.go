package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/cruciblehq/pkgerd/internal/config"
	"github.com/cruciblehq/pkgerd/internal/recipe"
)

// ListCmd implements 'pkger list', printing either known recipes or
// (with --packages) the emitted artifacts under output_dir — a
// supplemented feature beyond spec.md's Non-goal on recipe/image
// listing, grounded on pkger-cli's table.rs tabular output.
type ListCmd struct {
	Packages bool `help:"List emitted packages under output_dir instead of recipes."`
}

func (c *ListCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(RootCmd.Config)
	if err != nil {
		return err
	}

	if c.Packages {
		return listPackages(cfg)
	}
	return listRecipes(cfg)
}

func listRecipes(cfg *config.Config) error {
	recipes, err := recipe.LoadAll(cfg.RecipesDir)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tRELEASE")
	for _, r := range recipes {
		version := ""
		if len(r.Version) > 0 {
			version = r.Version[0]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, version, r.Release)
	}
	return w.Flush()
}

func listPackages(cfg *config.Config) error {
	var rows []string
	err := filepath.Walk(cfg.OutputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if !info.IsDir() {
			rel, relErr := filepath.Rel(cfg.OutputDir, path)
			if relErr != nil {
				rel = path
			}
			rows = append(rows, rel)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(rows)
	for _, row := range rows {
		fmt.Println(row)
	}
	return nil
}
