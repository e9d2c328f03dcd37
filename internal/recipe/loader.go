package recipe

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/cruciblehq/pkgerd/internal/errctx"
	"gopkg.in/yaml.v3"
)

// recipeFileNames are tried, in order, inside each recipe directory.
var recipeFileNames = []string{"recipe.yml", "recipe.yaml"}

// LoadAll reads every recipe directory under dir, resolves `from:`
// inheritance, expands multi-version recipes, and returns the flattened,
// fully-merged set ready for dependency resolution and job construction
// (§3, §4.2, §4.4).
//
// Inheritance is resolved in two passes: the first loads every recipe's
// raw (unmerged) form and records its `from` parent; the second walks each
// recipe's ancestor chain, detecting cycles, and folds parent into child
// from the root down via merge.
func LoadAll(dir string) ([]Recipe, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errctx.Wrap(ErrParse, err)
	}

	raw := make(map[string]Recipe)
	var order []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		recipeDir := filepath.Join(dir, entry.Name())

		r, found, err := loadOne(recipeDir)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if r.Name == "" {
			r.Name = entry.Name()
		}
		if _, dup := raw[r.Name]; dup {
			return nil, errctx.Wrapf(ErrDuplicateRecipe, "%s", r.Name)
		}
		raw[r.Name] = r
		order = append(order, r.Name)
	}

	resolved := make(map[string]Recipe, len(raw))
	for _, name := range order {
		r, err := resolveChain(name, raw, resolved, nil)
		if err != nil {
			return nil, err
		}
		resolved[name] = r
	}

	out := make([]Recipe, 0, len(order))
	for _, name := range order {
		for _, expanded := range Expand(resolved[name]) {
			if err := validate(expanded); err != nil {
				return nil, err
			}
			out = append(out, expanded)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return versionOf(out[i]) < versionOf(out[j])
	})

	return out, nil
}

func versionOf(r Recipe) string {
	if len(r.Version) == 0 {
		return ""
	}
	return r.Version[0]
}

// loadOne decodes the first recipe file found in recipeDir. found is false
// when the directory carries none of recipeFileNames (e.g. it holds
// recipe-relative patch/source files only, no recipe of its own).
func loadOne(recipeDir string) (Recipe, bool, error) {
	for _, name := range recipeFileNames {
		path := filepath.Join(recipeDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Recipe{}, false, errctx.Wrap(ErrParse, err)
		}

		var r Recipe
		if err := yaml.Unmarshal(data, &r); err != nil {
			return Recipe{}, false, errctx.Wrapf(ErrParse, "%s: %w", path, err)
		}
		r.Dir = recipeDir
		return r, true, nil
	}
	return Recipe{}, false, nil
}

// resolveChain returns name's fully merged recipe, memoizing into resolved
// and detecting inheritance cycles via path (the chain of names currently
// being resolved).
func resolveChain(name string, raw map[string]Recipe, resolved map[string]Recipe, path []string) (Recipe, error) {
	if r, ok := resolved[name]; ok {
		return r, nil
	}

	for _, p := range path {
		if p == name {
			return Recipe{}, errctx.Wrapf(ErrInheritanceCycle, "%v -> %s", append(path, name), name)
		}
	}

	r, ok := raw[name]
	if !ok {
		return Recipe{}, errctx.Wrapf(ErrParse, "unknown parent recipe %q", name)
	}

	if r.From == "" {
		resolved[name] = r
		return r, nil
	}

	parent, err := resolveChain(r.From, raw, resolved, append(path, name))
	if err != nil {
		return Recipe{}, err
	}

	merged := merge(parent, r)
	resolved[name] = merged
	return merged, nil
}

// validate enforces required fields and §9's image/target conflict rule:
// a recipe whose `images` entries declare a target that disagrees with the
// same image's target elsewhere in the same list is rejected outright
// rather than silently picking one, since there is no principled
// precedence between two declarations at the same scope.
func validate(r Recipe) error {
	if r.Name == "" {
		return errctx.Wrapf(ErrValidate, "recipe in %s has no name", r.Dir)
	}
	if len(r.Version) == 0 {
		return errctx.Wrapf(ErrValidate, "%s: version is required", r.Name)
	}
	if r.Release == "" {
		return errctx.Wrapf(ErrValidate, "%s: release is required", r.Name)
	}

	seen := make(map[string]ImageRef)
	for _, img := range r.Images {
		if prev, ok := seen[img.Name]; ok {
			if conflicts(prev, img) {
				return errctx.Wrapf(ErrImageConflict, "%s: image %q declared with conflicting target/os", r.Name, img.Name)
			}
			continue
		}
		seen[img.Name] = img
	}

	return nil
}

func conflicts(a, b ImageRef) bool {
	if a.Target != "" && b.Target != "" && a.Target != b.Target {
		return true
	}
	if a.OS != "" && b.OS != "" && a.OS != b.OS {
		return true
	}
	return false
}
