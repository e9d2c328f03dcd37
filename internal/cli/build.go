package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/pkgerd/internal/config"
	"github.com/cruciblehq/pkgerd/internal/containerengine"
	"github.com/cruciblehq/pkgerd/internal/emit"
	"github.com/cruciblehq/pkgerd/internal/errctx"
	"github.com/cruciblehq/pkgerd/internal/imagecache"
	"github.com/cruciblehq/pkgerd/internal/job"
	"github.com/cruciblehq/pkgerd/internal/recipe"
	"github.com/cruciblehq/pkgerd/internal/scheduler"
	"github.com/cruciblehq/pkgerd/internal/source"
	"github.com/cruciblehq/pkgerd/internal/state"
)

// BuildCmd implements 'pkger build' (§4–§6): loads every matching
// recipe, resolves each against its configured images, and runs the
// resulting job matrix through the scheduler (C6).
type BuildCmd struct {
	Recipe string   `arg:"" optional:"" help:"Recipe name to build. Builds every recipe when omitted."`
	Target string   `help:"Limit the build to a single package target (rpm/deb/pkg/apk/gzip)."`
	Simple bool     `help:"Build against the default simple image for each target instead of configured images."`
	NoSign bool     `name:"no-sign" help:"Skip GPG signing even if the configuration enables it."`
	Jobs   int      `short:"j" help:"Maximum concurrent jobs. Defaults to one per distinct image."`
}

func (c *BuildCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(RootCmd.Config)
	if err != nil {
		return err
	}

	recipes, err := recipe.LoadAll(cfg.RecipesDir)
	if err != nil {
		return err
	}

	engine, err := containerengine.New(cfg.DockerAddress(), "pkger")
	if err != nil {
		return err
	}

	store, err := state.Open(config.CacheFile())
	if err != nil {
		return err
	}
	images := &imagecache.Provider{Engine: engine, Store: store}

	fetcher := source.NewBreakingFetcher(source.NewFetcher())
	packager := emit.New(emit.Config{
		OutputDir: cfg.OutputDir,
		GPGKey:    cfg.GPGKey,
		GPGName:   cfg.GPGName,
		NoSign:    c.NoSign,
	})

	deps := job.Deps{
		Engine:   engine,
		Images:   images,
		Fetcher:  fetcher,
		Packager: packager,
		HostOut:  filepath.Join(os.TempDir(), "pkger-harvest"),
	}

	descriptors, err := buildDescriptors(cfg, recipes, c.Recipe, c.Target, c.Simple)
	if err != nil {
		return err
	}
	if len(descriptors) == 0 {
		return fmt.Errorf("no matching recipe/image/target combinations found")
	}

	sched := scheduler.New(scheduler.Config{Images: images, Deps: deps, Concurrency: c.Jobs})
	sctx, cancel := scheduler.WithSignalCancellation(ctx)
	defer cancel()

	report := sched.Run(sctx, descriptors)

	failed := 0
	for _, res := range report.Results {
		if res.Err != nil {
			failed++
			slog.Error("job failed", "image", res.ImageKey, "err", res.Err)
			continue
		}
		slog.Info("job finished", "image", res.ImageKey)
	}

	if err := store.Save(); err != nil {
		slog.Warn("saving image cache", "err", err)
	}

	if report.ExitCode != 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(report.Results))
	}
	return nil
}

// buildDescriptors resolves the (recipe, image, target) matrix into
// one scheduler.Descriptor per job (§4.4's "each combination produces
// an independent job").
func buildDescriptors(cfg *config.Config, recipes []recipe.Recipe, recipeFilter, targetFilter string, simple bool) ([]scheduler.Descriptor, error) {
	var out []scheduler.Descriptor

	for _, r := range recipes {
		if recipeFilter != "" && r.Name != recipeFilter {
			continue
		}

		imgs, err := resolveImages(cfg, r, simple)
		if err != nil {
			return nil, err
		}

		version := ""
		if len(r.Version) > 0 {
			version = r.Version[0]
		}

		for _, img := range imgs {
			if targetFilter != "" && img.Target != targetFilter {
				continue
			}

			baseImage, dockerfile, err := baseImageFor(cfg, img)
			if err != nil {
				return nil, err
			}

			j := job.New(r, img, version, img.Target, "/pkger/build", "/pkger/out")
			out = append(out, scheduler.Descriptor{
				Job: j,
				ImageReq: imagecache.Request{
					ImageName:       img.Name,
					Target:          img.Target,
					OS:              img.OS,
					BaseImage:       baseImage,
					Deps:            j.Dependencies(),
					SkipDefaultDeps: r.SkipDefaultDeps,
					Dockerfile:      dockerfile,
				},
			})
		}
	}

	return out, nil
}

// resolveImages picks the images a recipe builds against: its own
// `images:`/`all_images` declarations resolved against cfg.Images, or
// (when simple is set, or the recipe declares neither) one synthetic
// image per supported target using cfg's simple-image defaults (§6).
func resolveImages(cfg *config.Config, r recipe.Recipe, simple bool) ([]recipe.Image, error) {
	if simple || (len(r.Images) == 0 && !r.AllImages) {
		var out []recipe.Image
		for _, target := range []string{"rpm", "deb", "pkg", "apk", "gzip"} {
			if _, err := cfg.SimpleImageFor(target); err != nil {
				continue
			}
			out = append(out, recipe.Image{Name: "simple-" + target, Target: target})
		}
		return out, nil
	}

	var names []string
	if r.AllImages {
		for _, img := range cfg.Images {
			names = append(names, img.Name)
		}
	} else {
		for _, ref := range r.Images {
			names = append(names, ref.Name)
		}
	}

	out := make([]recipe.Image, 0, len(names))
	for _, name := range names {
		configured, ok := cfg.ImageByName(name)
		if !ok {
			return nil, fmt.Errorf("recipe %q references unknown image %q", r.Name, name)
		}
		target, osOverride := configured.Target, configured.OS
		for _, ref := range r.Images {
			if ref.Name != name {
				continue
			}
			if ref.Target != "" && ref.Target != configured.Target {
				return nil, errctx.Wrapf(recipe.ErrImageConflict, "recipe %q sets target %q for image %q, configuration declares %q", r.Name, ref.Target, name, configured.Target)
			}
			if ref.OS != "" {
				osOverride = ref.OS
			}
		}
		out = append(out, recipe.Image{
			Name:   name,
			Target: target,
			OS:     osOverride,
			Dir:    filepath.Join(cfg.ImagesDir, name),
		})
	}
	return out, nil
}

// baseImageFor returns the registry reference img's dependency-install
// container starts from, and that image's Dockerfile contents (used
// for dep_hash fingerprinting, §4.2). A synthetic simple image (no
// Dir) has no Dockerfile of its own; its base image is the configured
// simple-image reference directly.
func baseImageFor(cfg *config.Config, img recipe.Image) (string, []byte, error) {
	if img.Dir == "" {
		ref, err := cfg.SimpleImageFor(img.Target)
		if err != nil {
			return "", nil, err
		}
		return ref, nil, nil
	}

	path := filepath.Join(img.Dir, "Dockerfile")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, errctx.Wrap(config.ErrConfig, err)
	}

	from, err := dockerfileFrom(data)
	if err != nil {
		return "", nil, errctx.Wrapf(config.ErrConfig, "%s: %w", path, err)
	}
	return from, data, nil
}

// dockerfileFrom returns the image reference named by the first FROM
// instruction.
func dockerfileFrom(data []byte) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && strings.EqualFold(fields[0], "FROM") {
			return fields[1], nil
		}
	}
	return "", fmt.Errorf("no FROM instruction found")
}
