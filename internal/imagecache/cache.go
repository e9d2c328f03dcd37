package imagecache

import (
	"context"
	"fmt"

	"github.com/cruciblehq/pkgerd/internal/containerengine"
	"github.com/cruciblehq/pkgerd/internal/errctx"
	"github.com/cruciblehq/pkgerd/internal/state"
)

// tagPrefix namespaces committed dependency images so they don't
// collide with tags a recipe's own base image might use.
const tagPrefix = "pkger-deps"

// Request describes one image's dependency-install cache lookup.
type Request struct {
	ImageName       string // configuration image name, used as the state.Key
	Target          string // rpm/deb/pkg/apk/gzip
	OS              string // optional os override
	BaseImage       string // registry ref or local tag to start from on a miss
	Deps            []string
	SkipDefaultDeps bool
	Dockerfile      []byte
}

// Provider resolves a Request to a ready-to-use local image tag,
// consulting and updating the persistent cache so repeated builds of
// the same recipe skip dependency installation entirely (§4.2).
type Provider struct {
	Engine *containerengine.Engine
	Store  *state.Store
}

// execAdapter satisfies imagecache's narrow execer interface over a
// real containerengine.Container.
type execAdapter struct{ *containerengine.Container }

func (a execAdapter) ExecArgs(ctx context.Context, env []string, workdir string, args ...string) (*execResult, error) {
	res, err := a.Container.ExecArgs(ctx, env, workdir, args...)
	if err != nil {
		return nil, err
	}
	return &execResult{ExitCode: res.ExitCode, Stderr: res.Stderr}, nil
}

// Prepare returns the local image tag to build req's job against,
// installing dependencies on a cache miss and recording the result.
func (p *Provider) Prepare(ctx context.Context, req Request) (string, error) {
	deps := req.Deps
	if !req.SkipDefaultDeps {
		deps = mergeDefaultDeps(deps)
	}

	hash := Fingerprint(deps, req.SkipDefaultDeps, req.Dockerfile)
	key := state.Key{Image: req.ImageName, Target: req.Target}

	if entry, ok := p.Store.Get(key); ok && entry.DepHash == hash {
		tag := imageTagFor(req.ImageName, req.Target, hash)
		if p.Engine.HasImage(ctx, tag) {
			return tag, nil
		}
	}

	tag, err := p.build(ctx, req, deps, hash)
	if err != nil {
		return "", err
	}

	p.Store.Update(key, state.Entry{
		ImageID: tag,
		Tag:     tag,
		OS:      req.OS,
		DepHash: hash,
		Deps:    deps,
	})

	return tag, nil
}

func (p *Provider) build(ctx context.Context, req Request, deps []string, hash string) (string, error) {
	if err := p.Engine.Pull(ctx, req.BaseImage); err != nil {
		return "", errctx.Wrap(ErrImage, err)
	}

	baseTag := containerengine.ImageDigestTag("pkger-base", req.BaseImage)
	if err := p.Engine.Tag(ctx, req.BaseImage, baseTag); err != nil {
		return "", errctx.Wrap(ErrImage, err)
	}

	buildID := fmt.Sprintf("pkger-depinstall-%s", hash[:12])
	container, err := p.Engine.StartFromTag(ctx, baseTag, buildID)
	if err != nil {
		return "", errctx.Wrap(ErrImage, err)
	}
	defer container.Destroy(ctx)

	if err := installInto(ctx, execAdapter{container}, req.Target, req.OS, deps); err != nil {
		return "", err
	}

	tag := imageTagFor(req.ImageName, req.Target, hash)
	if _, err := container.Commit(ctx, tag); err != nil {
		return "", errctx.Wrap(ErrImage, err)
	}

	return tag, nil
}

func imageTagFor(image, target, hash string) string {
	return fmt.Sprintf("%s/%s-%s:%s", tagPrefix, image, target, hash[:16])
}

func mergeDefaultDeps(deps []string) []string {
	seen := make(map[string]bool, len(deps))
	for _, d := range deps {
		seen[d] = true
	}
	out := append([]string(nil), deps...)
	for _, d := range DefaultDeps {
		if !seen[d] {
			out = append(out, d)
			seen[d] = true
		}
	}
	return out
}
