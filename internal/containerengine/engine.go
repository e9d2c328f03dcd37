package containerengine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/containerd/v2/core/remotes/docker"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

const (
	// Snapshotter used for container filesystems. fuse-overlayfs provides
	// overlay semantics without requiring root privileges, letting pkger
	// drive builds as a regular user.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Engine wraps a containerd client and exposes the image/container
// operations a build job needs.
type Engine struct {
	client *containerd.Client
}

// New connects to the containerd socket at address, scoping every
// operation to namespace. The Engine must be closed when no longer
// needed.
func New(address, namespace string) (*Engine, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, errctx.Wrap(ErrEngine, err)
	}
	return &Engine{client: client}, nil
}

// Close releases the containerd client connection.
func (e *Engine) Close() error {
	return e.client.Close()
}

func defaultPlatform() string {
	return "linux/" + goruntime.GOARCH
}

// Pull resolves ref against its registry, fetches every layer for the
// host platform, and unpacks it into the snapshotter under its own
// name (no local tag rewrite — callers needing a stable local alias
// should follow up with Tag).
func (e *Engine) Pull(ctx context.Context, ref string) error {
	platform := defaultPlatform()
	p, err := platforms.Parse(platform)
	if err != nil {
		return errctx.Wrap(ErrEngine, err)
	}

	img, err := e.client.Pull(ctx, ref,
		containerd.WithPullUnpack,
		containerd.WithPullSnapshotter(snapshotter),
		containerd.WithPlatformMatcher(platforms.Only(p)),
		containerd.WithResolver(docker.NewResolver(docker.ResolverOptions{})),
	)
	if err != nil {
		return errctx.Wrap(ErrEngine, err)
	}

	slog.Debug("image pulled", "ref", img.Name())
	return nil
}

// Tag renames a previously pulled or imported image under a new local
// name. Pre-existing tags are overwritten.
func (e *Engine) Tag(ctx context.Context, source, tag string) error {
	is := e.client.ImageService()

	src, err := is.Get(ctx, source)
	if err != nil {
		return errctx.Wrap(ErrEngine, err)
	}

	img := images.Image{Name: tag, Target: src.Target}
	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return errctx.Wrap(ErrEngine, err)
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return errctx.Wrap(ErrEngine, err)
		}
	}
	return nil
}

// HasImage reports whether tag names an image already known to
// containerd (used by the dependency-install cache, §4.2, to decide
// whether a committed image from a prior run can be reused without a
// pull).
func (e *Engine) HasImage(ctx context.Context, tag string) bool {
	_, err := e.client.ImageService().Get(ctx, tag)
	return err == nil
}

// resolveImage looks up a tagged image and selects the manifest for
// platform.
func (e *Engine) resolveImage(ctx context.Context, tag, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}

	img, err := e.client.ImageService().Get(ctx, tag)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(e.client, img, platforms.Only(p)), nil
}

// StartFromTag starts a container running id from a previously pulled
// or committed image tag. Any stale container with the same ID is
// cleaned up first.
func (e *Engine) StartFromTag(ctx context.Context, tag, id string) (*Container, error) {
	platform := defaultPlatform()

	c := &Container{client: e.client, id: id, platform: platform}
	c.remove(ctx)

	image, err := e.resolveImage(ctx, tag, platform)
	if err != nil {
		return nil, errctx.Wrap(ErrEngine, err)
	}

	ctr, err := c.create(ctx, image)
	if err != nil {
		return nil, errctx.Wrap(ErrEngine, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, errctx.Wrap(ErrEngine, err)
	}

	slog.Debug("container started", "id", id, "image", tag)
	return c, nil
}

// ImportArchive imports an OCI archive at path, tags it as tag, and
// unpacks its layers for the host platform. The build path does not call
// it; dependency-install images start from a pulled base image.
func (e *Engine) ImportArchive(ctx context.Context, path, tag string) error {
	fh, err := os.Open(path)
	if err != nil {
		return errctx.Wrap(ErrEngine, err)
	}
	defer fh.Close()

	imported, err := e.client.Import(ctx, fh)
	if err != nil {
		return errctx.Wrap(ErrEngine, err)
	}
	if len(imported) == 0 {
		return errctx.Wrap(ErrEngine, fmt.Errorf("archive %s: no images", path))
	}

	source := imported[0]
	if err := e.Tag(ctx, source.Name, tag); err != nil {
		return err
	}
	if source.Name != tag {
		_ = e.client.ImageService().Delete(ctx, source.Name)
	}

	platform := defaultPlatform()
	image, err := e.resolveImage(ctx, tag, platform)
	if err != nil {
		return errctx.Wrap(ErrEngine, err)
	}
	if err := image.Unpack(ctx, snapshotter); err != nil {
		return errctx.Wrap(ErrEngine, err)
	}

	slog.Debug("image imported", "tag", tag)
	return nil
}

// DestroyImage removes tag and every container created from it.
func (e *Engine) DestroyImage(ctx context.Context, tag string) error {
	ctrs, err := e.client.Containers(ctx, fmt.Sprintf("image==%s", tag))
	if err != nil {
		return errctx.Wrap(ErrEngine, err)
	}

	for _, ctr := range ctrs {
		if task, taskErr := ctr.Task(ctx, nil); taskErr == nil {
			task.Kill(ctx, syscall.SIGKILL)
			task.Delete(ctx, containerd.WithProcessKill)
		}
		if err := ctr.Delete(ctx, containerd.WithSnapshotCleanup); err != nil && !errdefs.IsNotFound(err) {
			return errctx.Wrap(ErrEngine, err)
		}
	}

	if err := e.client.ImageService().Delete(ctx, tag); err != nil && !errdefs.IsNotFound(err) {
		return errctx.Wrap(ErrEngine, err)
	}

	slog.Debug("image destroyed", "tag", tag)
	return nil
}

// Container returns a lightweight handle for an existing container;
// it is not loaded or verified until first used.
func (e *Engine) Container(id string) *Container {
	return &Container{client: e.client, id: id, platform: defaultPlatform()}
}

// ImageDigestTag produces a deterministic containerd tag from an
// arbitrary string key (e.g. a recipe's dependency fingerprint), so the
// same key always resolves to the same local image name. Used by the
// dependency-install cache to name the image it commits for a given
// (image, dep set) combination.
func ImageDigestTag(prefix, key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s/%s:latest", prefix, hex.EncodeToString(h[:]))
}
