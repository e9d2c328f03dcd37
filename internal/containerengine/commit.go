package containerengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/containerd/containerd/v2/core/containers"
	"github.com/containerd/containerd/v2/core/content"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/containerd/v2/pkg/rootfs"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	digest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// Commit snapshots the container's filesystem changes as a new layer
// and registers the result as a new local image under tag, so a later
// build can start from it without repeating whatever Commit's caller
// just did inside the container (§4.2: the dependency-install cache
// commits a base image plus its installed build dependencies).
//
// This adapts the same snapshot-diff-then-mutate-manifest approach
// cruxd's Container.Export uses to produce an OCI archive, but stops
// short of exporting anything: the mutated manifest/config/index are
// written into containerd's own content store as real (not ephemeral)
// blobs, and the image name is registered directly via the image
// service, so the committed image persists across runs exactly like any
// other locally-known image.
func (c *Container) Commit(ctx context.Context, tag string) (string, error) {
	loaded, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return "", errctx.Wrap(ErrEngine, err)
	}

	info, err := loaded.Info(ctx)
	if err != nil {
		return "", errctx.Wrap(ErrEngine, err)
	}

	layer, diffID, err := c.snapshotDiff(ctx, info)
	if err != nil {
		return "", errctx.Wrap(ErrEngine, err)
	}

	target, err := c.buildCommitTarget(ctx, info.Image, func(manifest *ocispec.Manifest, config *ocispec.Image) {
		manifest.Layers = append(manifest.Layers, layer)
		config.RootFS.DiffIDs = append(config.RootFS.DiffIDs, diffID)
	})
	if err != nil {
		return "", errctx.Wrap(ErrEngine, err)
	}

	is := c.client.ImageService()
	img := images.Image{Name: tag, Target: target}
	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return "", errctx.Wrap(ErrEngine, err)
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return "", errctx.Wrap(ErrEngine, err)
		}
	}

	return target.Digest.String(), nil
}

func (c *Container) snapshotDiff(ctx context.Context, info containers.Container) (ocispec.Descriptor, digest.Digest, error) {
	layer, err := rootfs.CreateDiff(ctx,
		info.SnapshotKey,
		c.client.SnapshotService(info.Snapshotter),
		c.client.DiffService(),
	)
	if err != nil {
		return ocispec.Descriptor{}, "", err
	}

	diffID, err := images.GetDiffID(ctx, c.client.ContentStore(), layer)
	if err != nil {
		return ocispec.Descriptor{}, "", err
	}

	return layer, diffID, nil
}

func (c *Container) buildCommitTarget(ctx context.Context, imageName string, mutate func(*ocispec.Manifest, *ocispec.Image)) (ocispec.Descriptor, error) {
	is := c.client.ImageService()

	img, err := is.Get(ctx, imageName)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	if !images.IsIndexType(img.Target.MediaType) {
		return c.mutateManifest(ctx, img.Target, imageName, mutate)
	}

	p, err := platforms.Parse(c.platform)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	idx, err := c.readIndex(ctx, img.Target)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	i, ok := matchManifest(ctx, c, idx, platforms.OnlyStrict(p))
	if !ok {
		if len(idx.Manifests) == 0 {
			return ocispec.Descriptor{}, errctx.Wrapf(ErrEmptyIndex, "%s", imageName)
		}
		i = 0
	}

	newManifest, err := c.mutateManifest(ctx, idx.Manifests[i], imageName, mutate)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	idx.Manifests = []ocispec.Descriptor{newManifest}
	return c.writeBlob(ctx, img.Target.MediaType, idx, imageName+"-index", content.WithLabels(indexGCLabels(idx)))
}

func matchManifest(ctx context.Context, c *Container, idx ocispec.Index, matcher platforms.MatchComparer) (int, bool) {
	for i, m := range idx.Manifests {
		if m.Platform != nil && matcher.Match(*m.Platform) {
			return i, true
		}
	}
	for i, m := range idx.Manifests {
		if m.Platform != nil || !images.IsManifestType(m.MediaType) {
			continue
		}
		manifest, err := c.readManifest(ctx, m)
		if err != nil {
			continue
		}
		config, err := c.readConfig(ctx, manifest.Config)
		if err != nil {
			continue
		}
		p := ocispec.Platform{OS: config.OS, Architecture: config.Architecture, Variant: config.Variant}
		if matcher.Match(p) {
			return i, true
		}
	}
	return 0, false
}

func (c *Container) mutateManifest(ctx context.Context, target ocispec.Descriptor, imageName string, mutate func(*ocispec.Manifest, *ocispec.Image)) (ocispec.Descriptor, error) {
	manifest, err := c.readManifest(ctx, target)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	config, err := c.readConfig(ctx, manifest.Config)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	mutate(&manifest, &config)

	newConfigDesc, err := c.writeBlob(ctx, manifest.Config.MediaType, config, imageName+"-config")
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	manifest.Config = newConfigDesc

	return c.writeBlob(ctx, target.MediaType, manifest, imageName+"-manifest", content.WithLabels(manifestGCLabels(manifest)))
}

func (c *Container) readManifest(ctx context.Context, desc ocispec.Descriptor) (ocispec.Manifest, error) {
	b, err := content.ReadBlob(ctx, c.client.ContentStore(), desc)
	if err != nil {
		return ocispec.Manifest{}, err
	}
	var m ocispec.Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return ocispec.Manifest{}, err
	}
	return m, nil
}

func (c *Container) readIndex(ctx context.Context, desc ocispec.Descriptor) (ocispec.Index, error) {
	b, err := content.ReadBlob(ctx, c.client.ContentStore(), desc)
	if err != nil {
		return ocispec.Index{}, err
	}
	var idx ocispec.Index
	if err := json.Unmarshal(b, &idx); err != nil {
		return ocispec.Index{}, err
	}
	return idx, nil
}

func (c *Container) readConfig(ctx context.Context, desc ocispec.Descriptor) (ocispec.Image, error) {
	b, err := content.ReadBlob(ctx, c.client.ContentStore(), desc)
	if err != nil {
		return ocispec.Image{}, err
	}
	var img ocispec.Image
	if err := json.Unmarshal(b, &img); err != nil {
		return ocispec.Image{}, err
	}
	return img, nil
}

func (c *Container) writeBlob(ctx context.Context, mediaType string, v any, ref string, opts ...content.Opt) (ocispec.Descriptor, error) {
	cs := c.client.ContentStore()
	b, err := json.Marshal(v)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    digest.FromBytes(b),
		Size:      int64(len(b)),
	}
	if err := content.WriteBlob(ctx, cs, ref, bytes.NewReader(b), desc, opts...); err != nil {
		return ocispec.Descriptor{}, err
	}
	return desc, nil
}

func manifestGCLabels(m ocispec.Manifest) map[string]string {
	labels := map[string]string{
		"containerd.io/gc.ref.content.config": m.Config.Digest.String(),
	}
	for i, layer := range m.Layers {
		key := fmt.Sprintf("containerd.io/gc.ref.content.l.%d", i)
		labels[key] = layer.Digest.String()
	}
	return labels
}

func indexGCLabels(idx ocispec.Index) map[string]string {
	labels := make(map[string]string, len(idx.Manifests))
	for i, m := range idx.Manifests {
		key := fmt.Sprintf("containerd.io/gc.ref.content.m.%d", i)
		labels[key] = m.Digest.String()
	}
	return labels
}
