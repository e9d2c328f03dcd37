package job

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cruciblehq/pkgerd/internal/containerengine"
	"github.com/cruciblehq/pkgerd/internal/errctx"
	"github.com/cruciblehq/pkgerd/internal/imagecache"
	"github.com/cruciblehq/pkgerd/internal/recipe"
	"github.com/cruciblehq/pkgerd/internal/source"
	"github.com/cruciblehq/pkgerd/internal/vars"
)

// cleanupGracePeriod bounds how long teardown of a job's build container
// may take once Run has returned, independent of the ctx passed to Run
// (which may already be cancelled on the Cancelled exit path, per §4.4/
// scenario 6's ≤3s teardown requirement).
const cleanupGracePeriod = 3 * time.Second

// Job carries one (recipe, image, target) build through the state
// machine of §4.5.
type Job struct {
	Recipe  recipe.Recipe
	Image   recipe.Image
	Version string
	Target  string

	BldDir string // container-side build directory
	OutDir string // container-side install/output directory

	State State
	Err   error

	// PreparedTag, when set, skips this job's own imagecache.Prepare
	// call and uses this tag directly. The scheduler (C6) sets this
	// after coalescing concurrent jobs for the same image behind a
	// single Prepare call (§4.6's per-image build lock).
	PreparedTag string

	containerID  string
	ctr          *containerengine.Container
	baseTag      string
	harvestedTar string
	artifactPath string
}

// New constructs a Job in the Created state. bldDir/outDir are the
// in-container paths every phase and the harvest step operate against.
func New(r recipe.Recipe, image recipe.Image, version, target, bldDir, outDir string) *Job {
	return &Job{
		Recipe:  r,
		Image:   image,
		Version: version,
		Target:  target,
		BldDir:  bldDir,
		OutDir:  outDir,
		State:   Created,
	}
}

// Packager emits the final package from a job's harvested output tree
// (C7, §4.7). Implemented by internal/emit.
type Packager interface {
	Emit(ctx context.Context, j *Job, harvestedTar string) (artifactPath string, err error)
}

// Deps bundles the collaborators a job's Run needs, so the scheduler
// (C6) can construct them once and reuse across a whole build matrix.
type Deps struct {
	Engine    *containerengine.Engine
	Images    *imagecache.Provider
	Fetcher   *source.BreakingFetcher
	Packager  Packager
	BaseImage string // registry ref or local tag the job's image builds from
	HostOut   string // host directory harvested tars/packages land in
}

// Run drives j from Created to Done (or Failed/Cancelled), stopping
// early and returning an error at whichever transition fails. Callers
// that need to observe cancellation mid-job should pass a ctx bound to
// their own cancellation token (§4.5's "Suspension points").
func (j *Job) Run(ctx context.Context, deps Deps) error {
	defer j.cleanup()

	steps := []func(context.Context, Deps) error{
		j.resolveImage,
		j.createContainer,
		j.fetchSource,
		j.runConfigure,
		j.runBuild,
		j.runInstall,
		j.runHarvest,
		j.runPackage,
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			j.State = Cancelled
			j.Err = errctx.Wrap(ErrCancelled, err)
			return j.Err
		}
		if err := step(ctx, deps); err != nil {
			j.State = Failed
			j.Err = err
			return err
		}
	}

	j.State = Done
	return nil
}

func (j *Job) resolveImage(ctx context.Context, deps Deps) error {
	if j.PreparedTag != "" {
		j.baseTag = j.PreparedTag
		j.State = ImageReady
		return nil
	}

	req := imagecache.Request{
		ImageName:       j.Image.Name,
		Target:          j.Target,
		OS:              j.Image.OS,
		BaseImage:       deps.BaseImage,
		Deps:            j.dependencies(),
		SkipDefaultDeps: j.Recipe.SkipDefaultDeps,
	}
	tag, err := deps.Images.Prepare(ctx, req)
	if err != nil {
		return errctx.Wrap(ErrJob, err)
	}
	j.baseTag = tag
	j.State = ImageReady
	return nil
}

func (j *Job) dependencies() []string {
	deps := j.Recipe.BuildDepends.Resolve(j.Image.Name, j.Target)
	return deps
}

func (j *Job) createContainer(ctx context.Context, deps Deps) error {
	j.containerID = fmt.Sprintf("pkger-build-%s-%s-%s-%s", j.Recipe.Name, j.Image.Name, j.Target, uuid.New().String()[:8])
	ctr, err := deps.Engine.StartFromTag(ctx, j.baseTag, j.containerID)
	if err != nil {
		return errctx.Wrap(ErrJob, err)
	}
	j.ctr = ctr

	if err := ctr.MkdirAll(ctx, j.BldDir); err != nil {
		return errctx.Wrap(ErrJob, err)
	}
	if err := ctr.MkdirAll(ctx, j.OutDir); err != nil {
		return errctx.Wrap(ErrJob, err)
	}

	j.State = ContainerUp
	return nil
}

func (j *Job) fetchSource(ctx context.Context, deps Deps) error {
	if err := source.Stage(ctx, deps.Fetcher, source.Adapt(j.ctr), j.Recipe, j.Image.Name, j.BldDir); err != nil {
		return err
	}
	j.State = Fetched
	return nil
}

func (j *Job) runConfigure(ctx context.Context, deps Deps) error {
	if err := j.runPhase(ctx, phaseConfigure, j.Recipe.Configure); err != nil {
		return err
	}
	j.State = Configured
	return nil
}

func (j *Job) runBuild(ctx context.Context, deps Deps) error {
	if err := j.runPhase(ctx, phaseBuild, j.Recipe.Build); err != nil {
		return err
	}
	j.State = Built
	return nil
}

func (j *Job) runInstall(ctx context.Context, deps Deps) error {
	if err := j.runPhase(ctx, phaseInstall, j.Recipe.Install); err != nil {
		return err
	}
	j.State = Installed
	return nil
}

func (j *Job) runPhase(ctx context.Context, name phaseName, phase *recipe.Phase) error {
	rel, err := detectOSRelease(ctx, j.ctr)
	if err != nil {
		return err
	}
	osName := rel.ID
	if j.Image.OS != "" {
		osName = j.Image.OS
	}

	resolver := vars.NewResolver(j.Recipe.Env, buildVars(j, osName, rel.VersionID))
	return runPhase(ctx, j.ctr, name, phase, j.Recipe.Name, j.Image.Name, j.Version, j.Target, resolver, j.Recipe.Env)
}

func (j *Job) runHarvest(ctx context.Context, deps Deps) error {
	tarPath := filepath.Join(deps.HostOut, fmt.Sprintf("%s-%s-%s.tar", j.Recipe.Name, j.Image.Name, j.Target))
	if err := os.MkdirAll(deps.HostOut, 0o755); err != nil {
		return errctx.Wrap(ErrJob, err)
	}
	if err := harvest(ctx, j.ctr, j.OutDir, tarPath, j.Recipe.Exclude); err != nil {
		return err
	}
	j.harvestedTar = tarPath
	j.State = Harvested
	return nil
}

func (j *Job) runPackage(ctx context.Context, deps Deps) error {
	if deps.Packager == nil {
		return nil
	}
	artifact, err := deps.Packager.Emit(ctx, j, j.harvestedTar)
	if err != nil {
		return errctx.Wrap(ErrJob, err)
	}
	j.artifactPath = artifact
	j.State = Packaged
	return nil
}

// cleanup tears down the job's build container, if one was created. It
// runs against a fresh context detached from Run's ctx: on the
// Cancelled exit path that ctx is already done, and a gRPC call made
// with a done context returns immediately without reaching containerd,
// leaving the container running.
func (j *Job) cleanup() {
	if j.ctr == nil {
		return
	}
	slog.Debug("destroying build container", "id", j.containerID, "state", j.State)

	ctx, cancel := context.WithTimeout(context.Background(), cleanupGracePeriod)
	defer cancel()
	j.ctr.Destroy(ctx)
}

// ArtifactPath returns the final emitted package path, valid once State
// has reached Packaged or Done.
func (j *Job) ArtifactPath() string { return j.artifactPath }

// HarvestedTar returns the host-side harvested output archive path,
// valid once State has reached Harvested.
func (j *Job) HarvestedTar() string { return j.harvestedTar }

// SetPreparedTag sets PreparedTag, letting a caller that has already
// resolved this job's image (e.g. the scheduler coalescing concurrent
// jobs for the same image) skip this job's own imagecache lookup.
func (j *Job) SetPreparedTag(tag string) { j.PreparedTag = tag }

// ImageKey identifies the (image, target) bucket this job's dependency
// install cache falls under, for grouping jobs that should share one
// imagecache.Prepare call.
func (j *Job) ImageKey() string { return j.Image.Name + "/" + j.Target }

// Dependencies returns the resolved build-dependency list for this
// job's image/target, exported for callers that prepare images ahead
// of Run (the scheduler's per-image coalescing).
func (j *Job) Dependencies() []string { return j.dependencies() }

// Container returns the job's live build container, non-nil from
// ContainerUp through cleanup. A Packager may exec against it to
// invoke a native packaging tool already present in the image before
// the container is destroyed (§4.7).
func (j *Job) Container() *containerengine.Container { return j.ctr }
