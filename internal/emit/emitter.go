package emit

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cruciblehq/pkgerd/internal/errctx"
	"github.com/cruciblehq/pkgerd/internal/job"
	"github.com/cruciblehq/pkgerd/internal/recipe"
)

// Config configures an Emitter (§4.7).
type Config struct {
	OutputDir string // host directory packages land under, per <output_dir>/<image_name>/<filename>
	GPGKey    string // path to an armored secret key; empty disables signing
	GPGName   string // signer identity rpm --addsign/dpkg-sig expect
	NoSign    bool   // --no-sign override: skip signing even when GPGKey/GPGName are set
}

// Emitter implements job.Packager, turning a job's harvested install
// tree into a distribution-native package (§4.7).
type Emitter struct {
	cfg  Config
	sign *signer
}

// New constructs an Emitter from cfg.
func New(cfg Config) *Emitter {
	return &Emitter{cfg: cfg, sign: newSigner(cfg)}
}

var _ job.Packager = (*Emitter)(nil)

// buildSpec is everything a format's build* function needs, pulled out
// of *job.Job so the per-format logic can be exercised against a fake
// container without a live build job.
type buildSpec struct {
	Recipe  recipe.Recipe
	Image   string
	Version string
	OutDir  string
	Arch    string
}

// Emit renders the target format's descriptor, runs its native
// packaging tool (inside j's still-live build container, except for
// gzip which needs none), signs the result when configured, and
// copies the artifact to <output_dir>/<image_name>/<filename>.
func (e *Emitter) Emit(ctx context.Context, j *job.Job, harvestedTar string) (string, error) {
	format, err := ParseFormat(j.Target)
	if err != nil {
		return "", err
	}

	destDir := filepath.Join(e.cfg.OutputDir, j.Image.Name)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}

	if format == FormatGzip {
		return emitGzip(j.Recipe, j.Version, harvestedTar, destDir)
	}

	ctr := j.Container()
	if ctr == nil {
		return "", errctx.Wrapf(ErrEmit, "job has no live container to package from")
	}

	spec := buildSpec{Recipe: j.Recipe, Image: j.Image.Name, Version: j.Version, OutDir: j.OutDir, Arch: j.Recipe.Arch}
	if spec.Arch == "" {
		spec.Arch, err = detectArch(ctx, ctr)
		if err != nil {
			return "", err
		}
	}

	filename := format.OutputName(spec.Recipe, spec.Version, spec.Arch)
	destPath := filepath.Join(destDir, filename)

	var artifact string
	switch format {
	case FormatRPM:
		artifact, err = buildRPM(ctx, ctr, spec)
	case FormatDeb:
		artifact, err = buildDeb(ctx, ctr, spec)
	case FormatPkg:
		artifact, err = buildPkg(ctx, ctr, spec)
	case FormatApk:
		artifact, err = buildApk(ctx, ctr, spec)
	default:
		return "", errctx.Wrapf(ErrEmit, "unsupported target %q", j.Target)
	}
	if err != nil {
		return "", err
	}

	if format.Signable() {
		if err := e.sign.signIfConfigured(ctx, ctr, format, artifact); err != nil {
			return "", err
		}
	}

	if err := copyArtifactOut(ctx, ctr, artifact, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

func emitGzip(r recipe.Recipe, version, harvestedTar, destDir string) (string, error) {
	filename := FormatGzip.OutputName(r, version, "")
	destPath := filepath.Join(destDir, filename)

	in, err := os.Open(harvestedTar)
	if err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	defer in.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	if err := gz.Close(); err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	return destPath, nil
}

const stagingDir = "/tmp/pkger-emit"

// buildRPM renders a spec file, stages an rpmbuild topdir inside ctr,
// and runs rpmbuild --buildroot against the job's already-installed
// output tree (§4.7).
func buildRPM(ctx context.Context, ctr container, spec buildSpec) (string, error) {
	installedBytes, err := installedSize(ctx, ctr, spec.OutDir)
	if err != nil {
		return "", err
	}
	content := RPMSpec(spec.Recipe, spec.Image, spec.Version, spec.Arch, installedBytes)

	topdir := stagingDir + "/rpmbuild"
	specName := spec.Recipe.Name + ".spec"
	if err := stageFile(ctx, ctr, topdir+"/SPECS", specName, []byte(content)); err != nil {
		return "", err
	}
	for _, sub := range []string{"BUILD", "RPMS", "SOURCES", "SRPMS"} {
		if err := ctr.MkdirAll(ctx, topdir+"/"+sub); err != nil {
			return "", errctx.Wrap(ErrEmit, err)
		}
	}

	res, err := ctr.ExecArgs(ctx, nil, "",
		"rpmbuild",
		"--define", "_topdir "+topdir,
		"--buildroot", spec.OutDir,
		"-bb", topdir+"/SPECS/"+specName,
	)
	if err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	if res.ExitCode != 0 {
		return "", errctx.Wrapf(ErrEmit, "rpmbuild: exit code %d: %s", res.ExitCode, res.Stderr)
	}

	return fmt.Sprintf("%s/RPMS/%s/%s-%s-%s.%s.rpm", topdir, spec.Arch, spec.Recipe.Name, spec.Version, spec.Recipe.Release, spec.Arch), nil
}

// buildDeb writes DEBIAN/control directly into the job's output tree
// (already laid out as the eventual package root) and runs dpkg-deb
// against it (§4.7).
func buildDeb(ctx context.Context, ctr container, spec buildSpec) (string, error) {
	installedBytes, err := installedSize(ctx, ctr, spec.OutDir)
	if err != nil {
		return "", err
	}
	control := DebControl(spec.Recipe, spec.Image, spec.Version, spec.Arch, installedBytes)

	debianDir := spec.OutDir + "/DEBIAN"
	if err := stageFile(ctx, ctr, debianDir, "control", []byte(control)); err != nil {
		return "", err
	}

	outPath := stagingDir + "/output.deb"
	if err := ctr.MkdirAll(ctx, stagingDir); err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	res, err := ctr.ExecArgs(ctx, nil, "", "dpkg-deb", "--build", "--root-owner-group", spec.OutDir, outPath)
	if err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	if res.ExitCode != 0 {
		return "", errctx.Wrapf(ErrEmit, "dpkg-deb: exit code %d: %s", res.ExitCode, res.Stderr)
	}
	return outPath, nil
}

// buildPkg stages a PKGBUILD (and .install scriptlet, if the recipe
// carries one) and runs makepkg (§4.7). package() copies directly from
// spec.OutDir, so dependency/checksum/signature checks that assume a
// normal source download are disabled.
func buildPkg(ctx context.Context, ctr container, spec buildSpec) (string, error) {
	pkgbuild := PKGBUILD(spec.Recipe, spec.Image, spec.Version, spec.Arch, spec.OutDir)

	buildDir := stagingDir + "/pkg"
	if err := stageFile(ctx, ctr, buildDir, "PKGBUILD", []byte(pkgbuild)); err != nil {
		return "", err
	}
	if spec.Recipe.Pkg.Install != "" {
		if err := stageFile(ctx, ctr, buildDir, spec.Recipe.Name+".install", []byte(spec.Recipe.Pkg.Install)); err != nil {
			return "", err
		}
	}

	res, err := ctr.ExecArgs(ctx, nil, buildDir, "makepkg", "--nodeps", "--skipchecksums", "--skipinteg", "--force")
	if err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	if res.ExitCode != 0 {
		return "", errctx.Wrapf(ErrEmit, "makepkg: exit code %d: %s", res.ExitCode, res.Stderr)
	}
	return fmt.Sprintf("%s/%s-%s-%s-%s.pkg.tar.zst", buildDir, spec.Recipe.Name, spec.Version, spec.Recipe.Release, spec.Arch), nil
}

// buildApk stages an APKBUILD and runs abuild (§4.7), the same way
// buildPkg drives makepkg.
func buildApk(ctx context.Context, ctr container, spec buildSpec) (string, error) {
	apkbuild := APKBUILD(spec.Recipe, spec.Image, spec.Version, spec.Arch, spec.OutDir)

	buildDir := stagingDir + "/apk"
	if err := stageFile(ctx, ctr, buildDir, "APKBUILD", []byte(apkbuild)); err != nil {
		return "", err
	}

	res, err := ctr.ExecArgs(ctx, nil, buildDir, "abuild", "-F", "-r")
	if err != nil {
		return "", errctx.Wrap(ErrEmit, err)
	}
	if res.ExitCode != 0 {
		return "", errctx.Wrapf(ErrEmit, "abuild: exit code %d: %s", res.ExitCode, res.Stderr)
	}
	return fmt.Sprintf("~/packages/%s/%s/%s-%s-%s.apk", spec.Recipe.Name, spec.Arch, spec.Recipe.Name, spec.Version, spec.Recipe.Release), nil
}

func copyArtifactOut(ctx context.Context, ctr container, containerPath, destPath string) error {
	var archive bytes.Buffer
	if err := ctr.CopyFrom(ctx, &archive, containerPath); err != nil {
		return errctx.Wrap(ErrEmit, err)
	}

	// CopyFrom yields a tar stream holding the single artifact file.
	tr := tar.NewReader(&archive)
	if _, err := tr.Next(); err != nil {
		return errctx.Wrap(ErrEmit, err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return errctx.Wrap(ErrEmit, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, tr); err != nil {
		return errctx.Wrap(ErrEmit, err)
	}
	return nil
}
