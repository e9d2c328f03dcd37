package job

import (
	"context"
	"strings"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// osRelease holds the fields of /etc/os-release this package cares
// about (§4.5: "OS/version are detected via /etc/os-release inside the
// container or the image's os override").
type osRelease struct {
	ID        string
	VersionID string
}

func detectOSRelease(ctx context.Context, c execer) (osRelease, error) {
	res, err := c.ExecArgs(ctx, nil, "", "cat", "/etc/os-release")
	if err != nil {
		return osRelease{}, errctx.Wrap(ErrJob, err)
	}
	if res.ExitCode != 0 {
		return osRelease{}, errctx.Wrapf(ErrJob, "reading /etc/os-release: exit %d", res.ExitCode)
	}
	return parseOSRelease(res.Stdout), nil
}

func parseOSRelease(content string) osRelease {
	var rel osRelease
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch key {
		case "ID":
			rel.ID = value
		case "VERSION_ID":
			rel.VersionID = value
		}
	}
	return rel
}

// buildVars computes pkger's own $PKGER_* environment, seeded into
// every container exec alongside the recipe's own env map (§4.5).
func buildVars(j *Job, osName, osVersion string) map[string]string {
	return map[string]string{
		"PKGER_OS":         osName,
		"PKGER_OS_VERSION": osVersion,
		"PKGER_BLD_DIR":    j.BldDir,
		"PKGER_OUT_DIR":    j.OutDir,
		"RECIPE":           j.Recipe.Name,
		"RECIPE_VERSION":   j.Version,
		"RECIPE_RELEASE":   j.Recipe.Release,
	}
}
