package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/pkgerd/internal/pkger"
)

// VersionCmd implements 'pkger version'.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(pkger.VersionString())
	return nil
}
