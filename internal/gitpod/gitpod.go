// Package gitpod wraps the workspace helper commands that expose ports and
// open URLs in the user's browser.
package gitpod

import (
	"context"
	"net/url"
	"os/exec"
	"strconv"
	"strings"

	clierr "github.com/stellarquest/sq-cli/internal/errors"
)

// Workspace is the externally-reachable workspace surface: discovering the
// public URL for a local port and opening URLs in the user's browser.
type Workspace interface {
	URL(ctx context.Context, port int) (*url.URL, error)
	OpenExternal(ctx context.Context, rawURL string) error
}

// CLI shells out to the gp tool.
type CLI struct{}

func NewCLI() *CLI { return &CLI{} }

func (c *CLI) URL(ctx context.Context, port int) (*url.URL, error) {
	out, err := exec.CommandContext(ctx, "gp", "url", strconv.Itoa(port)).Output()
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "discover workspace url", err)
	}
	parsed, err := url.Parse(strings.TrimSpace(string(out)))
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "parse workspace url", err)
	}
	return parsed, nil
}

func (c *CLI) OpenExternal(ctx context.Context, rawURL string) error {
	if err := exec.CommandContext(ctx, "gp", "preview", "--external", rawURL).Run(); err != nil {
		return clierr.Wrap(clierr.CodeInternal, "open external url", err)
	}
	return nil
}
