// Package gpenv reads and mutates the workspace-scoped persistent variable
// store exposed by the `gp env` tool.
package gpenv

import (
	"context"
	"os"
	"os/exec"
	"strings"

	clierr "github.com/stellarquest/sq-cli/internal/errors"
)

// Keys managed in the persistent store.
const (
	KeyAuthToken    = "AUTH_TOKEN"
	KeyAccessToken  = "ACCESS_TOKEN"
	KeyClaimToken   = "CLAIM_TOKEN"
	KeyRefreshToken = "REFRESH_TOKEN"
	KeyTier         = "ENV"
)

// Only ENV may leak in from the process environment; everything else comes
// from the persistent store.
var processAllowList = map[string]bool{KeyTier: true}

type Env map[string]string

// Store is the workspace variable store. Implementations must read fresh on
// every call; values are never cached across invocations.
type Store interface {
	Read(ctx context.Context) (Env, error)
	Set(ctx context.Context, key, value string) error
	Unset(ctx context.Context, key string) error
}

// GP shells out to the `gp env` workspace tool.
type GP struct {
	environ func() []string
}

func NewGP() *GP {
	return &GP{environ: os.Environ}
}

func (g *GP) Read(ctx context.Context) (Env, error) {
	out, err := exec.CommandContext(ctx, "gp", "env").Output()
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "list workspace environment", err)
	}
	env := ParseLines(string(out))
	Merge(env, g.environ())
	return env, nil
}

func (g *GP) Set(ctx context.Context, key, value string) error {
	if err := exec.CommandContext(ctx, "gp", "env", key+"="+value).Run(); err != nil {
		return clierr.Wrap(clierr.CodeInternal, "set workspace variable "+key, err)
	}
	return nil
}

func (g *GP) Unset(ctx context.Context, key string) error {
	if err := exec.CommandContext(ctx, "gp", "env", "-u", key).Run(); err != nil {
		return clierr.Wrap(clierr.CodeInternal, "unset workspace variable "+key, err)
	}
	return nil
}

// ParseLines parses KEY=VALUE lines, splitting on the first = only.
func ParseLines(raw string) Env {
	env := Env{}
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		env[key] = value
	}
	return env
}

// Merge folds allow-listed process environment entries into env. Persistent
// store values win for every non-allow-listed key.
func Merge(env Env, processEnv []string) {
	for _, entry := range processEnv {
		key, value, found := strings.Cut(entry, "=")
		if !found || !processAllowList[key] {
			continue
		}
		env[key] = value
	}
}
