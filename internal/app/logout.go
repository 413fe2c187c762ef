package app

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stellarquest/sq-cli/internal/gpenv"
)

func (s *runtimeState) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Disconnect your Stellar Quest account from the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runLogout(cmd.Context(), false)
		},
	}
}

// runLogout unsets all four token keys concurrently and waits for every
// unset to finish. silent suppresses the farewell when logout runs as a side
// effect of an authentication failure.
func (s *runtimeState) runLogout(ctx context.Context, silent bool) error {
	keys := []string{
		gpenv.KeyAuthToken,
		gpenv.KeyAccessToken,
		gpenv.KeyClaimToken,
		gpenv.KeyRefreshToken,
	}

	var g errgroup.Group
	for _, key := range keys {
		key := key
		g.Go(func() error {
			return s.envStore.Unset(ctx, key)
		})
	}
	err := g.Wait()

	if !silent {
		s.outf("👋 Bye bye\n")
	}
	return err
}
