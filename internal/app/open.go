package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/stellarquest/sq-cli/internal/config"
	"github.com/stellarquest/sq-cli/internal/gpenv"
)

func (s *runtimeState) newOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the Stellar Quest website",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOpen(cmd.Context())
		},
	}
}

func (s *runtimeState) runOpen(ctx context.Context) error {
	env, err := s.envStore.Read(ctx)
	if err != nil {
		return err
	}
	tier := config.Tier(env[gpenv.KeyTier])
	return s.workspace.OpenExternal(ctx, s.settings.SiteURL(tier))
}
