package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/stellarquest/sq-cli/internal/api"
	"github.com/stellarquest/sq-cli/internal/config"
	"github.com/stellarquest/sq-cli/internal/gpenv"
)

func (s *runtimeState) newUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "user",
		Aliases: []string{"me"},
		Short:   "Print out information about yourself",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runUser(cmd.Context())
		},
	}
}

func (s *runtimeState) runUser(ctx context.Context) error {
	env, err := s.envStore.Read(ctx)
	if err != nil {
		return err
	}
	tier := config.Tier(env[gpenv.KeyTier])

	authToken := env[gpenv.KeyAuthToken]
	if authToken == "" {
		s.outf("Please run the <login> command first\n")
		return nil
	}

	user, err := s.fetchUser(ctx, authToken, tier)
	if err != nil {
		return err
	}
	return s.printUserStatus(ctx, user, tier)
}

func (s *runtimeState) printUserStatus(ctx context.Context, user api.User, tier string) error {
	s.outf("-----------------------------\n")
	s.outf("✅ Successfully authenticated %s#%s\n", user.Discord.Username, user.Discord.Discriminator)
	s.outf("-----------------------------\n")

	missing := false

	if user.PK != "" {
		s.outf("   ✅ Stellar wallet %s is connected\n", abbreviateKey(user.PK))
	} else {
		missing = true
		s.outf("   ❌ Please connect your Stellar wallet\n")
	}

	if user.KYCApproved() {
		s.outf("   ✅ KYC flow has been completed\n")
	} else {
		missing = true
		s.outf("   ❌ Please complete the KYC flow\n")
	}

	if user.HasTax() {
		s.outf("   ✅ Tax documents have been uploaded\n")
	} else {
		missing = true
		s.outf("   ❌ Please upload your tax documents\n")
	}

	s.outf("-----------------------------\n")

	if !missing {
		return nil
	}

	confirmed, err := s.prompter.Confirm("Your account is not yet fully complete.\n   This could affect your ability to claim either NFT or XLM rewards.\n   Would you like to complete your Stellar Quest account?")
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}
	return s.workspace.OpenExternal(ctx, s.settings.SiteURL(tier)+"/settings")
}

func abbreviateKey(pk string) string {
	if len(pk) <= 12 {
		return pk
	}
	return pk[:6] + "..." + pk[len(pk)-6:]
}
