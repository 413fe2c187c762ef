package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellarquest/sq-cli/internal/config"
	clierr "github.com/stellarquest/sq-cli/internal/errors"
	"github.com/stellarquest/sq-cli/internal/gpenv"
	"github.com/stellarquest/sq-cli/internal/prompt"
	"github.com/stellarquest/sq-cli/internal/token"
)

func (s *runtimeState) newCheckCommand() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check your Quest answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runCheck(cmd.Context(), index)
		},
	}
	cmd.Flags().SetNormalizeFunc(indexAliases)
	cmd.Flags().IntVarP(&index, "index", "i", 0, "1-based index of the quest to check")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func (s *runtimeState) runCheck(ctx context.Context, index int) error {
	if index < 1 {
		return clierr.New(clierr.CodeUsage, "--index argument must be a positive integer")
	}

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

	if user.PK == "" {
		confirmed, err := s.prompter.Confirm("You haven't connected a Stellar wallet yet.\n   You must do so before you can claim any rewards.\n   Would you like to connect one now?")
		if err != nil {
			return err
		}
		if confirmed {
			return s.workspace.OpenExternal(ctx, s.settings.SiteURL(tier)+"/settings")
		}
		return nil
	}

	if !user.HasTax() || !user.KYCApproved() {
		confirmed, err := s.prompter.Confirm("You haven't completed the KYC flow or uploaded your tax documents yet.\n   You must do so before you can claim any XLM rewards.\n   Would you like to complete your account now?")
		if err != nil {
			return err
		}
		if confirmed {
			return s.workspace.OpenExternal(ctx, s.settings.SiteURL(tier)+"/settings")
		}
		return nil
	}

	checkToken, err := s.apiClient(tier).CheckToken(ctx, authToken, s.settings.Series, index-1)
	if err != nil {
		return err
	}
	claimToken, err := s.apiClient(tier).ClaimToken(ctx, checkToken)
	if err != nil {
		return err
	}
	if claimToken == "" {
		s.outf("🎉 Correct! 🧠\n")
		return nil
	}

	if err := s.envStore.Set(ctx, gpenv.KeyClaimToken, claimToken); err != nil {
		return err
	}

	var payload token.ClaimPayload
	if err := token.Decode(claimToken, &payload); err != nil {
		return err
	}
	if payload.XDR == "" {
		s.outf("🎉 Correct! 🧠\n")
		return nil
	}

	s.outf("%s\n", rewardMessage(payload))

	choice, err := s.prompter.Select("How would you like to sign your reward transaction?", []prompt.Option{
		{Label: "Albedo", Value: "albedo"},
		{Label: "Raw XDR", Value: "xdr"},
	}, "")
	if err != nil {
		return err
	}

	if choice == "albedo" {
		signURL, err := s.workspace.URL(ctx, callbackPort)
		if err != nil {
			return err
		}
		q := signURL.Query()
		q.Set("xdr", payload.XDR)
		q.Set("pubkey", payload.Key)
		q.Set("network", strings.ToLower(payload.Network))
		signURL.RawQuery = q.Encode()
		return s.workspace.OpenExternal(ctx, signURL.String())
	}

	s.outf("-----------------------------\n")
	s.outf("✅ Find the unsigned reward XDR below.\n")
	s.outf("   You can sign it wherever you please (e.g. Laboratory)\n")
	s.outf("   however you MUST submit that signed XDR back here with\n")
	s.outf("   sq submit <signed_xdr>\n")
	s.outf("-----------------------------\n")
	s.outf("%s\n", payload.XDR)
	return nil
}

// rewardMessage formats the win banner. place is 0-based in the token; a
// payload without a rank gets the bare success line only.
func rewardMessage(payload token.ClaimPayload) string {
	var b strings.Builder
	b.WriteString("🎉 Correct!")
	if payload.Place != nil && *payload.Place >= 0 {
		b.WriteString(" You took place ")
		b.WriteString(strconv.Itoa(*payload.Place + 1))
		if payload.Amount > 0 {
			b.WriteString(" and won ")
			b.WriteString(strconv.FormatFloat(payload.Amount, 'f', -1, 64))
			b.WriteString(" XLM")
		}
		trophy := "🏅"
		if *payload.Place <= 2 {
			trophy = "🏆"
		}
		b.WriteString(" ")
		b.WriteString(trophy)
		if payload.Amount > 0 {
			b.WriteString("💰")
		}
	}
	return b.String()
}
