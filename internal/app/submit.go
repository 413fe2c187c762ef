package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/stellarquest/sq-cli/internal/config"
	clierr "github.com/stellarquest/sq-cli/internal/errors"
	"github.com/stellarquest/sq-cli/internal/gpenv"
	"github.com/stellarquest/sq-cli/internal/httpx"
	"github.com/stellarquest/sq-cli/internal/token"
)

func (s *runtimeState) newSubmitCommand() *cobra.Command {
	var xdr string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a signed reward transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runSubmit(cmd.Context(), xdr)
		},
	}
	cmd.Flags().SetNormalizeFunc(xdrAliases)
	cmd.Flags().StringVar(&xdr, "xdr", "", "Signed transaction envelope XDR")
	_ = cmd.MarkFlagRequired("xdr")
	return cmd
}

func (s *runtimeState) runSubmit(ctx context.Context, xdr string) error {
	env, err := s.envStore.Read(ctx)
	if err != nil {
		return err
	}
	tier := config.Tier(env[gpenv.KeyTier])

	claimToken := env[gpenv.KeyClaimToken]
	if claimToken == "" {
		return clierr.New(clierr.CodeUsage, "no claim token found; run the check command first")
	}

	submitErr := s.apiClient(tier).SubmitClaim(ctx, claimToken, xdr)
	if submitErr == nil {
		var payload token.ClaimPayload
		if err := token.Decode(claimToken, &payload); err != nil {
			return err
		}
		s.outf("✅ Transaction %s submitted!\n", payload.Hash)
		return nil
	}

	// A rejected submission may carry a freshly generated claim token, e.g.
	// when the fee bump sequence moved on. Store it and hand the new XDR back
	// for another signing round.
	if remote, ok := httpx.AsRemote(submitErr); ok {
		if fresh := remote.StringField("claimToken"); fresh != "" {
			if err := s.envStore.Set(ctx, gpenv.KeyClaimToken, fresh); err != nil {
				return err
			}
			var payload token.ClaimPayload
			if err := token.Decode(fresh, &payload); err != nil {
				return err
			}
			s.outf("❌ Transaction submission failed but a new XDR has been generated. Please sign it and try again\n")
			s.outf("%s\n", payload.XDR)
			return nil
		}
	}
	return clierr.Wrap(clierr.CodeSubmission, "submit signed transaction", submitErr)
}
