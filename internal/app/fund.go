package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/stellarquest/sq-cli/internal/prompt"
)

func (s *runtimeState) newFundCommand() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Create and fund an account on the Futurenet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runFund(cmd.Context(), key)
		},
	}
	cmd.Flags().SetNormalizeFunc(keyAliases)
	cmd.Flags().StringVarP(&key, "key", "k", "", "Public key of the account to fund")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func (s *runtimeState) runFund(ctx context.Context, pk string) error {
	funded, err := s.friendbotClient().Funded(ctx, pk)
	if err != nil {
		return err
	}
	if funded {
		s.outf("👀 Your account has already been funded.\n")
		return nil
	}
	return s.friendbotClient().Fund(ctx, pk)
}

// autoFund is the post-play variant: it prompts before funding and stays
// quiet when the account is already funded.
func (s *runtimeState) autoFund(ctx context.Context, pk string) error {
	funded, err := s.friendbotClient().Funded(ctx, pk)
	if err != nil {
		return err
	}
	if funded {
		return nil
	}

	s.outf("------------------------------------------\n")
	choice, err := s.prompter.Select("🏧 Do you want to fund this account now?", []prompt.Option{
		{Label: "💁 Yes please!", Value: "yes"},
		{Label: "🙅 No thanks", Value: "no"},
	}, "yes")
	if err != nil {
		return err
	}
	if choice != "yes" {
		return nil
	}
	return s.friendbotClient().Fund(ctx, pk)
}
