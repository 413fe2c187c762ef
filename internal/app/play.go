package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stellarquest/sq-cli/internal/config"
	clierr "github.com/stellarquest/sq-cli/internal/errors"
	"github.com/stellarquest/sq-cli/internal/gpenv"
	"github.com/stellarquest/sq-cli/internal/keystore"
	"github.com/stellarquest/sq-cli/internal/token"
)

func (s *runtimeState) newPlayCommand() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Generate a Quest Keypair to play a Quest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runPlay(cmd.Context(), index)
		},
	}
	cmd.Flags().SetNormalizeFunc(indexAliases)
	cmd.Flags().IntVarP(&index, "index", "i", 0, "1-based index of the quest to play")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func (s *runtimeState) runPlay(ctx context.Context, index int) error {
	if index < 1 {
		return clierr.New(clierr.CodeUsage, "--index argument must be a positive integer")
	}

	env, err := s.envStore.Read(ctx)
	if err != nil {
		return err
	}
	tier := config.Tier(env[gpenv.KeyTier])

	// The flag is 1-based but the API is not.
	checkToken, err := s.apiClient(tier).CheckToken(ctx, env[gpenv.KeyAuthToken], s.settings.Series, index-1)
	if err != nil {
		return err
	}

	var payload token.PlayPayload
	if err := token.Decode(checkToken, &payload); err != nil {
		return err
	}

	if err := os.WriteFile(s.settings.SecretKeyPath, []byte(payload.SK), 0o600); err != nil {
		return clierr.Wrap(clierr.CodeInternal, "write secret key file", err)
	}
	s.recordQuestKey(index, payload)

	s.outf("🔐 Quest Keypair for Stellar Quest Series %d Quest %d\n", s.settings.Series, index)
	s.outf("✅ SOROBAN_SECRET_KEY environment variable has been updated\n")
	s.outf("------------------------------------------\n")
	s.outf("Public Key: %s (don't forget to fund me)\n", payload.PK)
	s.outf("Secret Key: %s\n", payload.SK)

	return s.autoFund(ctx, payload.PK)
}

// recordQuestKey is best effort: losing the history never fails a play.
func (s *runtimeState) recordQuestKey(index int, payload token.PlayPayload) {
	store, err := keystore.Open(s.settings.KeystorePath, s.settings.KeystoreLock)
	if err != nil {
		s.logger.Warn("open keystore", zap.Error(err))
		return
	}
	defer store.Close()

	err = store.Put(keystore.QuestKey{
		Series: s.settings.Series,
		Quest:  index,
		PK:     payload.PK,
		SK:     payload.SK,
	})
	if err != nil {
		s.logger.Warn("record quest keypair", zap.Error(err))
	}
}
