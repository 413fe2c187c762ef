package app

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/stellarquest/sq-cli/internal/keystore"
)

func (s *runtimeState) newKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the Quest Keypairs generated on this workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runKeys(cmd.Context())
		},
	}
}

func (s *runtimeState) runKeys(_ context.Context) error {
	store, err := keystore.Open(s.settings.KeystorePath, s.settings.KeystoreLock)
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.List()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		s.outf("No quest keypairs recorded yet. Run the play command first.\n")
		return nil
	}
	for _, k := range keys {
		s.outf("Series %d Quest %d: %s (generated %s)\n", k.Series, k.Quest, k.PK, k.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
