package app

import (
	"context"
	"os/exec"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (s *runtimeState) newPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Pull any new or missing Quests into the local repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runPull(cmd.Context())
		},
	}
}

// runPull syncs the quest repository taking upstream changes on conflict.
// Individual steps may fail on a clean tree (stash with nothing to stash);
// the sequence continues regardless, matching the platform tooling.
func (s *runtimeState) runPull(ctx context.Context) error {
	steps := [][]string{
		{"stash"},
		{"fetch", "--all"},
		{"pull", "-X", "theirs"},
		{"stash", "pop"},
	}
	for _, step := range steps {
		cmd := exec.CommandContext(ctx, "git", step...)
		cmd.Stdout = s.runner.stdout
		cmd.Stderr = s.runner.stderr
		if err := cmd.Run(); err != nil {
			s.logger.Debug("git step failed", zap.Strings("args", step), zap.Error(err))
		}
	}
	return nil
}
