package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stellarquest/sq-cli/internal/api"
	"github.com/stellarquest/sq-cli/internal/config"
	clierr "github.com/stellarquest/sq-cli/internal/errors"
	"github.com/stellarquest/sq-cli/internal/friendbot"
	"github.com/stellarquest/sq-cli/internal/gitpod"
	"github.com/stellarquest/sq-cli/internal/gpenv"
	"github.com/stellarquest/sq-cli/internal/httpx"
	"github.com/stellarquest/sq-cli/internal/prompt"
	"github.com/stellarquest/sq-cli/internal/version"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{stdout: stdout, stderr: stderr}
}

type runtimeState struct {
	runner   *Runner
	flags    config.GlobalFlags
	settings config.Settings
	logger   *zap.Logger

	http      *httpx.Client
	envStore  gpenv.Store
	workspace gitpod.Workspace
	prompter  prompt.Prompter
	fb        *friendbot.Client
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r}
	root := state.newRootCommand()
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	err = normalizeRunError(err)
	if err == nil {
		return 0
	}
	state.renderError(err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Stellar Quest helper for cloud workspaces",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings

			if s.logger == nil {
				s.logger = newLogger(settings.Verbose)
			}
			if s.http == nil {
				s.http = httpx.New(settings.Timeout)
			}
			if s.envStore == nil {
				s.envStore = gpenv.NewGP()
			}
			if s.workspace == nil {
				s.workspace = gitpod.NewCLI()
			}
			if s.prompter == nil {
				s.prompter = prompt.NewTerminal()
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "API request timeout")
	cmd.PersistentFlags().BoolVar(&s.flags.Verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(s.newLoginCommand())
	cmd.AddCommand(s.newLogoutCommand())
	cmd.AddCommand(s.newUserCommand())
	cmd.AddCommand(s.newOpenCommand())
	cmd.AddCommand(s.newPullCommand())
	cmd.AddCommand(s.newPlayCommand())
	cmd.AddCommand(s.newFundCommand())
	cmd.AddCommand(s.newCheckCommand())
	cmd.AddCommand(s.newSubmitCommand())
	cmd.AddCommand(s.newKeysCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func (s *runtimeState) apiClient(tier string) *api.Client {
	return api.New(s.http, s.settings.APIURL(tier))
}

func (s *runtimeState) friendbotClient() *friendbot.Client {
	if s.fb == nil {
		s.fb = friendbot.New(s.http, s.settings.SandboxURL, s.settings.FriendbotURL)
	}
	return s.fb
}

func (s *runtimeState) outf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.runner.stdout, format, args...)
}

// renderError prints the failure the way the platform's users expect it:
// pretty JSON for structured API errors, raw text otherwise.
func (s *runtimeState) renderError(err error) {
	if remote, ok := httpx.AsRemote(err); ok {
		switch payload := remote.Payload().(type) {
		case string:
			_, _ = fmt.Fprintln(s.runner.stderr, payload)
		default:
			buf, mErr := json.MarshalIndent(payload, "", "  ")
			if mErr != nil {
				_, _ = fmt.Fprintln(s.runner.stderr, err.Error())
				return
			}
			_, _ = fmt.Fprintln(s.runner.stderr, string(buf))
		}
		return
	}
	_, _ = fmt.Fprintln(s.runner.stderr, err.Error())
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// indexAliases maps the historical index flag spellings onto --index.
func indexAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "number", "n", "quest", "q":
		name = "index"
	}
	return pflag.NormalizedName(name)
}

func keyAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "addr", "address", "acct", "account":
		name = "key"
	}
	return pflag.NormalizedName(name)
}

func xdrAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "tx" {
		name = "xdr"
	}
	return pflag.NormalizedName(name)
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
