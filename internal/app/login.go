package app

import (
	"context"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stellarquest/sq-cli/internal/api"
	"github.com/stellarquest/sq-cli/internal/config"
	clierr "github.com/stellarquest/sq-cli/internal/errors"
	"github.com/stellarquest/sq-cli/internal/gpenv"
	"github.com/stellarquest/sq-cli/internal/prompt"
)

const (
	discordAuthorizeURL = "https://discord.com/api/oauth2/authorize"
	discordClientIDProd = "775714192161243161"
	discordClientIDDev  = "1024724391759724627"
	discordScope        = "identify email connections"

	// Port the workspace exposes for the OAuth callback and Albedo signing.
	callbackPort = 3000
)

func (s *runtimeState) newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Connect your Stellar Quest account to the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runLogin(cmd.Context())
		},
	}
}

func (s *runtimeState) runLogin(ctx context.Context) error {
	env, err := s.envStore.Read(ctx)
	if err != nil {
		return err
	}
	tier := config.Tier(env[gpenv.KeyTier])

	authToken := env[gpenv.KeyAuthToken]
	if authToken == "" {
		agreed, err := s.confirmRules(ctx)
		if err != nil || !agreed {
			return err
		}

		callback, err := s.workspace.URL(ctx, callbackPort)
		if err != nil {
			return err
		}
		authURL := discordAuthURL(tier, s.settings.APIURL(tier), callback.String())
		s.logger.Debug("opening discord authorization", zap.String("url", authURL))
		if err := s.workspace.OpenExternal(ctx, authURL); err != nil {
			return err
		}

		s.outf("⏳ Waiting for Discord authorization...\n")
		authToken, err = s.awaitAuthToken(ctx)
		if err != nil {
			return err
		}
	}

	user, err := s.fetchUser(ctx, authToken, tier)
	if err != nil {
		return err
	}
	return s.printUserStatus(ctx, user, tier)
}

// confirmRules runs the consent step. Reviewing opens the rules and asks
// again; declining ends the workflow without an error.
func (s *runtimeState) confirmRules(ctx context.Context) (bool, error) {
	for {
		choice, err := s.prompter.Select("Do you agree to abide by our Official Rules?", []prompt.Option{
			{Label: "Yes", Value: "yes"},
			{Label: "Review", Value: "open"},
			{Label: "No", Value: "no"},
		}, "")
		if err != nil {
			return false, err
		}
		if choice == "open" {
			if err := s.workspace.OpenExternal(ctx, s.settings.RulesURL); err != nil {
				return false, err
			}
			continue
		}
		return choice == "yes", nil
	}
}

func discordAuthURL(tier, apiURL, callback string) string {
	clientID := discordClientIDDev
	if tier == config.TierProd {
		clientID = discordClientIDProd
	}
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("redirect_uri", apiURL+"/hooks/discord/code")
	q.Set("response_type", "code")
	q.Set("scope", discordScope)
	q.Set("prompt", "consent")
	q.Set("state", callback)
	return discordAuthorizeURL + "?" + q.Encode()
}

// awaitAuthToken polls the workspace store until the OAuth hook lands
// AUTH_TOKEN, giving up after LoginTimeout.
func (s *runtimeState) awaitAuthToken(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.settings.LoginTimeout)
	defer cancel()

	ticker := time.NewTicker(s.settings.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", clierr.New(clierr.CodeAuth, "timed out waiting for Discord authorization")
		case <-ticker.C:
			env, err := s.envStore.Read(ctx)
			if err != nil {
				return "", err
			}
			if tok := env[gpenv.KeyAuthToken]; tok != "" {
				return tok, nil
			}
		}
	}
}

// fetchUser loads the remote account snapshot. A failure clears the stored
// tokens before the error surfaces, so a stale session never wedges the CLI.
func (s *runtimeState) fetchUser(ctx context.Context, authToken, tier string) (api.User, error) {
	user, err := s.apiClient(tier).User(ctx, authToken)
	if err != nil {
		_ = s.runLogout(ctx, true)
		return api.User{}, err
	}
	return user, nil
}
