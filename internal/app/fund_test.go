package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stellarquest/sq-cli/internal/gpenv"
	"github.com/stellarquest/sq-cli/internal/prompt"
)

// fundFixture serves both the sandbox account lookup and the friendbot
// endpoint, recording friendbot hits.
func fundFixture(t *testing.T, fundedAccounts map[string]bool) (*httptest.Server, *[]string) {
	t.Helper()
	var fundRequests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/accounts/") {
			pk := strings.TrimPrefix(r.URL.Path, "/accounts/")
			if fundedAccounts[pk] {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
			return
		}
		fundRequests = append(fundRequests, r.URL.Query().Get("addr"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &fundRequests
}

func TestFundAlreadyFunded(t *testing.T) {
	srv, fundRequests := fundFixture(t, map[string]bool{"GFUNDED": true})

	state, out := newTestState(t, gpenv.NewMemory(nil))
	state.settings.SandboxURL = srv.URL
	state.settings.FriendbotURL = srv.URL

	if err := state.runFund(context.Background(), "GFUNDED"); err != nil {
		t.Fatalf("runFund failed: %v", err)
	}
	if !strings.Contains(out.String(), "already been funded") {
		t.Fatalf("expected already funded message, got %q", out.String())
	}
	if len(*fundRequests) != 0 {
		t.Fatalf("expected no friendbot calls, got %v", *fundRequests)
	}
}

func TestFundRequestsFriendbot(t *testing.T) {
	srv, fundRequests := fundFixture(t, nil)

	state, _ := newTestState(t, gpenv.NewMemory(nil))
	state.settings.SandboxURL = srv.URL
	state.settings.FriendbotURL = srv.URL

	if err := state.runFund(context.Background(), "GNEW"); err != nil {
		t.Fatalf("runFund failed: %v", err)
	}
	if len(*fundRequests) != 1 || (*fundRequests)[0] != "GNEW" {
		t.Fatalf("expected one friendbot call for GNEW, got %v", *fundRequests)
	}
}

func TestAutoFundPromptsBeforeFunding(t *testing.T) {
	srv, fundRequests := fundFixture(t, nil)

	state, _ := newTestState(t, gpenv.NewMemory(nil))
	state.settings.SandboxURL = srv.URL
	state.settings.FriendbotURL = srv.URL
	state.prompter = &prompt.Script{Answers: []string{"yes"}}

	if err := state.autoFund(context.Background(), "GNEW"); err != nil {
		t.Fatalf("autoFund failed: %v", err)
	}
	if len(*fundRequests) != 1 {
		t.Fatalf("expected friendbot call after confirmation, got %v", *fundRequests)
	}
}

func TestAutoFundDeclined(t *testing.T) {
	srv, fundRequests := fundFixture(t, nil)

	state, _ := newTestState(t, gpenv.NewMemory(nil))
	state.settings.SandboxURL = srv.URL
	state.settings.FriendbotURL = srv.URL
	state.prompter = &prompt.Script{Answers: []string{"no"}}

	if err := state.autoFund(context.Background(), "GNEW"); err != nil {
		t.Fatalf("autoFund failed: %v", err)
	}
	if len(*fundRequests) != 0 {
		t.Fatalf("expected no friendbot call, got %v", *fundRequests)
	}
}

func TestAutoFundSkipsFundedAccount(t *testing.T) {
	srv, fundRequests := fundFixture(t, map[string]bool{"GFUNDED": true})

	state, out := newTestState(t, gpenv.NewMemory(nil))
	state.settings.SandboxURL = srv.URL
	state.settings.FriendbotURL = srv.URL
	script := &prompt.Script{}
	state.prompter = script

	if err := state.autoFund(context.Background(), "GFUNDED"); err != nil {
		t.Fatalf("autoFund failed: %v", err)
	}
	if len(script.Messages) != 0 {
		t.Fatalf("expected no prompt, got %v", script.Messages)
	}
	if len(*fundRequests) != 0 || out.Len() != 0 {
		t.Fatalf("expected silent no-op, got requests %v output %q", *fundRequests, out.String())
	}
}
