package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stellarquest/sq-cli/internal/config"
	"github.com/stellarquest/sq-cli/internal/gpenv"
	"github.com/stellarquest/sq-cli/internal/httpx"
	"github.com/stellarquest/sq-cli/internal/prompt"
)

const completeUserJSON = `{
	"discord": {"username": "quester", "discriminator": "0001"},
	"pk": "GQUESTER",
	"kyc": {"status": "approved"},
	"tax": true
}`

type fakeWorkspace struct {
	portURL string
	opened  []string
}

func (f *fakeWorkspace) URL(_ context.Context, _ int) (*url.URL, error) {
	return url.Parse(f.portURL)
}

func (f *fakeWorkspace) OpenExternal(_ context.Context, rawURL string) error {
	f.opened = append(f.opened, rawURL)
	return nil
}

func newTestState(t *testing.T, env *gpenv.Memory) (*runtimeState, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	dir := t.TempDir()
	return &runtimeState{
		runner: NewRunnerWithWriters(out, io.Discard),
		settings: config.Settings{
			RulesURL:      "https://rules.example.test",
			SecretKeyPath: filepath.Join(dir, "secret-key"),
			Series:        5,
			Timeout:       2 * time.Second,
			PollInterval:  5 * time.Millisecond,
			LoginTimeout:  250 * time.Millisecond,
			KeystorePath:  filepath.Join(dir, "keys.db"),
			KeystoreLock:  filepath.Join(dir, "keys.lock"),
		},
		logger:    zap.NewNop(),
		http:      httpx.New(2 * time.Second),
		envStore:  env,
		workspace: &fakeWorkspace{portURL: "https://3000-workspace.example.test"},
		prompter:  &prompt.Script{},
	}, out
}

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(body) + ".sig"
}
