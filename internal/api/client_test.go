package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stellarquest/sq-cli/internal/httpx"
)

func newTestClient(srvURL string) *Client {
	return New(httpx.New(2*time.Second), srvURL)
}

func TestUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer auth-tok" {
			t.Errorf("unexpected authorization %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"discord": {"username": "quester", "discriminator": "0001"},
			"pk": "GQUESTER",
			"kyc": {"status": "approved"},
			"tax": {"form": "w9"}
		}`))
	}))
	defer srv.Close()

	user, err := newTestClient(srv.URL).User(context.Background(), "auth-tok")
	if err != nil {
		t.Fatalf("User failed: %v", err)
	}
	if user.Discord.Username != "quester" || user.PK != "GQUESTER" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !user.KYCApproved() || !user.HasTax() {
		t.Fatalf("expected complete account, got %+v", user)
	}
}

func TestUserIncompleteAccount(t *testing.T) {
	cases := []struct {
		name string
		body string
		tax  bool
		kyc  bool
	}{
		{"null tax", `{"kyc": {"status": "approved"}, "tax": null}`, false, true},
		{"false tax", `{"kyc": {"status": "approved"}, "tax": false}`, false, true},
		{"missing tax", `{"kyc": {"status": "approved"}}`, false, true},
		{"pending kyc", `{"kyc": {"status": "pending"}, "tax": true}`, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			user, err := newTestClient(srv.URL).User(context.Background(), "tok")
			if err != nil {
				t.Fatalf("User failed: %v", err)
			}
			if user.HasTax() != tc.tax {
				t.Fatalf("HasTax = %v, want %v", user.HasTax(), tc.tax)
			}
			if user.KYCApproved() != tc.kyc {
				t.Fatalf("KYCApproved = %v, want %v", user.KYCApproved(), tc.kyc)
			}
		})
	}
}

func TestCheckToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/register/practice" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("series") != "5" || q.Get("index") != "2" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"checkToken": "check-jwt"}`))
	}))
	defer srv.Close()

	tok, err := newTestClient(srv.URL).CheckToken(context.Background(), "auth", 5, 2)
	if err != nil {
		t.Fatalf("CheckToken failed: %v", err)
	}
	if tok != "check-jwt" {
		t.Fatalf("unexpected token %q", tok)
	}
}

func TestCheckTokenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).CheckToken(context.Background(), "auth", 5, 0); err == nil {
		t.Fatal("expected error for missing check token")
	}
}

func TestClaimToken(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{"json string", "application/json", `"claim-jwt"`, "claim-jwt"},
		{"json object", "application/json", `{"claimToken": "claim-jwt"}`, "claim-jwt"},
		{"raw text", "text/plain", "  claim-jwt\n", "claim-jwt"},
		{"empty body means solved", "text/plain", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/answer/check" || r.Method != http.MethodPost {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer check-jwt" {
					t.Errorf("unexpected authorization %q", got)
				}
				w.Header().Set("Content-Type", tc.contentType)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			tok, err := newTestClient(srv.URL).ClaimToken(context.Background(), "check-jwt")
			if err != nil {
				t.Fatalf("ClaimToken failed: %v", err)
			}
			if tok != tc.want {
				t.Fatalf("got %q, want %q", tok, tc.want)
			}
		})
	}
}

func TestSubmitClaim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prize/claim" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			InnerTx string `json:"innerTx"`
		}
		if err := decodeJSON(r, &body); err != nil || body.InnerTx != "signed-xdr" {
			t.Errorf("unexpected body %+v err %v", body, err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestClient(srv.URL).SubmitClaim(context.Background(), "claim-jwt", "signed-xdr"); err != nil {
		t.Fatalf("SubmitClaim failed: %v", err)
	}
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
