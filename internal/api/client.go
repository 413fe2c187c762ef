// Package api is the Stellar Quest REST API client.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	clierr "github.com/stellarquest/sq-cli/internal/errors"
	"github.com/stellarquest/sq-cli/internal/httpx"
)

// User is the remote account snapshot. Tax is a raw marker: the API only
// guarantees presence, not shape.
type User struct {
	Discord struct {
		Username      string `json:"username"`
		Discriminator string `json:"discriminator"`
	} `json:"discord"`
	PK  string `json:"pk"`
	KYC struct {
		Status string `json:"status"`
	} `json:"kyc"`
	Tax json.RawMessage `json:"tax"`
}

func (u User) HasTax() bool {
	trimmed := strings.TrimSpace(string(u.Tax))
	return trimmed != "" && trimmed != "null" && trimmed != "false"
}

func (u User) KYCApproved() bool {
	return u.KYC.Status == "approved"
}

type Client struct {
	http    *httpx.Client
	baseURL string
}

func New(httpClient *httpx.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: baseURL}
}

func (c *Client) User(ctx context.Context, authToken string) (User, error) {
	resp, err := c.http.Do(ctx, http.MethodGet, c.baseURL+"/user", authToken, nil)
	if err != nil {
		return User{}, err
	}
	var user User
	if err := resp.Decode(&user); err != nil {
		return User{}, err
	}
	return user, nil
}

// CheckToken registers a practice run and returns the per-quest check token.
// index is the 0-based API index.
func (c *Client) CheckToken(ctx context.Context, authToken string, series, index int) (string, error) {
	url := fmt.Sprintf("%s/register/practice?series=%d&index=%d", c.baseURL, series, index)
	resp, err := c.http.Do(ctx, http.MethodPost, url, authToken, nil)
	if err != nil {
		return "", err
	}
	var body struct {
		CheckToken string `json:"checkToken"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", err
	}
	if body.CheckToken == "" {
		return "", clierr.New(clierr.CodeRemote, "check token missing from response")
	}
	return body.CheckToken, nil
}

// ClaimToken exchanges a check token for a claim token. An empty return with
// a nil error means the quest was already solved; the API signals this with
// an empty success body rather than an error.
func (c *Client) ClaimToken(ctx context.Context, checkToken string) (string, error) {
	resp, err := c.http.Do(ctx, http.MethodPost, c.baseURL+"/answer/check", checkToken, nil)
	if err != nil {
		return "", err
	}
	if resp.JSON != nil {
		var tok string
		if err := json.Unmarshal(resp.JSON, &tok); err == nil {
			return tok, nil
		}
		var body struct {
			ClaimToken string `json:"claimToken"`
		}
		if err := json.Unmarshal(resp.JSON, &body); err == nil {
			return body.ClaimToken, nil
		}
		return "", clierr.New(clierr.CodeRemote, "unexpected answer check response")
	}
	return strings.TrimSpace(resp.Text), nil
}

// SubmitClaim submits a signed inner transaction against a claim token.
func (c *Client) SubmitClaim(ctx context.Context, claimToken, innerTx string) error {
	body := map[string]string{"innerTx": innerTx}
	_, err := c.http.Do(ctx, http.MethodPost, c.baseURL+"/prize/claim", claimToken, body)
	return err
}
