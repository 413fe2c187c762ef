// Package friendbot checks sandbox account funding and requests Futurenet
// friendbot funding.
package friendbot

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stellarquest/sq-cli/internal/httpx"
)

type Client struct {
	http         *httpx.Client
	sandboxURL   string
	friendbotURL string
}

func New(httpClient *httpx.Client, sandboxURL, friendbotURL string) *Client {
	return &Client{http: httpClient, sandboxURL: sandboxURL, friendbotURL: friendbotURL}
}

// Funded reports whether the local sandbox knows the account. Any non-2xx
// response means unfunded; only transport failures are errors.
func (c *Client) Funded(ctx context.Context, pk string) (bool, error) {
	_, err := c.http.Do(ctx, http.MethodGet, c.sandboxURL+"/accounts/"+pk, "", nil)
	if err != nil {
		if _, ok := httpx.AsRemote(err); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Fund requests friendbot funding for pk. Unauthenticated.
func (c *Client) Fund(ctx context.Context, pk string) error {
	_, err := c.http.Do(ctx, http.MethodGet, c.friendbotURL+"/?addr="+url.QueryEscape(pk), "", nil)
	return err
}
