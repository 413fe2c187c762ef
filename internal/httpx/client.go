package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	clierr "github.com/stellarquest/sq-cli/internal/errors"
)

// Response is a normalized success response. JSON is set when the server
// declared a JSON content type, Text otherwise.
type Response struct {
	Status int
	JSON   json.RawMessage
	Text   string
}

// Decode unmarshals a JSON response body into out.
func (r Response) Decode(out any) error {
	if r.JSON == nil {
		return clierr.New(clierr.CodeRemote, "expected JSON response body")
	}
	if err := json.Unmarshal(r.JSON, out); err != nil {
		return clierr.Wrap(clierr.CodeRemote, "decode response JSON", err)
	}
	return nil
}

// RemoteError is a non-2xx response. Fields holds the decoded JSON body when
// the server sent one, Text the raw body otherwise.
type RemoteError struct {
	Status int
	Fields map[string]any
	Text   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote returned status %d", e.Status)
}

// Payload returns the printable error value: the JSON body decorated with the
// response status, or the raw text body.
func (e *RemoteError) Payload() any {
	if e.Fields == nil {
		return e.Text
	}
	out := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		out[k] = v
	}
	out["status"] = e.Status
	return out
}

// StringField returns a string-typed field of the JSON error body, or "".
func (e *RemoteError) StringField(key string) string {
	if e.Fields == nil {
		return ""
	}
	v, _ := e.Fields[key].(string)
	return v
}

func AsRemote(err error) (*RemoteError, bool) {
	var target *RemoteError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func New(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "sq-cli/1.0",
	}
}

// Do issues a single request. bearer, when non-empty, is sent as an
// Authorization header; body, when non-nil, is marshalled as JSON. There are
// no automatic retries: the only retry in the protocol is the guided
// submit-with-fresh-claim-token path, which requires user action.
func (c *Client) Do(ctx context.Context, method, url, bearer string, body any) (Response, error) {
	var reader io.Reader
	var payload []byte
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return Response{}, clierr.Wrap(clierr.CodeInternal, "encode request body", err)
		}
		payload = buf
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Response{}, clierr.Wrap(clierr.CodeInternal, "build request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, clierr.Wrap(clierr.CodeRemote, "request failed", err)
	}
	buf, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return Response{}, clierr.Wrap(clierr.CodeRemote, "read response body", readErr)
	}

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "json")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remote := &RemoteError{Status: resp.StatusCode}
		if isJSON {
			fields := map[string]any{}
			if err := json.Unmarshal(buf, &fields); err == nil {
				remote.Fields = fields
			} else {
				remote.Text = string(buf)
			}
		} else {
			remote.Text = string(buf)
		}
		return Response{}, clierr.Wrap(clierr.CodeRemote, fmt.Sprintf("%s %s", method, url), remote)
	}

	out := Response{Status: resp.StatusCode}
	if isJSON && len(bytes.TrimSpace(buf)) > 0 {
		out.JSON = json.RawMessage(buf)
	} else {
		out.Text = string(buf)
	}
	return out, nil
}
