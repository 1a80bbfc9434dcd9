// Package auth attaches the integration token to outgoing requests.
//
// The token is a long-lived bearer secret, so it is served from a static
// oauth2 token source and every request made through the returned client
// carries "Authorization: Bearer <token>".
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// ErrMissingToken is returned when no integration token is configured.
var ErrMissingToken = errors.New("no Notion token configured (set NOTION_TOKEN)")

// TokenSource returns a token source that always yields token.
func TokenSource(token string) (oauth2.TokenSource, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}), nil
}

// HTTPClient returns a client that authenticates every request with token.
// base is the client whose transport performs the requests; nil means
// http.DefaultClient.
func HTTPClient(ctx context.Context, token string, base *http.Client) (*http.Client, error) {
	ts, err := TokenSource(token)
	if err != nil {
		return nil, err
	}
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return oauth2.NewClient(ctx, ts), nil
}
