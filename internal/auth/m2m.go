package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentials identifies a machine client at the OIDC provider.
type ClientCredentials struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// ClientCredentialsToken runs the client_credentials grant against the
// issuer's discovered token endpoint.
func ClientCredentialsToken(ctx context.Context, client *http.Client, cc ClientCredentials) (string, error) {
	if cc.ClientID == "" {
		return "", errors.New("client id is not set")
	}
	ctx = oidc.ClientContext(ctx, client)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	provider, err := oidc.NewProvider(ctx, cc.Issuer)
	if err != nil {
		return "", fmt.Errorf("discover issuer: %w", err)
	}
	tokenURL := provider.Endpoint().TokenURL
	if tokenURL == "" {
		return "", fmt.Errorf("issuer %s has no token endpoint", cc.Issuer)
	}

	conf := clientcredentials.Config{
		ClientID:     cc.ClientID,
		ClientSecret: cc.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       cc.Scopes,
	}
	tok, err := conf.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	return tok.AccessToken, nil
}
