package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIssuer serves an OIDC discovery document and a token endpoint that
// accepts the m2m-client credentials.
func newIssuer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/oauth/token",
			"jwks_uri":               srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id, secret, ok := r.BasicAuth()
		if !ok {
			id, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
		}
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("grant_type") != "client_credentials" || id != "m2m-client" || secret != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_client"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "m2m-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"scope":        r.PostForm.Get("scope"),
		})
	})
	return srv
}

func TestClientCredentialsToken(t *testing.T) {
	srv := newIssuer(t)
	ctx := context.Background()

	tok, err := ClientCredentialsToken(ctx, srv.Client(), ClientCredentials{
		Issuer:       srv.URL,
		ClientID:     "m2m-client",
		ClientSecret: "s3cret",
		Scopes:       []string{"crew:read"},
	})
	require.NoError(t, err)
	assert.Equal(t, "m2m-access-token", tok)
}

func TestClientCredentialsTokenErrors(t *testing.T) {
	srv := newIssuer(t)
	ctx := context.Background()

	_, err := ClientCredentialsToken(ctx, srv.Client(), ClientCredentials{Issuer: srv.URL, ClientID: "m2m-client", ClientSecret: "wrong"})
	assert.ErrorContains(t, err, "token request")

	_, err = ClientCredentialsToken(ctx, srv.Client(), ClientCredentials{Issuer: srv.URL + "/elsewhere", ClientID: "m2m-client"})
	assert.ErrorContains(t, err, "discover issuer")

	_, err = ClientCredentialsToken(ctx, srv.Client(), ClientCredentials{Issuer: srv.URL})
	assert.Error(t, err)
}
