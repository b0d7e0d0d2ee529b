package provider

import (
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleName = "google"

// Google is the Google OAuth login source.
type Google struct {
	cfg *oauth2.Config
}

// NewGoogle configures a Google provider. baseURL is the externally
// reachable root of this service; the redirect URL is derived from it.
func NewGoogle(clientID, clientSecret, baseURL string) (*Google, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("google oauth client credentials must be provided")
	}

	return &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL(baseURL, googleName),
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
	}, nil
}

func (g *Google) Name() string { return googleName }

func (g *Google) LoginURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func redirectURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/" + name + "/redirect"
}
