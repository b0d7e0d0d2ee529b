package provider

import (
	"errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubName = "github"

// GitHub is the GitHub OAuth login source.
type GitHub struct {
	cfg *oauth2.Config
}

// NewGitHub configures a GitHub provider. baseURL is the externally
// reachable root of this service; the redirect URL is derived from it.
func NewGitHub(clientID, clientSecret, baseURL string) (*GitHub, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("github oauth client credentials must be provided")
	}

	return &GitHub{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL(baseURL, githubName),
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
	}, nil
}

func (g *GitHub) Name() string { return githubName }

func (g *GitHub) LoginURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}
