package federation

import (
	"context"

	"github.com/pilab-dev/shadow-social/domain"
	"golang.org/x/oauth2"
)

// OAuth2Provider runs the authorization code flow against an external
// provider and turns the result into property data.
type OAuth2Provider interface {
	// Name returns the provider identifier (e.g. "facebook").
	Name() string

	// GetOAuth2Config returns the oauth2.Config for the given redirect URL.
	GetOAuth2Config(redirectURL string) (*oauth2.Config, error)

	// GetAuthCodeURL generates the URL the editor is redirected to.
	GetAuthCodeURL(state, redirectURL string, opts ...oauth2.AuthCodeOption) (string, error)

	// ExchangeCode exchanges an authorization code for a token.
	ExchangeCode(ctx context.Context, redirectURL, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)

	// CompleteHandshake exchanges the code and collects the user profile,
	// granted scopes and business pages.
	CompleteHandshake(ctx context.Context, redirectURL, code string) (*domain.FacebookOAuthData, error)
}
