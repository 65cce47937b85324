package federation

import (
	"context"
	"fmt"
	"time"

	"github.com/pilab-dev/shadow-social/domain"
	"github.com/pilab-dev/shadow-social/facebook"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	facebookOAuth2 "golang.org/x/oauth2/facebook"
)

// DefaultTokenLifetime is assumed when Facebook omits expires_in.
const DefaultTokenLifetime = 60 * 24 * time.Hour

// FacebookProvider implements the OAuth2Provider interface for Facebook.
type FacebookProvider struct {
	Config *domain.FacebookAppConfig

	// Endpoint defaults to the Facebook OAuth2 endpoint.
	Endpoint oauth2.Endpoint

	// LongLived exchanges the code token for a long-lived token.
	LongLived bool

	now func() time.Time
}

// NewFacebookProvider creates a new FacebookProvider.
func NewFacebookProvider(cfg *domain.FacebookAppConfig) (*FacebookProvider, error) {
	if cfg == nil {
		return nil, ErrProviderMisconfigured
	}

	// public_profile is always granted, request it explicitly.
	scopes := append([]string{domain.ScopePublicProfile}, cfg.Scopes...)
	seen := make(map[string]bool)
	var uniqueScopes []string
	for _, scope := range scopes {
		if scope != "" && !seen[scope] {
			seen[scope] = true
			uniqueScopes = append(uniqueScopes, scope)
		}
	}
	appCfg := *cfg
	appCfg.Scopes = uniqueScopes

	return &FacebookProvider{
		Config:    &appCfg,
		Endpoint:  facebookOAuth2.Endpoint,
		LongLived: true,
		now:       time.Now,
	}, nil
}

func (f *FacebookProvider) Name() string {
	return "facebook"
}

// GetOAuth2Config returns the oauth2 config for the Facebook app.
func (f *FacebookProvider) GetOAuth2Config(redirectURL string) (*oauth2.Config, error) {
	if f.Config.AppID == "" || f.Config.AppSecret == "" {
		return nil, ErrProviderMisconfigured
	}

	return &oauth2.Config{
		ClientID:     f.Config.AppID,
		ClientSecret: f.Config.AppSecret,
		RedirectURL:  redirectURL,
		Scopes:       f.Config.Scopes,
		Endpoint:     f.Endpoint,
	}, nil
}

func (f *FacebookProvider) GetAuthCodeURL(state, redirectURL string, opts ...oauth2.AuthCodeOption) (string, error) {
	conf, err := f.GetOAuth2Config(redirectURL)
	if err != nil {
		return "", err
	}

	return conf.AuthCodeURL(state, opts...), nil
}

func (f *FacebookProvider) ExchangeCode(ctx context.Context, redirectURL, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	conf, err := f.GetOAuth2Config(redirectURL)
	if err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeCodeFailed, err)
	}

	return token, nil
}

// CompleteHandshake exchanges the code and builds the property data. Business
// pages are only fetched when a pages permission was granted.
func (f *FacebookProvider) CompleteHandshake(ctx context.Context, redirectURL, code string) (*domain.FacebookOAuthData, error) {
	token, err := f.ExchangeCode(ctx, redirectURL, code)
	if err != nil {
		return nil, err
	}

	accessToken := token.AccessToken
	expiresAt := token.Expiry

	if f.LongLived {
		long, err := facebook.ExchangeForLongLivedToken(ctx, f.Config.AppID, f.Config.AppSecret, accessToken)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("facebook: long-lived token exchange failed, keeping short-lived token")
		} else {
			accessToken = long.AccessToken
			expiresAt = time.Time{}
			if long.ExpiresIn > 0 {
				expiresAt = f.now().Add(time.Duration(long.ExpiresIn) * time.Second)
			}
		}
	}

	if expiresAt.IsZero() {
		expiresAt = f.now().Add(DefaultTokenLifetime)
	}

	data := &domain.FacebookOAuthData{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt.UTC().Truncate(time.Second),
	}

	svc := data.GetService()

	user, err := svc.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchUserInfoFailed, err)
	}
	data.ID = user.ID
	data.Name = user.Name

	scopes, err := svc.GrantedScopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchUserInfoFailed, err)
	}
	data.Scope = scopes

	if data.HasScope(domain.ScopePagesShowList) || data.HasScope(domain.ScopeManagePages) {
		pages, err := svc.Accounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchUserInfoFailed, err)
		}

		data.BusinessPages = make([]domain.FacebookBusinessPageData, 0, len(pages))
		for _, p := range pages {
			data.BusinessPages = append(data.BusinessPages, domain.FacebookBusinessPageData{
				ID:          p.ID,
				Name:        p.Name,
				AccessToken: p.AccessToken,
			})
		}
	}

	log.Ctx(ctx).Info().
		Str("facebook_user_id", data.ID).
		Strs("scope", data.Scope).
		Int("business_pages", len(data.BusinessPages)).
		Time("expires_at", data.ExpiresAt).
		Msg("facebook handshake completed")

	return data, nil
}

// Ensure FacebookProvider implements OAuth2Provider.
var _ OAuth2Provider = (*FacebookProvider)(nil)
