package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// GraphBaseURL is the Graph API root used by every Service.
var GraphBaseURL = "https://graph.facebook.com/v19.0"

var ErrGraphRequestFailed = errors.New("facebook: graph request failed")

// User is the subset of the /me object stored with the OAuth data.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Permission is one entry of /me/permissions.
type Permission struct {
	Permission string `json:"permission"`
	Status     string `json:"status"`
}

// Page is a business page returned by /me/accounts.
type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
	Category    string `json:"category,omitempty"`
}

// TokenDebugInfo is the "data" object of /debug_token.
type TokenDebugInfo struct {
	AppID     string   `json:"app_id"`
	UserID    string   `json:"user_id"`
	IsValid   bool     `json:"is_valid"`
	ExpiresAt int64    `json:"expires_at"`
	Scopes    []string `json:"scopes"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Service makes authenticated calls against the Graph API.
type Service struct {
	accessToken string
	client      *http.Client
}

// CreateFromAccessToken returns a Service bound to accessToken. It does not
// contact the Graph API.
func CreateFromAccessToken(accessToken string) *Service {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})

	return &Service{
		accessToken: accessToken,
		client:      oauth2.NewClient(context.Background(), src),
	}
}

// AccessToken returns the token the service was created with.
func (s *Service) AccessToken() string {
	return s.accessToken
}

// Me fetches the authenticated user.
func (s *Service) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.get(ctx, "/me", url.Values{"fields": {"id,name,email"}}, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Permissions lists the permissions currently granted to the token.
func (s *Service) Permissions(ctx context.Context) ([]Permission, error) {
	var resp struct {
		Data []Permission `json:"data"`
	}
	if err := s.get(ctx, "/me/permissions", nil, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

// GrantedScopes returns the names of permissions with status "granted".
func (s *Service) GrantedScopes(ctx context.Context) ([]string, error) {
	perms, err := s.Permissions(ctx)
	if err != nil {
		return nil, err
	}

	scopes := make([]string, 0, len(perms))
	for _, p := range perms {
		if p.Status == "granted" {
			scopes = append(scopes, p.Permission)
		}
	}

	return scopes, nil
}

// Accounts lists the pages the user manages, following paging cursors.
func (s *Service) Accounts(ctx context.Context) ([]Page, error) {
	var pages []Page

	next := GraphBaseURL + "/me/accounts?" + url.Values{"fields": {"id,name,access_token,category"}}.Encode()
	for next != "" {
		var resp struct {
			Data   []Page `json:"data"`
			Paging struct {
				Next string `json:"next"`
			} `json:"paging"`
		}
		if err := s.getURL(ctx, next, &resp); err != nil {
			return nil, err
		}

		pages = append(pages, resp.Data...)
		next = resp.Paging.Next
	}

	return pages, nil
}

// DebugToken inspects the service's token using an app access token
// ("app_id|app_secret").
func (s *Service) DebugToken(ctx context.Context, appToken string) (*TokenDebugInfo, error) {
	var resp struct {
		Data TokenDebugInfo `json:"data"`
	}

	params := url.Values{
		"input_token":  {s.accessToken},
		"access_token": {appToken},
	}
	if err := s.get(ctx, "/debug_token", params, &resp); err != nil {
		return nil, err
	}

	return &resp.Data, nil
}

func (s *Service) get(ctx context.Context, path string, params url.Values, out any) error {
	u := GraphBaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	return s.getURL(ctx, u, out)
}

func (s *Service) getURL(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("facebook: failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGraphRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("facebook: failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gerr graphError
		if json.Unmarshal(body, &gerr) == nil && gerr.Error.Message != "" {
			return fmt.Errorf("%w: status %d: %s (%s)", ErrGraphRequestFailed,
				resp.StatusCode, gerr.Error.Message, gerr.Error.Type)
		}

		return fmt.Errorf("%w: status %d, body: %s", ErrGraphRequestFailed,
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("facebook: failed to unmarshal response: %w", err)
	}

	return nil
}

// LongLivedToken is the response of the fb_exchange_token grant.
type LongLivedToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeForLongLivedToken trades a short-lived user token for a long-lived
// one using the app credentials.
func ExchangeForLongLivedToken(ctx context.Context, appID, appSecret, accessToken string) (*LongLivedToken, error) {
	params := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {appID},
		"client_secret":     {appSecret},
		"fb_exchange_token": {accessToken},
	}

	svc := &Service{client: http.DefaultClient}

	var token LongLivedToken
	if err := svc.get(ctx, "/oauth/access_token", params, &token); err != nil {
		return nil, err
	}

	return &token, nil
}
