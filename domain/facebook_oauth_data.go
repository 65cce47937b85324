package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pilab-dev/shadow-social/facebook"
)

var (
	ErrMalformedOAuthData   = errors.New("malformed facebook oauth data")
	ErrBusinessPageNotFound = errors.New("business page not found")
)

// FacebookOAuthData holds the OAuth credentials and profile of a Facebook
// user, as stored in a CMS property value.
type FacebookOAuthData struct {
	// ID of the authenticated user.
	ID string `json:"id"`

	// Name of the authenticated user.
	Name string `json:"name"`

	// AccessToken is the user access token.
	AccessToken string `json:"access_token"`

	// ExpiresAt is the expiry of the access token. Long-lived Facebook tokens
	// typically last two months.
	ExpiresAt time.Time `json:"expires_at"`

	// Scope holds the granted permissions.
	Scope []string `json:"scope"`

	// BusinessPages is only populated when a pages permission was granted.
	BusinessPages []FacebookBusinessPageData `json:"business_pages"`

	// SelectedBusinessPage is the page picked by the editor, if any.
	SelectedBusinessPage *FacebookBusinessPageData `json:"selected_business_page"`

	mu      sync.Mutex
	service *facebook.Service
}

// FacebookBusinessPageData is a page linked to the authenticated user. Each
// page carries its own page access token.
type FacebookBusinessPageData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// IsValid reports whether the data has an access token whose expiry has not
// passed. The token is not checked against the Graph API.
func (d *FacebookOAuthData) IsValid() bool {
	return d.IsValidAt(time.Now().UTC())
}

// IsValidAt is IsValid evaluated at now.
func (d *FacebookOAuthData) IsValidAt(now time.Time) bool {
	return strings.TrimSpace(d.AccessToken) != "" && d.ExpiresAt.After(now)
}

// ExpiresIn returns the time left until the access token expires. The result
// is negative once it has expired.
func (d *FacebookOAuthData) ExpiresIn(now time.Time) time.Duration {
	return d.ExpiresAt.Sub(now)
}

// HasScope reports whether scope was granted.
func (d *FacebookOAuthData) HasScope(scope string) bool {
	for _, s := range d.Scope {
		if s == scope {
			return true
		}
	}

	return false
}

// BusinessPage looks up a linked page by ID.
func (d *FacebookOAuthData) BusinessPage(id string) (*FacebookBusinessPageData, bool) {
	for i := range d.BusinessPages {
		if d.BusinessPages[i].ID == id {
			return &d.BusinessPages[i], true
		}
	}

	return nil, false
}

// SelectBusinessPage stores a copy of the linked page with the given ID as the
// selected page.
func (d *FacebookOAuthData) SelectBusinessPage(id string) error {
	page, ok := d.BusinessPage(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBusinessPageNotFound, id)
	}

	selected := *page
	d.SelectedBusinessPage = &selected

	return nil
}

// GetService returns a Graph API service for the access token. The service is
// created on first use and reused afterwards. No API calls are made.
func (d *FacebookOAuthData) GetService() *facebook.Service {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.service == nil {
		d.service = facebook.CreateFromAccessToken(d.AccessToken)
	}

	return d.service
}

// Serialize encodes the data as JSON.
func (d *FacebookOAuthData) Serialize() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to serialize facebook oauth data: %w", err)
	}

	return string(b), nil
}

// legacyTimeLayout matches stored timestamps written without a UTC offset.
const legacyTimeLayout = "2006-01-02T15:04:05.9999999"

// UnmarshalJSON accepts expires_at either as RFC 3339 or without an offset,
// in which case it is read as UTC.
func (d *FacebookOAuthData) UnmarshalJSON(b []byte) error {
	type plain FacebookOAuthData
	aux := struct {
		*plain
		ExpiresAt json.RawMessage `json:"expires_at"`
	}{plain: (*plain)(d)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	expiresAt, err := parseExpiresAt(aux.ExpiresAt)
	if err != nil {
		return err
	}
	d.ExpiresAt = expiresAt

	return nil
}

func parseExpiresAt(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("expires_at: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	t, err := time.ParseInLocation(legacyTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("expires_at: %w", err)
	}

	return t, nil
}

// DeserializeFacebookOAuthData decodes JSON produced by Serialize. Unknown
// fields are ignored and missing fields keep their zero value.
func DeserializeFacebookOAuthData(str string) (*FacebookOAuthData, error) {
	var data FacebookOAuthData
	if err := json.Unmarshal([]byte(str), &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOAuthData, err)
	}

	return &data, nil
}
