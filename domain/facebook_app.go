package domain

// Permissions that make Facebook return the user's business pages.
const (
	ScopePagesShowList = "pages_show_list"
	ScopeManagePages   = "manage_pages" // Deprecated by Graph API v3.0, still honoured.
	ScopePublicProfile = "public_profile"
)

// FacebookAppConfig holds the Facebook app credentials used for the OAuth
// handshake.
type FacebookAppConfig struct {
	AppID     string   `mapstructure:"app_id" json:"app_id"`
	AppSecret string   `mapstructure:"app_secret" json:"-"`
	Scopes    []string `mapstructure:"scopes" json:"scopes,omitempty"`
}

// AppAccessToken returns the "app_id|app_secret" token used for
// /debug_token calls.
func (c *FacebookAppConfig) AppAccessToken() string {
	return c.AppID + "|" + c.AppSecret
}
