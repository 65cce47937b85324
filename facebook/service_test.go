package facebook_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pilab-dev/shadow-social/facebook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withGraphServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(handler)
	original := facebook.GraphBaseURL
	facebook.GraphBaseURL = server.URL
	t.Cleanup(func() {
		facebook.GraphBaseURL = original
		server.Close()
	})

	return server
}

func TestCreateFromAccessToken_NoNetwork(t *testing.T) {
	calls := 0
	withGraphServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	svc := facebook.CreateFromAccessToken("tok123")
	require.NotNil(t, svc)
	assert.Equal(t, "tok123", svc.AccessToken())
	assert.Zero(t, calls)
}

func TestService_Me(t *testing.T) {
	withGraphServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("fields"), "name")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","name":"Jane Doe","email":"jane@example.com"}`))
	})

	user, err := facebook.CreateFromAccessToken("tok123").Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestService_GrantedScopes(t *testing.T) {
	withGraphServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/permissions", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"permission":"public_profile","status":"granted"},
			{"permission":"email","status":"declined"},
			{"permission":"pages_show_list","status":"granted"}
		]}`))
	})

	scopes, err := facebook.CreateFromAccessToken("tok").GrantedScopes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"public_profile", "pages_show_list"}, scopes)
}

func TestService_Accounts_FollowsPaging(t *testing.T) {
	var server *httptest.Server
	server = withGraphServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/accounts", r.URL.Path)
		if r.URL.Query().Get("after") == "" {
			_, _ = w.Write([]byte(`{"data":[{"id":"p1","name":"Page One","access_token":"pt1"}],
				"paging":{"next":"` + server.URL + `/me/accounts?after=c1"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"p2","name":"Page Two","access_token":"pt2"}],"paging":{}}`))
	})

	pages, err := facebook.CreateFromAccessToken("tok").Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "p1", pages[0].ID)
	assert.Equal(t, "pt2", pages[1].AccessToken)
}

func TestService_DebugToken(t *testing.T) {
	withGraphServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/debug_token", r.URL.Path)
		assert.Equal(t, "user-token", r.URL.Query().Get("input_token"))
		assert.Equal(t, "app|secret", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"data":{"app_id":"1","user_id":"42","is_valid":true,"expires_at":4070908800,"scopes":["email"]}}`))
	})

	info, err := facebook.CreateFromAccessToken("user-token").DebugToken(context.Background(), "app|secret")
	require.NoError(t, err)
	assert.True(t, info.IsValid)
	assert.Equal(t, "42", info.UserID)
	assert.Equal(t, []string{"email"}, info.Scopes)
}

func TestService_GraphError(t *testing.T) {
	withGraphServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Error validating access token","type":"OAuthException","code":190}}`))
	})

	_, err := facebook.CreateFromAccessToken("expired").Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, facebook.ErrGraphRequestFailed)
	assert.Contains(t, err.Error(), "status 400: Error validating access token (OAuthException)")
}

func TestService_ServerErrorWithoutBody(t *testing.T) {
	withGraphServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := facebook.CreateFromAccessToken("tok").Accounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestExchangeForLongLivedToken(t *testing.T) {
	withGraphServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/access_token", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "fb_exchange_token", q.Get("grant_type"))
		assert.Equal(t, "app", q.Get("client_id"))
		assert.Equal(t, "secret", q.Get("client_secret"))
		assert.Equal(t, "short", q.Get("fb_exchange_token"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"access_token":"long","token_type":"bearer","expires_in":5183944}`))
	})

	token, err := facebook.ExchangeForLongLivedToken(context.Background(), "app", "secret", "short")
	require.NoError(t, err)
	assert.Equal(t, "long", token.AccessToken)
	assert.Equal(t, int64(5183944), token.ExpiresIn)
}
