//nolint:varnamelen
package echoapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pilab-dev/shadow-social/cache"
	"github.com/pilab-dev/shadow-social/domain"
	apierrors "github.com/pilab-dev/shadow-social/errors"
	"github.com/pilab-dev/shadow-social/internal/audit"
	"github.com/pilab-dev/shadow-social/internal/federation"
	"github.com/pilab-dev/shadow-social/internal/metrics"
	"github.com/pilab-dev/shadow-social/services"
	"github.com/rs/zerolog/log"
)

// StateStore keeps pending OAuth state parameters.
type StateStore interface {
	Put(ctx context.Context, state, propertyKey string)
	Consume(ctx context.Context, state string) (cache.StateEntry, error)
}

// FacebookAPI serves the property editor endpoints.
type FacebookAPI struct {
	provider    federation.OAuth2Provider
	properties  *services.PropertyService
	states      StateStore
	redirectURL string
}

// NewFacebookAPI initializes the Facebook property editor API.
func NewFacebookAPI(
	provider federation.OAuth2Provider,
	properties *services.PropertyService,
	states StateStore,
	redirectURL string,
) *FacebookAPI {
	return &FacebookAPI{
		provider:    provider,
		properties:  properties,
		states:      states,
		redirectURL: redirectURL,
	}
}

// PageView is a linked page without its page access token.
type PageView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PropertyView is the stored value without access tokens.
type PropertyView struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	ExpiresAt            time.Time  `json:"expires_at"`
	Scope                []string   `json:"scope"`
	BusinessPages        []PageView `json:"business_pages"`
	SelectedBusinessPage *PageView  `json:"selected_business_page"`
}

// PropertyResponse is returned by the property endpoints. Tokens never leave
// the server.
type PropertyResponse struct {
	Data   *PropertyView            `json:"data"`
	Status *services.PropertyStatus `json:"status"`
}

func newPropertyResponse(status *services.PropertyStatus, data *domain.FacebookOAuthData) PropertyResponse {
	view := &PropertyView{
		ID:            data.ID,
		Name:          data.Name,
		ExpiresAt:     data.ExpiresAt,
		Scope:         data.Scope,
		BusinessPages: make([]PageView, 0, len(data.BusinessPages)),
	}
	for _, page := range data.BusinessPages {
		view.BusinessPages = append(view.BusinessPages, PageView{ID: page.ID, Name: page.Name})
	}

	if data.SelectedBusinessPage != nil {
		view.SelectedBusinessPage = &PageView{ID: data.SelectedBusinessPage.ID, Name: data.SelectedBusinessPage.Name}
	}

	return PropertyResponse{Data: view, Status: status}
}

// SelectPageRequest is the body of the selected-page endpoint.
type SelectPageRequest struct {
	ID string `json:"id"`
}

// RegisterRoutes registers the Facebook routes.
func (fa *FacebookAPI) RegisterRoutes(e *echo.Echo) {
	e.GET("/facebook/oauth/authorize", fa.AuthorizeHandler)
	e.GET("/facebook/oauth/callback", fa.CallbackHandler)

	e.GET("/facebook/properties/:key", fa.GetPropertyHandler)
	e.PUT("/facebook/properties/:key/selected-page", fa.SelectPageHandler)
	e.DELETE("/facebook/properties/:key", fa.DeletePropertyHandler)
}

// AuthorizeHandler starts the handshake for a property and redirects the
// editor to the Facebook login dialog.
func (fa *FacebookAPI) AuthorizeHandler(c echo.Context) error {
	propertyKey := c.QueryParam("property")
	if propertyKey == "" {
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest("property is required"))
	}

	state := uuid.NewString()
	fa.states.Put(c.Request().Context(), state, propertyKey)

	authURL, err := fa.provider.GetAuthCodeURL(state, fa.redirectURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build Facebook authorization URL")
		return c.JSON(http.StatusInternalServerError, apierrors.NewServerError("facebook app is not configured"))
	}

	return c.Redirect(http.StatusFound, authURL)
}

// CallbackHandler completes the handshake and stores the new OAuth data,
// replacing any previous value of the property.
func (fa *FacebookAPI) CallbackHandler(c echo.Context) error {
	ctx := c.Request().Context()
	state := c.QueryParam("state")

	if oauthErr := c.QueryParam("error"); oauthErr != "" {
		metrics.HandshakesTotal.WithLabelValues(metrics.ResultFailure).Inc()
		resp := apierrors.NewAccessDenied(c.QueryParam("error_description"))
		resp.State = state

		return c.JSON(http.StatusBadRequest, resp)
	}

	entry, err := fa.states.Consume(ctx, state)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest(federation.ErrInvalidAuthState.Error()))
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest("code is required"))
	}

	data, err := fa.provider.CompleteHandshake(ctx, fa.redirectURL, code)
	if err != nil {
		metrics.HandshakesTotal.WithLabelValues(metrics.ResultFailure).Inc()
		log.Error().Err(err).Str("property", entry.PropertyKey).Msg("Facebook handshake failed")

		if errors.Is(err, federation.ErrExchangeCodeFailed) {
			return c.JSON(http.StatusBadRequest, apierrors.NewInvalidGrant("authorization code was rejected"))
		}

		return c.JSON(http.StatusBadGateway, apierrors.NewTemporarilyUnavailable("facebook request failed"))
	}
	metrics.HandshakesTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	err = fa.properties.Save(ctx, entry.PropertyKey, data)
	audit.Log(audit.ActionConnect, entry.PropertyKey, data.ID, "", err)
	if err != nil {
		return fa.writeError(c, err)
	}

	return c.JSON(http.StatusOK, newPropertyResponse(fa.properties.StatusOf(entry.PropertyKey, data), data))
}

// GetPropertyHandler returns the stored OAuth data and its local validity.
func (fa *FacebookAPI) GetPropertyHandler(c echo.Context) error {
	key, err := propertyKey(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest("invalid property key"))
	}

	data, err := fa.properties.Load(c.Request().Context(), key)
	if err != nil {
		return fa.writeError(c, err)
	}

	return c.JSON(http.StatusOK, newPropertyResponse(fa.properties.StatusOf(key, data), data))
}

// SelectPageHandler stores the business page chosen by the editor.
func (fa *FacebookAPI) SelectPageHandler(c echo.Context) error {
	key, err := propertyKey(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest("invalid property key"))
	}

	var req SelectPageRequest
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest("page id is required"))
	}

	data, err := fa.properties.SelectBusinessPage(c.Request().Context(), key, req.ID)
	audit.Log(audit.ActionSelectPage, key, "", "page="+req.ID, err)
	if err != nil {
		return fa.writeError(c, err)
	}

	return c.JSON(http.StatusOK, newPropertyResponse(fa.properties.StatusOf(key, data), data))
}

// DeletePropertyHandler removes the stored value.
func (fa *FacebookAPI) DeletePropertyHandler(c echo.Context) error {
	key, err := propertyKey(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest("invalid property key"))
	}

	err = fa.properties.Delete(c.Request().Context(), key)
	audit.Log(audit.ActionDisconnect, key, "", "", err)
	if err != nil {
		return fa.writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func propertyKey(c echo.Context) (string, error) {
	return url.PathUnescape(c.Param("key"))
}

func (fa *FacebookAPI) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrPropertyNotFound):
		return c.JSON(http.StatusNotFound, apierrors.NewNotFound("property value not found"))
	case errors.Is(err, domain.ErrBusinessPageNotFound):
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest(err.Error()))
	case errors.Is(err, domain.ErrMalformedOAuthData):
		return c.JSON(http.StatusUnprocessableEntity, apierrors.NewInvalidProperty("stored value is not valid facebook oauth data"))
	case errors.Is(err, services.ErrEmptyPropertyKey):
		return c.JSON(http.StatusBadRequest, apierrors.NewInvalidRequest(err.Error()))
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("Property request failed")
		return c.JSON(http.StatusInternalServerError, apierrors.NewServerError("internal error"))
	}
}
