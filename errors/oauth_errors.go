package errors

import "fmt"

// OAuth2Error is the error body returned by the HTTP API. It follows the
// OAuth 2.0 error response shape.
type OAuth2Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	State       string `json:"state,omitempty"`
}

func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Error codes. The first block is defined by RFC 6749.
const (
	InvalidRequest         = "invalid_request"
	AccessDenied           = "access_denied"
	InvalidGrant           = "invalid_grant"
	ServerError            = "server_error"
	TemporarilyUnavailable = "temporarily_unavailable"

	NotFound        = "not_found"
	InvalidProperty = "invalid_property"
)

func NewInvalidRequest(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidRequest, Description: description}
}

func NewAccessDenied(description string) *OAuth2Error {
	return &OAuth2Error{Code: AccessDenied, Description: description}
}

func NewInvalidGrant(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidGrant, Description: description}
}

func NewServerError(description string) *OAuth2Error {
	return &OAuth2Error{Code: ServerError, Description: description}
}

func NewTemporarilyUnavailable(description string) *OAuth2Error {
	return &OAuth2Error{Code: TemporarilyUnavailable, Description: description}
}

func NewNotFound(description string) *OAuth2Error {
	return &OAuth2Error{Code: NotFound, Description: description}
}

// NewInvalidProperty reports a stored property value that cannot be decoded.
func NewInvalidProperty(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidProperty, Description: description}
}
