package models

// Error types reported to the dashboard host.
const (
	ErrorTypeUpstream           = "400"
	ErrorTypeInternal           = "500"
	ErrorTypeRouteNotFound      = "route-not-found"
	ErrorTypeMissingCredentials = "missing-credentials"
	ErrorTypeInvalidRequest     = "invalid-request"
)

// ErrorObject is a single entry of a failed response's errors list.
type ErrorObject struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Result is the response envelope for install/configure and failed requests.
type Result struct {
	Install *InstallDocument `json:"install,omitempty"`
	Proceed bool             `json:"proceed"`
	Errors  []ErrorObject    `json:"errors,omitempty"`
}

// Success wraps a document that may be accepted by the host.
func Success(install *InstallDocument) Result {
	return Result{Install: install, Proceed: true}
}

// Failure builds a result carrying a single error.
func Failure(errType, message string) Result {
	return Result{Proceed: false, Errors: []ErrorObject{{Type: errType, Message: message}}}
}

// AccountMetadata describes the logged in Spotify user.
type AccountMetadata struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

// AccountResult is the response of GET /account-metadata.
type AccountResult struct {
	Metadata AccountMetadata `json:"metadata"`
}
