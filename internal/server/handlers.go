package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotwidget/internal/models"
	"github.com/desertthunder/spotwidget/internal/services"
	"github.com/desertthunder/spotwidget/internal/tasks"
	json "github.com/goccy/go-json"
)

// MaxBodyBytes caps inbound request bodies.
const MaxBodyBytes = 1 << 20

// Route names, also used as metric labels.
const (
	RouteInstall         = "install"
	RouteAccountMetadata = "account_metadata"
	RouteHealth          = "healthcheck"
)

// Handlers serves the widget endpoints.
type Handlers struct {
	engine  tasks.Engine
	spotify services.SpotifyClient
	logger  *log.Logger
}

// NewHandlers creates handlers backed by engine and spotify.
func NewHandlers(engine tasks.Engine, spotify services.SpotifyClient, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handlers{engine: engine, spotify: spotify, logger: logger}
}

// Routes returns the route table in dispatch order: install, account metadata, health check.
func (h *Handlers) Routes() []Route {
	return []Route{
		{Name: RouteInstall, Method: http.MethodPost, Endpoint: "/", Root: true, Handle: h.Install},
		{Name: RouteAccountMetadata, Method: http.MethodGet, Endpoint: "/account-metadata", Handle: h.AccountMetadata},
		{Name: RouteHealth, Method: http.MethodGet, Endpoint: "/healthcheck", Handle: h.Health},
	}
}

// Install handles the host's install/configure hook.
func (h *Handlers) Install(ctx context.Context, req *Request) *Response {
	if len(req.Body) > MaxBodyBytes {
		return JSONResponse(models.Failure(models.ErrorTypeInvalidRequest,
			fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes)))
	}

	ir, err := models.ParseInstallRequest(req.Body)
	if err != nil {
		h.logger.Warn("undecodable install request", "error", err)
		return JSONResponse(models.Failure(models.ErrorTypeInvalidRequest, fmt.Sprintf("invalid request body: %v", err)))
	}

	return JSONResponse(h.engine.Configure(ctx, ir, nil))
}

// AccountMetadata returns the profile of the user identified by the inbound Authorization header.
func (h *Handlers) AccountMetadata(ctx context.Context, req *Request) *Response {
	user, err := h.spotify.UserProfile(ctx, req.Header.Get("Authorization"))
	if err != nil {
		h.logger.Error("failed to fetch account metadata", "error", err)
		return JSONResponse(models.Failure(models.ErrorTypeUpstream, services.ErrorMessage(err)))
	}

	return JSONResponse(models.AccountResult{Metadata: models.AccountMetadata{
		Email:    user.Email,
		Username: user.Username(),
		UserID:   user.ID,
	}})
}

// Health reports liveness with an empty body.
func (h *Handlers) Health(context.Context, *Request) *Response {
	return &Response{Status: http.StatusOK, Header: http.Header{}}
}

// JSONResponse encodes v as a 200 JSON response. Encoding failures become a "500" error result.
func JSONResponse(v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		body, _ = json.Marshal(models.Failure(models.ErrorTypeInternal, fmt.Sprintf("failed to encode response: %v", err)))
	}
	return &Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   body,
	}
}
