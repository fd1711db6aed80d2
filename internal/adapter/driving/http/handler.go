// Package httphandler is the HTTP driving adapter that serves the app
// registry REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/ericfisherdev/appregistry/internal/application"
	"github.com/ericfisherdev/appregistry/internal/domain/model"
	"github.com/ericfisherdev/appregistry/internal/domain/port/driven"
)

// maxBodyBytes caps request bodies; app records are tiny.
const maxBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	appSvc      *application.AppService
	buildConfig model.BuildConfig
	logger      *slog.Logger
}

// NewHandler creates a Handler. buildConfig is the snapshot assembled at
// startup and is served as-is.
func NewHandler(appSvc *application.AppService, buildConfig model.BuildConfig, logger *slog.Logger) *Handler {
	return &Handler{
		appSvc:      appSvc,
		buildConfig: buildConfig,
		logger:      logger,
	}
}

// RegisterAPIRoutes registers all API routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/apps", h.ListApps)
	mux.HandleFunc("GET /api/v1/apps/{id}", h.GetApp)
	mux.HandleFunc("POST /api/v1/apps", h.SaveApp)
	mux.HandleFunc("PUT /api/v1/apps/{id}", h.UpdateApp)
	mux.HandleFunc("DELETE /api/v1/apps/{id}", h.DeleteApp)
	mux.HandleFunc("DELETE /api/v1/apps", h.DeleteApp)
	mux.HandleFunc("GET /api/v1/config", h.GetBuildConfig)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// ApplyMiddleware adds request logging around panic recovery, so a
// recovered panic is still logged as a 500.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	wrapped := recoveryMiddleware(logger, next)
	return loggingMiddleware(logger, wrapped)
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// ListApps returns all stored apps in insertion order.
func (h *Handler) ListApps(w http.ResponseWriter, r *http.Request) {
	apps, err := h.appSvc.List(r.Context())
	if err != nil {
		h.writeAppError(w, err, "failed to list apps")
		return
	}

	resp := make([]AppResponse, 0, len(apps))
	for _, app := range apps {
		resp = append(resp, toAppResponse(app))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetApp returns a single app by id.
func (h *Handler) GetApp(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	app, err := h.appSvc.Get(r.Context(), id)
	if err != nil {
		h.writeAppError(w, err, "failed to get app", "app_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toAppResponse(app))
}

// SaveApp creates an app, or updates one when the body carries an appId.
func (h *Handler) SaveApp(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAppRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, created, err := h.appSvc.Save(r.Context(), application.SaveAppRequest{
		ID:   req.AppID,
		Type: req.Type,
		Name: req.AppName,
		Key:  req.AppKey,
	})
	if err != nil {
		h.writeAppError(w, err, "failed to save app", "app_id", req.AppID)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toAppResponse(app))
}

// UpdateApp replaces the fields of the app named in the path.
func (h *Handler) UpdateApp(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, err := decodeAppRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.appSvc.Update(r.Context(), model.App{
		ID:   id,
		Type: model.AppType(req.Type),
		Name: req.AppName,
		Key:  req.AppKey,
	})
	if err != nil {
		h.writeAppError(w, err, "failed to update app", "app_id", id)
		return
	}

	writeJSON(w, http.StatusOK, toAppResponse(app))
}

// DeleteApp removes an app. The id comes from the path or, on the
// collection route, from the appId body field.
func (h *Handler) DeleteApp(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		req, err := decodeAppRequest(w, r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		id = req.AppID
	}

	if err := h.appSvc.Delete(r.Context(), id); err != nil {
		h.writeAppError(w, err, "failed to delete app", "app_id", id)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "app deleted"})
}

// GetBuildConfig returns the startup snapshot without app keys.
func (h *Handler) GetBuildConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toBuildConfigResponse(h.buildConfig))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeAppError maps service errors onto status codes. Validation and
// not-found errors are the caller's fault; anything else is logged and
// reported as a 500 without detail.
func (h *Handler) writeAppError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	switch {
	case model.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, driven.ErrAppNotFound):
		writeError(w, http.StatusNotFound, "app not found")
	default:
		h.logger.Error(msg, append(attrs, "error", err)...)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeAppRequest reads an AppRequest from a JSON body or from form values,
// depending on the request content type. Form bodies are parsed by hand
// because net/http ignores urlencoded bodies on DELETE. An empty JSON body
// decodes to the zero request.
func decodeAppRequest(w http.ResponseWriter, r *http.Request) (AppRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return AppRequest{}, err
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return AppRequest{}, err
		}
		return appRequestFromValues(values), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return AppRequest{}, err
		}
		return appRequestFromValues(url.Values(r.MultipartForm.Value)), nil
	}

	var req AppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return AppRequest{}, err
	}
	return req, nil
}

func appRequestFromValues(values url.Values) AppRequest {
	return AppRequest{
		AppID:   values.Get("appId"),
		Type:    values.Get("type"),
		AppName: values.Get("appName"),
		AppKey:  values.Get("appKey"),
	}
}
