package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
)

// writeJSON encodes v as the response body. Encoding happens before the
// status line is sent so an unencodable value still produces a clean 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal server error"}`)
	}

	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError sends {"error": message}. Messages reach API clients, so
// callers pass storage failures through writeAppError instead.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse acknowledges an operation that returns no record.
type messageResponse struct {
	Message string `json:"message"`
}

// AppRequest is the body of the save, update and delete endpoints. The same
// field names are accepted as form values.
type AppRequest struct {
	AppID   string `json:"appId"`
	Type    string `json:"type"`
	AppName string `json:"appName"`
	AppKey  string `json:"appKey"`
}

// AppResponse is the JSON representation of a stored app.
type AppResponse struct {
	AppID   string `json:"appId"`
	Type    string `json:"type"`
	AppName string `json:"appName"`
	AppKey  string `json:"appKey"`
}

// BuildConfigResponse is the JSON representation of the startup snapshot.
// App keys are never included.
type BuildConfigResponse struct {
	Version    string        `json:"version"`
	CommitHash string        `json:"commitHash"`
	CommitDate string        `json:"commitDate"`
	BuildMode  string        `json:"buildMode"`
	IsApp      bool          `json:"isApp"`
	BasePath   string        `json:"basePath"`
	Apps       []AppResponse `json:"apps"`
	Template   string        `json:"template"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toAppResponse converts a domain App to its JSON response representation.
func toAppResponse(app model.App) AppResponse {
	return AppResponse{
		AppID:   app.ID,
		Type:    string(app.Type),
		AppName: app.Name,
		AppKey:  app.Key,
	}
}

// toBuildConfigResponse converts the snapshot, dropping app keys.
func toBuildConfigResponse(cfg model.BuildConfig) BuildConfigResponse {
	apps := make([]AppResponse, 0, len(cfg.Apps))
	for _, app := range cfg.RedactedApps() {
		apps = append(apps, toAppResponse(app))
	}

	return BuildConfigResponse{
		Version:    cfg.Version,
		CommitHash: cfg.CommitHash,
		CommitDate: cfg.CommitDate,
		BuildMode:  cfg.BuildMode,
		IsApp:      cfg.IsApp,
		BasePath:   cfg.BasePath,
		Apps:       apps,
		Template:   cfg.Template,
	}
}
