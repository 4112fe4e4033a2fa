package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionResponse reports build information.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
}

var versionInfo = VersionResponse{Version: "dev"}

// SetVersionInfo records build metadata for the version endpoint.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo = VersionResponse{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	}
}

// VersionHandler serves build information.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	resp := versionInfo
	resp.GoVersion = runtime.Version()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
