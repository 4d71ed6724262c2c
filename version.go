package main

import (
	_ "embed"
	"net/http"
	"strings"
)

//go:embed version.txt
var collectablesVersion string

func CollectablesVersion() string {
	return strings.TrimSpace(collectablesVersion)
}

func VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: CollectablesVersion()})
}
