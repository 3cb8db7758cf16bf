package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/alryaz/go-music-browser/internal/browser"
	"github.com/alryaz/go-music-browser/internal/resolver"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// APIHandler exposes the host-facing browse and play entry points over HTTP.
type APIHandler struct {
	browser *browser.Browser
	logger  *log.Logger
}

// NewAPIHandler creates the handler backed by the given browser.
func NewAPIHandler(b *browser.Browser, logger *log.Logger) *APIHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &APIHandler{
		browser: b,
		logger:  shared.WithLogger(logger, "component", "api"),
	}
}

// Browse handles GET /browse?type=&id=&children=.
func (h *APIHandler) Browse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fetchChildren := query.Get("children") != "false"

	node, err := h.browser.Browse(
		r.Context(), query.Get("type"), query.Get("id"), fetchChildren, resolver.ModePull, nil,
	)
	if err != nil {
		h.reply(w, err)
		return
	}

	writeJSON(w, node)
}

// Play handles GET /play?type=&id=&mode=&local=.
func (h *APIHandler) Play(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	contentType := query.Get("type")
	contentID := query.Get("id")
	if contentType == "" || contentID == "" {
		http.Error(w, "type and id are required", http.StatusBadRequest)
		return
	}

	mode := resolver.ModePull
	if query.Get("mode") == string(resolver.ModeCloud) {
		mode = resolver.ModeCloud
	}

	instruction, err := h.browser.Play(
		r.Context(), contentType, contentID, mode, query.Get("local") == "true", nil,
	)
	if err != nil {
		h.reply(w, err)
		return
	}

	writeJSON(w, instruction)
}

func (h *APIHandler) reply(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, shared.ErrUnsupportedMedia), errors.Is(err, shared.ErrNoBaseURL):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, shared.ErrAuthFailed), errors.Is(err, shared.ErrNotAuthenticated):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		h.logger.Warn("request failed", "error", err)
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
