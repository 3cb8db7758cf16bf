package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/grafov/m3u8"

	"github.com/alryaz/go-music-browser/internal/browser"
	"github.com/alryaz/go-music-browser/internal/shared"
)

const manifestContentType = "application/x-mpegurl"

// DeliveryHandler serves resolved media to pull-based playback clients.
type DeliveryHandler struct {
	browser *browser.Browser
	logger  *log.Logger
}

// NewDeliveryHandler creates the handler backed by the given browser.
func NewDeliveryHandler(b *browser.Browser, logger *log.Logger) *DeliveryHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DeliveryHandler{
		browser: b,
		logger:  shared.WithLogger(logger, "component", "delivery"),
	}
}

// ServeHTTP handles both the playlist-manifest and single-track variants:
// the capability token is validated first, then the media is resolved on
// demand. Single URLs redirect; lists render a manifest.
func (h *DeliveryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	token := vars["token"]
	mediaType := vars["type"]
	mediaID := vars["id"]

	if !h.browser.Tokens().Matches(token) {
		http.Error(w, "invalid capability token", http.StatusUnauthorized)
		return
	}

	media, registry, err := h.browser.Delivery(r.Context(), mediaType, mediaID)
	if err != nil {
		h.reply(w, mediaType, mediaID, err)
		return
	}

	resolution, err := registry.Resolve(r.Context(), media)
	if err != nil {
		h.reply(w, mediaType, mediaID, err)
		return
	}

	switch {
	case resolution.URL != "":
		http.Redirect(w, r, resolution.URL, http.StatusFound)

	case len(resolution.URLs) > 0:
		body, err := renderManifest(resolution.URLs)
		if err != nil {
			h.logger.Error("manifest rendering failed", "media", mediaType+"/"+mediaID, "error", err)
			http.Error(w, "manifest rendering failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", manifestContentType)
		w.WriteHeader(http.StatusOK)
		w.Write(body)

	default:
		http.Error(w, "media did not resolve to any URL", http.StatusNotFound)
	}
}

// reply maps resolution errors onto delivery endpoint statuses.
func (h *DeliveryHandler) reply(w http.ResponseWriter, mediaType, mediaID string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrUnsupportedMedia), errors.Is(err, shared.ErrNoBaseURL):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Warn("delivery failed", "media", mediaType+"/"+mediaID, "error", err)
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
	}
}

// renderManifest builds a media playlist enumerating each URL in member
// order.
func renderManifest(urls []string) ([]byte, error) {
	playlist, err := m3u8.NewMediaPlaylist(uint(len(urls)), uint(len(urls)))
	if err != nil {
		return nil, err
	}

	for i, target := range urls {
		if err := playlist.Append(target, 1.0, fmt.Sprintf("Track %d", i+1)); err != nil {
			return nil, err
		}
	}
	playlist.Close()

	return playlist.Encode().Bytes(), nil
}
