// Package resolver turns abstract catalog items into playable instructions.
//
// Two view modes exist and stay deliberately separate: cloud/voice mode
// issues named command strings (or structured payloads on the local network),
// while generic/pull mode hands the host a URL. Pull-mode strategies live in
// a [Registry] keyed by the runtime kind of the media object; unknown kinds
// degrade to non-playable instead of failing the browse.
package resolver

import (
	"context"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/alryaz/go-music-browser/internal/catalog"
	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// ViewMode selects playback semantics for a browse or play request.
type ViewMode string

const (
	// ModeCloud plays items by voice-style command on a paired device.
	ModeCloud ViewMode = "cloud"
	// ModePull plays items by handing the host a URL.
	ModePull ViewMode = "pull"
)

// Resolution is the outcome of a pull-mode resolve: exactly one of URL
// (direct link) or URLs (container member delivery links) is set.
type Resolution struct {
	URL  string
	URLs []string
}

// PlayInstruction is what a play request hands back to the host.
type PlayInstruction struct {
	// Command is a voice command string (cloud mode).
	Command string `json:"command,omitempty"`
	// Payload is a structured local-network play request (cloud mode,
	// local device path).
	Payload map[string]string `json:"payload,omitempty"`
	// URL is a direct or delivery-endpoint URL (pull mode).
	URL string `json:"url,omitempty"`
}

// Deps carries the collaborators a resolve function may need.
type Deps struct {
	Client      catalog.Client
	Codec       string
	BitrateKbps int

	// ExternalURL is the externally reachable server base; containers are
	// non-playable without it.
	ExternalURL string

	// Token returns the current capability token for delivery URLs.
	Token func() string
}

// ResolveFunc maps a media object to a pull-mode [Resolution].
type ResolveFunc func(ctx context.Context, deps Deps, object models.Object) (Resolution, error)

type entry struct {
	resolve       ResolveFunc
	requiresProbe bool
}

// Registry maps catalog item kinds to resolution strategies.
type Registry struct {
	deps    Deps
	entries map[models.Kind]entry
	logger  *log.Logger
}

// NewRegistry creates a Registry with the default track and playlist
// strategies registered.
func NewRegistry(deps Deps, logger *log.Logger) *Registry {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	registry := &Registry{
		deps:    deps,
		entries: map[models.Kind]entry{},
		logger:  shared.WithLogger(logger, "component", "resolver"),
	}

	registry.Register(models.KindTrack, ResolveTrack, false)
	registry.Register(models.KindPlaylist, WrapContainer(ExpandPlaylist), true)

	return registry
}

// Register installs a resolution strategy for a kind. requiresProbe marks
// strategies whose playability is only discovered at play time.
func (r *Registry) Register(kind models.Kind, fn ResolveFunc, requiresProbe bool) {
	r.entries[kind] = entry{resolve: fn, requiresProbe: requiresProbe}
}

// Probe reports whether kind has a registered strategy and whether that
// strategy's playability is only discovered at play time.
func (r *Registry) Probe(kind models.Kind) (requiresProbe, registered bool) {
	strategy, ok := r.entries[kind]
	if !ok {
		return false, false
	}
	return strategy.requiresProbe, true
}

// Deps returns the registry's resolve dependencies.
func (r *Registry) Deps() Deps { return r.deps }

// Resolve maps a media object to a pull-mode resolution.
//
// Unregistered kinds and strategies that find no usable rendition return
// shared.ErrUnsupportedMedia.
func (r *Registry) Resolve(ctx context.Context, object models.Object) (Resolution, error) {
	if object == nil {
		return Resolution{}, fmt.Errorf("%w: no media object", shared.ErrUnsupportedMedia)
	}

	strategy, ok := r.entries[object.Kind()]
	if !ok {
		return Resolution{}, fmt.Errorf("%w: no strategy for kind %q", shared.ErrUnsupportedMedia, object.Kind())
	}

	return strategy.resolve(ctx, r.deps, object)
}

// CanPlay computes a node's playability flag for the given view mode without
// touching the network.
//
// Cloud mode follows device command support: tracks and albums always, a
// playlist only when owned by the authenticated user. Pull mode follows the
// registry: probe-free strategies are eagerly playable, containers are
// playable whenever delivery URLs can be built.
func (r *Registry) CanPlay(object models.Object, mode ViewMode, userID string) bool {
	if object == nil {
		return false
	}

	if mode == ModeCloud {
		switch media := object.(type) {
		case *models.Track, *models.Album:
			return true
		case *models.Playlist:
			return media.OwnedBy(userID)
		}
		return false
	}

	strategy, ok := r.entries[object.Kind()]
	if !ok {
		return false
	}
	if !strategy.requiresProbe {
		return true
	}
	return r.deps.ExternalURL != ""
}

// CloudCommand builds the voice command string for cloud playback.
//
// Album and track commands embed the content id; playlists embed the title
// and are rejected unless owned by the authenticated user.
func CloudCommand(object models.Object, userID string) (string, error) {
	switch media := object.(type) {
	case *models.Album:
		return "альбом " + media.ID, nil
	case *models.Track:
		return "трек " + media.ID, nil
	case *models.Playlist:
		if !media.OwnedBy(userID) {
			return "", fmt.Errorf("%w: playlist %s is not owned by user", shared.ErrUnsupportedMedia, media.ObjectID())
		}
		return "плейлист " + media.Name, nil
	}

	return "", fmt.Errorf("%w: no cloud command for kind %q", shared.ErrUnsupportedMedia, object.Kind())
}

// LocalPayload builds the structured play request for local-network devices.
func LocalPayload(object models.Object) map[string]string {
	return map[string]string{
		"command": "playMusic",
		"type":    string(object.Kind()),
		"id":      object.ObjectID(),
	}
}

// DeliveryPath is the delivery endpoint's base route prefix.
const DeliveryPath = "/api/music_browser/v1"

// DeliveryURL builds a delivery-endpoint URL for one media item. variant is
// "playlist.m3u8" for manifests or "track" for single-item redirects.
func DeliveryURL(base, token, mediaType, mediaID, variant string) string {
	return fmt.Sprintf(
		"%s%s/%s/%s/%s/%s",
		base, DeliveryPath, url.PathEscape(token), url.PathEscape(mediaType), url.PathEscape(mediaID), variant,
	)
}
