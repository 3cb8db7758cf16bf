package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/alryaz/go-music-browser/internal/auth"
	"github.com/alryaz/go-music-browser/internal/catalog"
	"github.com/alryaz/go-music-browser/internal/menu"
	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/resolver"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// ClientFactory builds a catalog client authorized by a session token.
type ClientFactory func(token string) catalog.Client

// sessionState bundles the collaborators derived from one live session.
// Replaced whole when the session changes.
type sessionState struct {
	session  *auth.Session
	client   catalog.Client
	registry *resolver.Registry
}

// Browser is the catalog browsing engine: menu overlay, node cache,
// session coordination and play resolution behind one service context.
type Browser struct {
	config        *shared.Config
	menu          *menu.Tree
	cache         *Cache
	coordinator   *auth.Coordinator
	clientFactory ClientFactory
	tokens        *resolver.TokenGuard
	observers     *observerRegistry
	logger        *log.Logger

	resolution string // normalized thumbnail "WxH", may be empty

	mu    sync.Mutex
	state *sessionState
}

// New creates a Browser. The menu tree must already be parsed and validated.
func New(config *shared.Config, tree *menu.Tree, coordinator *auth.Coordinator, factory ClientFactory, tokens *resolver.TokenGuard, logger *log.Logger) *Browser {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if tokens == nil {
		tokens = &resolver.TokenGuard{}
	}

	resolution, _ := config.Browser.ThumbnailResolution.(string)

	return &Browser{
		config:        config,
		menu:          tree,
		cache:         NewCache(config.CacheTTLDuration()),
		coordinator:   coordinator,
		clientFactory: factory,
		tokens:        tokens,
		observers:     newObserverRegistry(),
		logger:        shared.WithLogger(logger, "component", "browser"),
		resolution:    resolution,
	}
}

// Tokens exposes the capability token guard shared with the delivery
// endpoint.
func (b *Browser) Tokens() *resolver.TokenGuard { return b.tokens }

// Cache exposes the node cache, mainly for teardown and tests.
func (b *Browser) Cache() *Cache { return b.cache }

// AddObserver registers an observer for session lifecycle notifications.
func (b *Browser) AddObserver(observer Observer) { b.observers.add(observer) }

// RemoveObserver deregisters an observer.
func (b *Browser) RemoveObserver(observer Observer) { b.observers.remove(observer) }

// ensureState establishes the catalog session on first use and derives the
// client and resolver registry from it.
func (b *Browser) ensureState(ctx context.Context, caller auth.Caller) (*sessionState, error) {
	session, err := b.coordinator.Session(ctx, caller)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.state != nil && b.state.session == session {
		state := b.state
		b.mu.Unlock()
		return state, nil
	}

	client := b.clientFactory(session.Token)
	registry := resolver.NewRegistry(resolver.Deps{
		Client:      client,
		Codec:       b.config.Catalog.Codec,
		BitrateKbps: b.config.Catalog.Bitrate,
		ExternalURL: b.config.Server.ExternalURL,
		Token:       b.tokens.Current,
	}, b.logger)

	state := &sessionState{session: session, client: client, registry: registry}
	b.state = state
	b.mu.Unlock()

	b.observers.notify(true)
	return state, nil
}

// Browse is the host-facing browse entry point: resolves a node with
// amortized cache garbage collection riding on the call.
func (b *Browser) Browse(ctx context.Context, contentType, contentID string, fetchChildren bool, mode resolver.ViewMode, caller auth.Caller) (*Node, error) {
	return b.Resolve(ctx, contentType, contentID, fetchChildren, true, mode, caller)
}

// Resolve materializes the browse node for (contentType, contentID).
//
// A live, sufficiently deep cache entry is returned without any remote call.
// Children are fetched one level per call; deeper levels are resolved lazily
// by subsequent calls. Transport and auth errors propagate uncached so the
// next call retries.
func (b *Browser) Resolve(ctx context.Context, contentType, contentID string, fetchChildren, runGC bool, mode resolver.ViewMode, caller auth.Caller) (*Node, error) {
	if contentType == "" {
		contentType = models.TypeLibrary
	}
	if !models.KnownContentTypes[contentType] {
		return nil, fmt.Errorf("%w: unknown content type %q", shared.ErrNotFound, contentType)
	}

	// Listing types are their own id; normalizing here keeps fingerprints
	// stable regardless of what the host passed.
	switch contentType {
	case models.TypeLibrary, models.TypePersonalPlaylists, models.TypeUserLikes,
		models.TypeNewReleases, models.TypeNewPlaylists, models.TypeGenres:
		contentID = contentType
	}

	if runGC {
		defer func() {
			if removed := b.cache.GC(); removed > 0 {
				b.logger.Debug("cache swept", "evicted", removed)
			}
		}()
	}

	minDepth := 0
	if fetchChildren {
		minDepth = 1
	}

	fingerprint := Fingerprint{ContentType: contentType, ContentID: contentID}
	if node, ok := b.cache.Get(fingerprint, minDepth); ok {
		return node, nil
	}

	state, err := b.ensureState(ctx, caller)
	if err != nil {
		return nil, err
	}

	var node *Node
	switch contentType {
	case models.TypeLibrary:
		node, err = b.renderMenuEntry(ctx, state, b.menu.Root, contentType, "", fetchChildren, mode, caller)

	case models.TypeMenu:
		entry, found := b.menuEntryAt(contentID)
		if !found {
			return nil, fmt.Errorf("%w: menu entry %q", shared.ErrNotFound, contentID)
		}
		node, err = b.renderMenuEntry(ctx, state, entry, contentType, contentID, fetchChildren, mode, caller)

	case models.TypePersonalPlaylists, models.TypeUserLikes,
		models.TypeNewReleases, models.TypeNewPlaylists, models.TypeGenres:
		node, err = b.renderListing(ctx, state, contentType, fetchChildren, mode)

	default:
		node, err = b.renderCatalogNode(ctx, state, contentType, contentID, fetchChildren, mode)
	}
	if err != nil {
		return nil, err
	}

	b.cache.Put(fingerprint, node, minDepth)
	return node, nil
}

// renderMenuEntry converts a static menu entry into a browse node. Leaf
// references defer to Resolve for the referenced content, fetched shallow.
func (b *Browser) renderMenuEntry(ctx context.Context, state *sessionState, entry menu.Entry, contentType, contentID string, fetchChildren bool, mode resolver.ViewMode, caller auth.Caller) (*Node, error) {
	title := entry.Title
	if title == "" {
		title = listingTitle(models.TypeLibrary, b.config.Browser.Language)
	}

	node := &Node{
		ContentType: contentType,
		ContentID:   contentID,
		Title:       title,
		Thumbnail:   entry.Image,
		CanExpand:   len(entry.Items) > 0,
	}

	if !fetchChildren {
		return node, nil
	}

	for i, item := range entry.Items {
		switch {
		case item.Link != nil:
			child, err := b.Resolve(ctx, item.Link.Type, item.Link.ID, false, false, mode, caller)
			if err != nil {
				b.logger.Warn("menu reference skipped", "link", item.Link.String(), "error", err)
				continue
			}
			node.Children = append(node.Children, child)

		case item.Entry != nil:
			childID := strconv.Itoa(i)
			if contentType == models.TypeMenu && contentID != "" {
				childID = contentID + "." + childID
			}
			child, err := b.renderMenuEntry(ctx, state, *item.Entry, models.TypeMenu, childID, false, mode, caller)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
	}

	return node, nil
}

// menuEntryAt walks the menu tree by a dotted index path.
func (b *Browser) menuEntryAt(path string) (menu.Entry, bool) {
	entry := b.menu.Root
	if path == "" {
		return entry, true
	}

	for _, part := range strings.Split(path, ".") {
		index, err := strconv.Atoi(part)
		if err != nil || index < 0 || index >= len(entry.Items) {
			return menu.Entry{}, false
		}
		item := entry.Items[index]
		if item.Entry == nil {
			return menu.Entry{}, false
		}
		entry = *item.Entry
	}

	return entry, true
}

// renderListing materializes a synthetic per-user or curated listing node.
func (b *Browser) renderListing(ctx context.Context, state *sessionState, contentType string, fetchChildren bool, mode resolver.ViewMode) (*Node, error) {
	node := &Node{
		ContentType: contentType,
		ContentID:   contentType,
		Title:       listingTitle(contentType, b.config.Browser.Language),
		CanExpand:   true,
	}

	if !fetchChildren {
		return node, nil
	}

	var objects []models.Object
	var err error

	switch contentType {
	case models.TypePersonalPlaylists:
		objects, err = state.client.FetchUserPlaylists(ctx)
	case models.TypeUserLikes:
		objects, err = state.client.FetchLikedTracks(ctx)
	case models.TypeNewReleases:
		objects, err = state.client.FetchLanding(ctx, catalog.LandingNewReleases)
	case models.TypeNewPlaylists:
		objects, err = state.client.FetchLanding(ctx, catalog.LandingNewPlaylists)
	case models.TypeGenres:
		objects, err = state.client.FetchLanding(ctx, catalog.LandingGenres)
	}
	if err != nil {
		return nil, err
	}

	for _, object := range objects {
		if playlist, ok := object.(*models.Playlist); ok && playlist.Hidden && !b.config.Browser.ShowHidden {
			continue
		}
		node.Children = append(node.Children, b.objectNode(state, object, mode))
	}

	return node, nil
}

// renderCatalogNode materializes a catalog-native entity and, when asked,
// its immediate children.
func (b *Browser) renderCatalogNode(ctx context.Context, state *sessionState, contentType, contentID string, fetchChildren bool, mode resolver.ViewMode) (*Node, error) {
	object, err := state.client.FetchEntity(ctx, contentType, contentID)
	if err != nil {
		return nil, err
	}

	node := b.objectNode(state, object, mode)

	if fetchChildren && node.CanExpand {
		children, err := state.client.FetchChildren(ctx, object)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			node.Children = append(node.Children, b.objectNode(state, child, mode))
		}
	}

	return node, nil
}

// objectNode converts a catalog entity into a browse node and computes its
// playability under the current view mode.
func (b *Browser) objectNode(state *sessionState, object models.Object, mode resolver.ViewMode) *Node {
	title := object.Title()
	if track, ok := object.(*models.Track); ok && b.config.Browser.Lyrics && track.Lyrics {
		title += " (lyrics)"
	}

	canExpand := false
	switch object.Kind() {
	case models.KindArtist, models.KindAlbum, models.KindPlaylist, models.KindGenre:
		canExpand = true
	}

	return &Node{
		ContentType: string(object.Kind()),
		ContentID:   object.ObjectID(),
		Title:       title,
		Thumbnail:   models.CoverURL(object.CoverURI(), b.resolution),
		CanPlay:     state.registry.CanPlay(object, mode, state.session.UserID),
		CanExpand:   canExpand,
		Media:       object,
	}
}

// Play resolves a play request into a host instruction.
//
// Cloud mode yields a voice command, or a structured payload when the
// device is reachable locally. Pull mode yields a URL: a direct stream link,
// or a delivery-endpoint manifest URL for containers.
func (b *Browser) Play(ctx context.Context, contentType, contentID string, mode resolver.ViewMode, localDevice bool, caller auth.Caller) (resolver.PlayInstruction, error) {
	node, err := b.Resolve(ctx, contentType, contentID, false, true, mode, caller)
	if err != nil {
		return resolver.PlayInstruction{}, err
	}
	if node.Media == nil {
		return resolver.PlayInstruction{}, fmt.Errorf(
			"%w: %s is not playable", shared.ErrUnsupportedMedia, models.Describe(contentType, contentID),
		)
	}

	state, err := b.ensureState(ctx, caller)
	if err != nil {
		return resolver.PlayInstruction{}, err
	}

	if mode == resolver.ModeCloud {
		if localDevice {
			return resolver.PlayInstruction{Payload: resolver.LocalPayload(node.Media)}, nil
		}
		command, err := resolver.CloudCommand(node.Media, state.session.UserID)
		if err != nil {
			return resolver.PlayInstruction{}, err
		}
		return resolver.PlayInstruction{Command: command}, nil
	}

	if requiresProbe, registered := state.registry.Probe(node.Media.Kind()); registered && requiresProbe {
		if b.config.Server.ExternalURL == "" {
			return resolver.PlayInstruction{}, fmt.Errorf(
				"%w: cannot play container %s", shared.ErrNoBaseURL, models.Describe(contentType, contentID),
			)
		}
		manifest := resolver.DeliveryURL(
			b.config.Server.ExternalURL, b.tokens.Current(), node.ContentType, node.ContentID, "playlist.m3u8",
		)
		return resolver.PlayInstruction{URL: manifest}, nil
	}

	resolution, err := state.registry.Resolve(ctx, node.Media)
	if err != nil {
		return resolver.PlayInstruction{}, err
	}

	return resolver.PlayInstruction{URL: resolution.URL}, nil
}

// Delivery resolves a media object and its registry for the delivery
// endpoint, without child expansion.
func (b *Browser) Delivery(ctx context.Context, mediaType, mediaID string) (models.Object, *resolver.Registry, error) {
	node, err := b.Resolve(ctx, mediaType, mediaID, false, false, resolver.ModePull, nil)
	if err != nil {
		return nil, nil, err
	}
	if node.Media == nil {
		return nil, nil, fmt.Errorf("%w: %s has no media object", shared.ErrNotFound, models.Describe(mediaType, mediaID))
	}

	state, err := b.ensureState(ctx, nil)
	if err != nil {
		return nil, nil, err
	}

	return node.Media, state.registry, nil
}

// Teardown clears the cache, drops the session and rotates the capability
// token, then notifies observers. Safe to call repeatedly.
func (b *Browser) Teardown() {
	b.cache.Clear()
	b.coordinator.Reset()
	b.tokens.Rotate()

	b.mu.Lock()
	b.state = nil
	b.mu.Unlock()

	b.observers.notify(false)
	b.logger.Info("browser torn down")
}

// listingTitle returns the localized display title for a synthetic listing.
func listingTitle(contentType, language string) string {
	titles, ok := listingTitles[contentType]
	if !ok {
		return contentType
	}
	if title, ok := titles[language]; ok {
		return title
	}
	return titles["en"]
}

var listingTitles = map[string]map[string]string{
	models.TypeLibrary: {
		"en": "Music",
		"ru": "Музыка",
		"uk": "Музика",
	},
	models.TypePersonalPlaylists: {
		"en": "My playlists",
		"ru": "Мои плейлисты",
		"uk": "Мої плейлисти",
	},
	models.TypeUserLikes: {
		"en": "Liked tracks",
		"ru": "Любимые треки",
		"uk": "Улюблені треки",
	},
	models.TypeNewReleases: {
		"en": "New releases",
		"ru": "Новые релизы",
		"uk": "Нові релізи",
	},
	models.TypeNewPlaylists: {
		"en": "New playlists",
		"ru": "Новые плейлисты",
		"uk": "Нові плейлисти",
	},
	models.TypeGenres: {
		"en": "Genres",
		"ru": "Жанры",
		"uk": "Жанри",
	},
}
