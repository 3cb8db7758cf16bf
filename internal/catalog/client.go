package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// requestsPerSecond bounds outgoing catalog calls; the API throttles
// aggressively above this.
const requestsPerSecond = 10

// HTTPClient implements [Client] against the catalog REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// Option configures an [HTTPClient].
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying [http.Client].
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = client }
}

// WithLanguage sets the Accept-Language tag sent on every request.
func WithLanguage(language string) Option {
	return func(c *HTTPClient) { c.language = language }
}

// NewHTTPClient creates a catalog client authorized by the given session token.
func NewHTTPClient(baseURL, token string, logger *log.Logger, opts ...Option) *HTTPClient {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	client := &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		language:   "en",
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		logger:     shared.WithLogger(logger, "component", "catalog"),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// doRequest performs an authenticated GET against the catalog API and decodes
// the JSON response into result.
func (c *HTTPClient) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept-Language", c.language)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrNotFound, endpoint)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: catalog rejected session (status %d)", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: catalog API status %d", shared.ErrTransport, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrTransport, err)
		}
	}

	return nil
}

// FetchEntity retrieves a single entity by content type and id.
func (c *HTTPClient) FetchEntity(ctx context.Context, contentType, contentID string) (models.Object, error) {
	switch contentType {
	case string(models.KindArtist):
		var artist models.Artist
		if err := c.doRequest(ctx, "/artists/"+url.PathEscape(contentID), &artist); err != nil {
			return nil, err
		}
		return &artist, nil

	case string(models.KindAlbum):
		var album models.Album
		if err := c.doRequest(ctx, "/albums/"+url.PathEscape(contentID), &album); err != nil {
			return nil, err
		}
		return &album, nil

	case string(models.KindTrack):
		var track models.Track
		if err := c.doRequest(ctx, "/tracks/"+url.PathEscape(contentID), &track); err != nil {
			return nil, err
		}
		return &track, nil

	case string(models.KindPlaylist):
		uid, playlistID := models.SplitPlaylistID(contentID)
		endpoint := "/playlists/" + url.PathEscape(playlistID)
		if uid != "" {
			endpoint = "/users/" + url.PathEscape(uid) + "/playlists/" + url.PathEscape(playlistID)
		}
		var playlist models.Playlist
		if err := c.doRequest(ctx, endpoint, &playlist); err != nil {
			return nil, err
		}
		return &playlist, nil

	case string(models.KindGenre):
		var genre models.Genre
		if err := c.doRequest(ctx, "/genres/"+url.PathEscape(contentID), &genre); err != nil {
			return nil, err
		}
		return &genre, nil
	}

	return nil, fmt.Errorf("%w: unknown content type %q", shared.ErrNotFound, contentType)
}

// FetchChildren retrieves the immediate children of an entity.
func (c *HTTPClient) FetchChildren(ctx context.Context, object models.Object) ([]models.Object, error) {
	switch entity := object.(type) {
	case *models.Artist:
		var albums []models.Album
		if err := c.doRequest(ctx, "/artists/"+url.PathEscape(entity.ID)+"/albums", &albums); err != nil {
			return nil, err
		}
		children := make([]models.Object, 0, len(albums))
		for i := range albums {
			children = append(children, &albums[i])
		}
		return children, nil

	case *models.Album:
		var tracks []models.Track
		if err := c.doRequest(ctx, "/albums/"+url.PathEscape(entity.ID)+"/tracks", &tracks); err != nil {
			return nil, err
		}
		return trackObjects(tracks), nil

	case *models.Playlist:
		// Tracks arrive inline on some playlist payloads, set at decode time
		// only. Never written back here; playlist entities are shared
		// between concurrent callers.
		if entity.Tracks != nil {
			return trackObjects(entity.Tracks), nil
		}
		uid, playlistID := models.SplitPlaylistID(entity.ObjectID())
		endpoint := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
		if uid != "" {
			endpoint = "/users/" + url.PathEscape(uid) + "/playlists/" + url.PathEscape(playlistID) + "/tracks"
		}
		var tracks []models.Track
		if err := c.doRequest(ctx, endpoint, &tracks); err != nil {
			return nil, err
		}
		return trackObjects(tracks), nil

	case *models.Genre:
		var playlists []models.Playlist
		if err := c.doRequest(ctx, "/genres/"+url.PathEscape(entity.ID)+"/playlists", &playlists); err != nil {
			return nil, err
		}
		children := make([]models.Object, 0, len(playlists))
		for i := range playlists {
			children = append(children, &playlists[i])
		}
		return children, nil
	}

	return nil, nil
}

// FetchDownloadInfo retrieves the download descriptor matching the requested
// codec and bitrate, or nil when no rendition matches.
func (c *HTTPClient) FetchDownloadInfo(ctx context.Context, track *models.Track, codec string, bitrateKbps int) (*models.DownloadInfo, error) {
	endpoint := "/tracks/" + url.PathEscape(track.ID) + "/download-info" +
		"?codec=" + url.QueryEscape(codec) + "&bitrate=" + strconv.Itoa(bitrateKbps)

	var infos []models.DownloadInfo
	if err := c.doRequest(ctx, endpoint, &infos); err != nil {
		return nil, err
	}

	for i := range infos {
		if infos[i].Codec == codec && infos[i].BitrateKbps == bitrateKbps {
			return &infos[i], nil
		}
	}

	return nil, nil
}

// FetchUserID returns the authenticated catalog user's identifier.
func (c *HTTPClient) FetchUserID(ctx context.Context) (string, error) {
	var status struct {
		Account struct {
			UID string `json:"uid"`
		} `json:"account"`
	}
	if err := c.doRequest(ctx, "/account/status", &status); err != nil {
		return "", err
	}
	return status.Account.UID, nil
}

// FetchUserPlaylists lists the authenticated user's playlists.
func (c *HTTPClient) FetchUserPlaylists(ctx context.Context) ([]models.Object, error) {
	var playlists []models.Playlist
	if err := c.doRequest(ctx, "/users/me/playlists", &playlists); err != nil {
		return nil, err
	}
	children := make([]models.Object, 0, len(playlists))
	for i := range playlists {
		children = append(children, &playlists[i])
	}
	return children, nil
}

// FetchLikedTracks lists the authenticated user's liked tracks.
func (c *HTTPClient) FetchLikedTracks(ctx context.Context) ([]models.Object, error) {
	var tracks []models.Track
	if err := c.doRequest(ctx, "/users/me/likes/tracks", &tracks); err != nil {
		return nil, err
	}
	return trackObjects(tracks), nil
}

// FetchLanding lists a curated landing block.
func (c *HTTPClient) FetchLanding(ctx context.Context, block string) ([]models.Object, error) {
	switch block {
	case LandingNewReleases:
		var albums []models.Album
		if err := c.doRequest(ctx, "/landing/new-releases", &albums); err != nil {
			return nil, err
		}
		children := make([]models.Object, 0, len(albums))
		for i := range albums {
			children = append(children, &albums[i])
		}
		return children, nil

	case LandingNewPlaylists:
		var playlists []models.Playlist
		if err := c.doRequest(ctx, "/landing/new-playlists", &playlists); err != nil {
			return nil, err
		}
		children := make([]models.Object, 0, len(playlists))
		for i := range playlists {
			children = append(children, &playlists[i])
		}
		return children, nil

	case LandingGenres:
		var genres []models.Genre
		if err := c.doRequest(ctx, "/genres", &genres); err != nil {
			return nil, err
		}
		children := make([]models.Object, 0, len(genres))
		for i := range genres {
			children = append(children, &genres[i])
		}
		return children, nil
	}

	return nil, fmt.Errorf("%w: unknown landing block %q", shared.ErrNotFound, block)
}

func trackObjects(tracks []models.Track) []models.Object {
	children := make([]models.Object, 0, len(tracks))
	for i := range tracks {
		children = append(children, &tracks[i])
	}
	return children
}

var _ Client = (*HTTPClient)(nil)
