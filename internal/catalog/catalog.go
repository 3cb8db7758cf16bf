// Package catalog wraps the remote music catalog API behind a typed client.
//
// The [Client] interface is the only surface the browse and resolver layers
// depend on; [HTTPClient] implements it against the catalog's REST API.
// Transport and authorization failures surface as shared sentinel errors and
// are never retried here.
package catalog

import (
	"context"

	"github.com/alryaz/go-music-browser/internal/models"
)

// Landing block identifiers accepted by [Client.FetchLanding].
const (
	LandingNewReleases  = "new-releases"
	LandingNewPlaylists = "new-playlists"
	LandingGenres       = "genres"
)

// Client is the catalog client adapter consumed by the browse tree.
//
// All calls are synchronous; any of them may fail with shared.ErrNotFound,
// shared.ErrAuthFailed or shared.ErrTransport.
type Client interface {
	// FetchEntity retrieves a single entity by content type and id.
	FetchEntity(ctx context.Context, contentType, contentID string) (models.Object, error)

	// FetchChildren retrieves the immediate children of an entity:
	// albums of an artist, tracks of an album or playlist.
	FetchChildren(ctx context.Context, object models.Object) ([]models.Object, error)

	// FetchDownloadInfo retrieves the download descriptor of a track
	// matching the requested codec and bitrate, or nil when no rendition
	// matches.
	FetchDownloadInfo(ctx context.Context, track *models.Track, codec string, bitrateKbps int) (*models.DownloadInfo, error)

	// FetchUserID returns the authenticated catalog user's identifier.
	FetchUserID(ctx context.Context) (string, error)

	// FetchUserPlaylists lists the authenticated user's playlists.
	FetchUserPlaylists(ctx context.Context) ([]models.Object, error)

	// FetchLikedTracks lists the authenticated user's liked tracks.
	FetchLikedTracks(ctx context.Context) ([]models.Object, error)

	// FetchLanding lists a curated landing block (new releases, new
	// playlists, genres).
	FetchLanding(ctx context.Context, block string) ([]models.Object, error)
}
