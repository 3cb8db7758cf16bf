package models

import (
	"fmt"
	"strings"
)

// Kind identifies a catalog entity type.
type Kind string

const (
	KindArtist   Kind = "artist"
	KindAlbum    Kind = "album"
	KindPlaylist Kind = "playlist"
	KindTrack    Kind = "track"
	KindGenre    Kind = "genre"
)

// Synthetic content types understood by the browse tree in addition to
// catalog-native kinds. They reference curated or per-user listings rather
// than single entities.
const (
	TypeLibrary           = "library" // root of the browse tree
	TypeMenu              = "menu"    // static menu category
	TypePersonalPlaylists = "personal_playlists"
	TypeUserLikes         = "user_likes"
	TypeNewReleases       = "new_releases"
	TypeNewPlaylists      = "new_playlists"
	TypeGenres            = "genres"
)

// KnownContentTypes is the set of content types accepted by the menu
// sanitizer and the browse entry points.
var KnownContentTypes = map[string]bool{
	TypeLibrary:           true,
	TypeMenu:              true,
	TypePersonalPlaylists: true,
	TypeUserLikes:         true,
	TypeNewReleases:       true,
	TypeNewPlaylists:      true,
	TypeGenres:            true,
	string(KindArtist):    true,
	string(KindAlbum):     true,
	string(KindPlaylist):  true,
	string(KindTrack):     true,
	string(KindGenre):     true,
}

// Object is implemented by every catalog entity.
type Object interface {
	Kind() Kind       // Kind returns the entity's catalog kind
	ObjectID() string // ObjectID returns the entity's catalog-native identifier
	Title() string    // Title returns the display title
	CoverURI() string // CoverURI returns the raw cover URI template (may be empty)
}

// DownloadInfo describes one downloadable rendition of a track.
type DownloadInfo struct {
	Codec       string `json:"codec"`
	BitrateKbps int    `json:"bitrate_in_kbps"`
	DirectLink  string `json:"direct_link"`
}

// Track is a single playable catalog track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"title"`
	Artists    []string `json:"artists"`
	AlbumID    string   `json:"album_id"`
	AlbumTitle string   `json:"album_title"`
	DurationMS int      `json:"duration_ms"`
	Cover      string   `json:"cover_uri"`
	Available  bool     `json:"available"`
	Lyrics     bool     `json:"lyrics_available"`

	// Downloads caches descriptors fetched alongside the track, if any.
	// Empty does not imply unavailable; a fresh lookup may still succeed.
	Downloads []DownloadInfo `json:"download_info,omitempty"`
}

func (t *Track) Kind() Kind       { return KindTrack }
func (t *Track) ObjectID() string { return t.ID }
func (t *Track) Title() string    { return t.Name }
func (t *Track) CoverURI() string { return t.Cover }

// ArtistLine returns the track's artists joined for display.
func (t *Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Album is a catalog album.
type Album struct {
	ID         string   `json:"id"`
	Name       string   `json:"title"`
	Artists    []string `json:"artists"`
	Year       int      `json:"year"`
	Genre      string   `json:"genre"`
	TrackCount int      `json:"track_count"`
	Cover      string   `json:"cover_uri"`
	Available  bool     `json:"available"`
}

func (a *Album) Kind() Kind       { return KindAlbum }
func (a *Album) ObjectID() string { return a.ID }
func (a *Album) Title() string    { return a.Name }
func (a *Album) CoverURI() string { return a.Cover }

// Artist is a catalog artist.
type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AlbumCount int    `json:"album_count"`
	Cover      string `json:"cover_uri"`
	Available  bool   `json:"available"`
}

func (a *Artist) Kind() Kind       { return KindArtist }
func (a *Artist) ObjectID() string { return a.ID }
func (a *Artist) Title() string    { return a.Name }
func (a *Artist) CoverURI() string { return a.Cover }

// Playlist is a catalog playlist, identified by its owner UID and per-owner
// numeric kind joined as "uid:kind". Curated playlists without an owner use
// the bare kind.
type Playlist struct {
	UID        string `json:"uid"`
	PlaylistID string `json:"kind"`
	Name       string `json:"title"`
	TrackCount int    `json:"track_count"`
	Cover      string `json:"cover_uri"`
	Hidden     bool   `json:"hidden"`

	// Tracks caches the member listing when the catalog returned it inline.
	Tracks []Track `json:"tracks,omitempty"`
}

func (p *Playlist) Kind() Kind       { return KindPlaylist }
func (p *Playlist) Title() string    { return p.Name }
func (p *Playlist) CoverURI() string { return p.Cover }

// ObjectID returns "uid:kind", or the bare kind for ownerless playlists.
func (p *Playlist) ObjectID() string {
	if p.UID == "" {
		return p.PlaylistID
	}
	return p.UID + ":" + p.PlaylistID
}

// OwnedBy reports whether the playlist belongs to the given catalog user.
// Bare playlist ids (no owner prefix) are treated as owned.
func (p *Playlist) OwnedBy(userID string) bool {
	return p.UID == "" || p.UID == userID
}

// SplitPlaylistID splits a playlist content id into owner UID and kind.
// A bare id yields an empty UID.
func SplitPlaylistID(contentID string) (uid, playlistID string) {
	if idx := strings.LastIndex(contentID, ":"); idx >= 0 {
		return contentID[:idx], contentID[idx+1:]
	}
	return "", contentID
}

// Genre is a catalog genre listing.
type Genre struct {
	ID    string `json:"id"`
	Name  string `json:"title"`
	Cover string `json:"cover_uri"`
}

func (g *Genre) Kind() Kind       { return KindGenre }
func (g *Genre) ObjectID() string { return g.ID }
func (g *Genre) Title() string    { return g.Name }
func (g *Genre) CoverURI() string { return g.Cover }

// CoverURL materializes a cover URI template at the given resolution.
//
// Catalog cover URIs carry a "%%" placeholder for the target "WxH" size.
func CoverURL(coverURI, resolution string) string {
	if coverURI == "" {
		return ""
	}
	if resolution == "" {
		resolution = "200x200"
	}
	uri := strings.ReplaceAll(coverURI, "%%", resolution)
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		uri = "https://" + uri
	}
	return uri
}

// Describe formats an entity reference for log messages.
func Describe(contentType, contentID string) string {
	return fmt.Sprintf("%s/%s", contentType, contentID)
}
