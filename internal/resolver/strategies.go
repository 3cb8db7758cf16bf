package resolver

import (
	"context"
	"fmt"

	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// ResolveTrack resolves a track to its direct stream URL.
//
// A descriptor cached on the entity is used when it matches the requested
// codec and bitrate; otherwise one fresh lookup is performed. No matching
// rendition resolves to shared.ErrUnsupportedMedia, never a hard failure.
func ResolveTrack(ctx context.Context, deps Deps, object models.Object) (Resolution, error) {
	track, ok := object.(*models.Track)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: expected a track", shared.ErrUnsupportedMedia)
	}

	for _, info := range track.Downloads {
		if info.Codec == deps.Codec && info.BitrateKbps == deps.BitrateKbps && info.DirectLink != "" {
			return Resolution{URL: info.DirectLink}, nil
		}
	}

	info, err := deps.Client.FetchDownloadInfo(ctx, track, deps.Codec, deps.BitrateKbps)
	if err != nil {
		return Resolution{}, err
	}
	if info == nil || info.DirectLink == "" {
		return Resolution{}, fmt.Errorf(
			"%w: no %s/%dkbps rendition for track %s", shared.ErrUnsupportedMedia, deps.Codec, deps.BitrateKbps, track.ID,
		)
	}

	return Resolution{URL: info.DirectLink}, nil
}

// MemberFunc expands a container to its member references in order.
type MemberFunc func(ctx context.Context, deps Deps, object models.Object) ([]models.Object, error)

// WrapContainer adapts a member expansion into a container resolution
// strategy: each member becomes one delivery-endpoint URL carrying the
// capability token. Requires a configured external base URL.
func WrapContainer(members MemberFunc) ResolveFunc {
	return func(ctx context.Context, deps Deps, object models.Object) (Resolution, error) {
		if deps.ExternalURL == "" {
			return Resolution{}, fmt.Errorf("%w: cannot resolve container %s", shared.ErrNoBaseURL, object.ObjectID())
		}

		items, err := members(ctx, deps, object)
		if err != nil {
			return Resolution{}, err
		}

		urls := make([]string, 0, len(items))
		for _, item := range items {
			urls = append(urls, DeliveryURL(
				deps.ExternalURL, deps.Token(), string(item.Kind()), item.ObjectID(), "track",
			))
		}

		return Resolution{URLs: urls}, nil
	}
}

// ExpandPlaylist lists a playlist's member tracks, using the cached member
// listing when the catalog returned it inline.
func ExpandPlaylist(ctx context.Context, deps Deps, object models.Object) ([]models.Object, error) {
	playlist, ok := object.(*models.Playlist)
	if !ok {
		return nil, fmt.Errorf("%w: expected a playlist", shared.ErrUnsupportedMedia)
	}

	return deps.Client.FetchChildren(ctx, playlist)
}
