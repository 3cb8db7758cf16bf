package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
	tu "github.com/alryaz/go-music-browser/internal/testing"
)

func testDeps(client *tu.MockClient, externalURL string) Deps {
	return Deps{
		Client:      client,
		Codec:       "mp3",
		BitrateKbps: 192,
		ExternalURL: externalURL,
		Token:       func() string { return "cap-token" },
	}
}

func TestResolveTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("uses a matching cached descriptor", func(t *testing.T) {
		client := tu.NewMockClient("42")
		track := &models.Track{
			ID: "100",
			Downloads: []models.DownloadInfo{
				{Codec: "aac", BitrateKbps: 128, DirectLink: "https://cdn.test/aac"},
				{Codec: "mp3", BitrateKbps: 192, DirectLink: "https://cdn.test/mp3"},
			},
		}

		resolution, err := ResolveTrack(ctx, testDeps(client, ""), track)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolution.URL != "https://cdn.test/mp3" {
			t.Errorf("expected cached link, got %s", resolution.URL)
		}
		if client.DownloadInfoCalls.Load() != 0 {
			t.Errorf("expected no fetch for cached descriptor, got %d", client.DownloadInfoCalls.Load())
		}
	})

	t.Run("fetches when no cached descriptor matches", func(t *testing.T) {
		client := tu.NewMockClient("42")
		client.Downloads["100"] = &models.DownloadInfo{
			Codec: "mp3", BitrateKbps: 192, DirectLink: "https://cdn.test/fresh",
		}
		track := &models.Track{ID: "100", Downloads: []models.DownloadInfo{
			{Codec: "aac", BitrateKbps: 64, DirectLink: "https://cdn.test/aac"},
		}}

		resolution, err := ResolveTrack(ctx, testDeps(client, ""), track)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resolution.URL != "https://cdn.test/fresh" {
			t.Errorf("expected fetched link, got %s", resolution.URL)
		}
		if client.DownloadInfoCalls.Load() != 1 {
			t.Errorf("expected 1 fetch, got %d", client.DownloadInfoCalls.Load())
		}
	})

	t.Run("no rendition yields ErrUnsupportedMedia", func(t *testing.T) {
		client := tu.NewMockClient("42")
		track := &models.Track{ID: "100"}

		if _, err := ResolveTrack(ctx, testDeps(client, ""), track); !errors.Is(err, shared.ErrUnsupportedMedia) {
			t.Errorf("expected ErrUnsupportedMedia, got %v", err)
		}
	})

	t.Run("transport errors pass through", func(t *testing.T) {
		client := tu.NewMockClient("42")
		client.Err = shared.ErrTransport

		if _, err := ResolveTrack(ctx, testDeps(client, ""), &models.Track{ID: "1"}); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("rejects non-track objects", func(t *testing.T) {
		client := tu.NewMockClient("42")
		if _, err := ResolveTrack(ctx, testDeps(client, ""), &models.Album{ID: "5"}); !errors.Is(err, shared.ErrUnsupportedMedia) {
			t.Errorf("expected ErrUnsupportedMedia, got %v", err)
		}
	})
}

func TestWrapContainer(t *testing.T) {
	ctx := context.Background()

	playlist := &models.Playlist{UID: "42", PlaylistID: "17", Name: "Mine"}
	tracks := []models.Object{
		&models.Track{ID: "1"},
		&models.Track{ID: "2"},
		&models.Track{ID: "3"},
	}

	t.Run("maps members to delivery URLs", func(t *testing.T) {
		client := tu.NewMockClient("42")
		client.Add(playlist, tracks...)

		resolve := WrapContainer(ExpandPlaylist)
		resolution, err := resolve(ctx, testDeps(client, "http://music.lan:8095"), playlist)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(resolution.URLs) != 3 {
			t.Fatalf("expected 3 URLs, got %d", len(resolution.URLs))
		}
		want := "http://music.lan:8095" + DeliveryPath + "/cap-token/track/2/track"
		if resolution.URLs[1] != want {
			t.Errorf("expected %s, got %s", want, resolution.URLs[1])
		}
	})

	t.Run("requires an external base URL", func(t *testing.T) {
		client := tu.NewMockClient("42")
		client.Add(playlist, tracks...)

		resolve := WrapContainer(ExpandPlaylist)
		if _, err := resolve(ctx, testDeps(client, ""), playlist); !errors.Is(err, shared.ErrNoBaseURL) {
			t.Errorf("expected ErrNoBaseURL, got %v", err)
		}
	})
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("default strategies", func(t *testing.T) {
		registry := NewRegistry(testDeps(tu.NewMockClient("42"), ""), nil)

		if probe, ok := registry.Probe(models.KindTrack); !ok || probe {
			t.Errorf("track strategy should be registered and probe-free, got (%v, %v)", probe, ok)
		}
		if probe, ok := registry.Probe(models.KindPlaylist); !ok || !probe {
			t.Errorf("playlist strategy should be registered and require probing, got (%v, %v)", probe, ok)
		}
		if _, ok := registry.Probe(models.KindGenre); ok {
			t.Error("genre should have no strategy")
		}
	})

	t.Run("Resolve rejects unregistered kinds", func(t *testing.T) {
		registry := NewRegistry(testDeps(tu.NewMockClient("42"), ""), nil)
		if _, err := registry.Resolve(ctx, &models.Genre{ID: "rock"}); !errors.Is(err, shared.ErrUnsupportedMedia) {
			t.Errorf("expected ErrUnsupportedMedia, got %v", err)
		}
		if _, err := registry.Resolve(ctx, nil); !errors.Is(err, shared.ErrUnsupportedMedia) {
			t.Errorf("expected ErrUnsupportedMedia for nil object, got %v", err)
		}
	})

	t.Run("CanPlay", func(t *testing.T) {
		owned := &models.Playlist{UID: "42", PlaylistID: "17"}
		foreign := &models.Playlist{UID: "7", PlaylistID: "17"}
		track := &models.Track{ID: "1"}

		t.Run("cloud mode follows ownership", func(t *testing.T) {
			registry := NewRegistry(testDeps(tu.NewMockClient("42"), ""), nil)

			if !registry.CanPlay(track, ModeCloud, "42") {
				t.Error("tracks are always cloud-playable")
			}
			if !registry.CanPlay(owned, ModeCloud, "42") {
				t.Error("owned playlists are cloud-playable")
			}
			if registry.CanPlay(foreign, ModeCloud, "42") {
				t.Error("foreign playlists must not be cloud-playable")
			}
			if registry.CanPlay(&models.Genre{ID: "rock"}, ModeCloud, "42") {
				t.Error("genres are not cloud-playable")
			}
		})

		t.Run("pull mode follows the registry", func(t *testing.T) {
			bare := NewRegistry(testDeps(tu.NewMockClient("42"), ""), nil)
			served := NewRegistry(testDeps(tu.NewMockClient("42"), "http://music.lan"), nil)

			if !bare.CanPlay(track, ModePull, "42") {
				t.Error("probe-free strategies are eagerly playable")
			}
			if bare.CanPlay(foreign, ModePull, "42") {
				t.Error("containers need a delivery base URL")
			}
			if !served.CanPlay(foreign, ModePull, "42") {
				t.Error("ownership does not gate pull mode")
			}
		})
	})
}

func TestCloudCommand(t *testing.T) {
	t.Run("per kind", func(t *testing.T) {
		command, err := CloudCommand(&models.Album{ID: "55"}, "42")
		if err != nil || command != "альбом 55" {
			t.Errorf("unexpected album command %q (%v)", command, err)
		}

		command, err = CloudCommand(&models.Track{ID: "9"}, "42")
		if err != nil || command != "трек 9" {
			t.Errorf("unexpected track command %q (%v)", command, err)
		}

		command, err = CloudCommand(&models.Playlist{UID: "42", PlaylistID: "17", Name: "Избранное"}, "42")
		if err != nil || command != "плейлист Избранное" {
			t.Errorf("unexpected playlist command %q (%v)", command, err)
		}
	})

	t.Run("rejects foreign playlists", func(t *testing.T) {
		foreign := &models.Playlist{UID: "7", PlaylistID: "17", Name: "Other"}
		if _, err := CloudCommand(foreign, "42"); !errors.Is(err, shared.ErrUnsupportedMedia) {
			t.Errorf("expected ErrUnsupportedMedia, got %v", err)
		}
	})

	t.Run("rejects unsupported kinds", func(t *testing.T) {
		if _, err := CloudCommand(&models.Genre{ID: "rock"}, "42"); !errors.Is(err, shared.ErrUnsupportedMedia) {
			t.Errorf("expected ErrUnsupportedMedia, got %v", err)
		}
	})
}

func TestLocalPayload(t *testing.T) {
	payload := LocalPayload(&models.Playlist{UID: "42", PlaylistID: "17"})
	if payload["command"] != "playMusic" {
		t.Errorf("expected playMusic command, got %q", payload["command"])
	}
	if payload["type"] != "playlist" || payload["id"] != "42:17" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestDeliveryURL(t *testing.T) {
	got := DeliveryURL("http://music.lan:8095", "tok", "playlist", "42:17", "playlist.m3u8")
	want := "http://music.lan:8095" + DeliveryPath + "/tok/playlist/42:17/playlist.m3u8"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	escaped := DeliveryURL("http://h", "a b", "track", "1/2", "track")
	if strings.Contains(escaped, " ") || strings.Contains(escaped, "1/2") {
		t.Errorf("expected escaped path segments, got %s", escaped)
	}
}

func TestTokenGuard(t *testing.T) {
	t.Run("lazy generation", func(t *testing.T) {
		guard := &TokenGuard{}
		first := guard.Current()
		if first == "" {
			t.Fatal("expected a generated token")
		}
		if guard.Current() != first {
			t.Error("token should be stable between calls")
		}
	})

	t.Run("Matches", func(t *testing.T) {
		guard := &TokenGuard{}
		if guard.Matches("anything") {
			t.Error("unissued guard must match nothing")
		}

		token := guard.Current()
		if !guard.Matches(token) {
			t.Error("expected live token to match")
		}
		if guard.Matches("") || guard.Matches("other") {
			t.Error("wrong candidates must not match")
		}
	})

	t.Run("Rotate invalidates old tokens", func(t *testing.T) {
		guard := &TokenGuard{}
		old := guard.Current()
		guard.Rotate()

		if guard.Matches(old) {
			t.Error("rotated token must not match")
		}
		if guard.Current() == old {
			t.Error("expected a fresh token after rotation")
		}
	})
}
