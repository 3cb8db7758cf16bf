package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
)

func newTestCatalog(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, "test-token", nil, WithLanguage("en"))
}

func TestHTTPClient(t *testing.T) {
	ctx := context.Background()

	t.Run("sends session auth and language headers", func(t *testing.T) {
		client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "OAuth test-token" {
				t.Errorf("unexpected Authorization header %q", got)
			}
			if got := r.Header.Get("Accept-Language"); got != "en" {
				t.Errorf("unexpected Accept-Language header %q", got)
			}
			json.NewEncoder(w).Encode(models.Album{ID: "55", Name: "Album"})
		})

		object, err := client.FetchEntity(ctx, "album", "55")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		album, ok := object.(*models.Album)
		if !ok || album.Name != "Album" {
			t.Errorf("unexpected entity %+v", object)
		}
	})

	t.Run("status mapping", func(t *testing.T) {
		cases := []struct {
			name   string
			status int
			want   error
		}{
			{"not found", http.StatusNotFound, shared.ErrNotFound},
			{"unauthorized", http.StatusUnauthorized, shared.ErrAuthFailed},
			{"forbidden", http.StatusForbidden, shared.ErrAuthFailed},
			{"server error", http.StatusInternalServerError, shared.ErrTransport},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
				})

				if _, err := client.FetchEntity(ctx, "track", "1"); !errors.Is(err, tc.want) {
					t.Errorf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("playlist endpoints", func(t *testing.T) {
		t.Run("owned playlists use the user path", func(t *testing.T) {
			client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/users/42/playlists/17" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(models.Playlist{UID: "42", PlaylistID: "17", Name: "Mine"})
			})

			if _, err := client.FetchEntity(ctx, "playlist", "42:17"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})

		t.Run("curated playlists use the bare path", func(t *testing.T) {
			client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/playlists/1076" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(models.Playlist{PlaylistID: "1076", Name: "Editorial"})
			})

			if _, err := client.FetchEntity(ctx, "playlist", "1076"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	})

	t.Run("playlist children", func(t *testing.T) {
		t.Run("inline members avoid a remote call", func(t *testing.T) {
			var requests atomic.Int64
			client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				json.NewEncoder(w).Encode([]models.Track{{ID: "1", Name: "One"}})
			})

			playlist := &models.Playlist{
				UID:        "42",
				PlaylistID: "17",
				Name:       "Mine",
				Tracks:     []models.Track{{ID: "9", Name: "Inline"}},
			}
			children, err := client.FetchChildren(ctx, playlist)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(children) != 1 || children[0].ObjectID() != "9" {
				t.Fatalf("expected the inline member, got %+v", children)
			}
			if got := requests.Load(); got != 0 {
				t.Errorf("expected no remote requests, got %d", got)
			}
		})

		t.Run("fetched members leave the entity untouched", func(t *testing.T) {
			var requests atomic.Int64
			client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				json.NewEncoder(w).Encode([]models.Track{{ID: "1", Name: "One"}})
			})

			playlist := &models.Playlist{UID: "42", PlaylistID: "17", Name: "Mine"}
			children, err := client.FetchChildren(ctx, playlist)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(children) != 1 {
				t.Fatalf("expected 1 child, got %d", len(children))
			}
			if playlist.Tracks != nil {
				t.Errorf("expected entity to stay unmodified, got %d inline tracks", len(playlist.Tracks))
			}
			if got := requests.Load(); got != 1 {
				t.Errorf("expected 1 remote request, got %d", got)
			}
		})

		t.Run("concurrent expansion of a shared playlist", func(t *testing.T) {
			var requests atomic.Int64
			client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				json.NewEncoder(w).Encode([]models.Track{{ID: "1", Name: "One"}})
			})

			playlist := &models.Playlist{UID: "42", PlaylistID: "17", Name: "Shared"}

			var wg sync.WaitGroup
			errs := make([]error, 4)
			counts := make([]int, 4)
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					children, err := client.FetchChildren(ctx, playlist)
					errs[i] = err
					counts[i] = len(children)
				}(i)
			}
			wg.Wait()

			for i := range errs {
				if errs[i] != nil {
					t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
				}
				if counts[i] != 1 {
					t.Errorf("caller %d: expected 1 member, got %d", i, counts[i])
				}
			}
			if playlist.Tracks != nil {
				t.Errorf("expected shared entity to stay unmodified, got %d inline tracks", len(playlist.Tracks))
			}
		})
	})

	t.Run("download info filters by codec and bitrate", func(t *testing.T) {
		client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]models.DownloadInfo{
				{Codec: "aac", BitrateKbps: 128, DirectLink: "https://cdn.test/aac"},
				{Codec: "mp3", BitrateKbps: 192, DirectLink: "https://cdn.test/mp3"},
			})
		})

		info, err := client.FetchDownloadInfo(ctx, &models.Track{ID: "1"}, "mp3", 192)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info == nil || info.DirectLink != "https://cdn.test/mp3" {
			t.Errorf("unexpected descriptor %+v", info)
		}

		missing, err := client.FetchDownloadInfo(ctx, &models.Track{ID: "1"}, "flac", 900)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if missing != nil {
			t.Errorf("expected no match, got %+v", missing)
		}
	})

	t.Run("user id comes from account status", func(t *testing.T) {
		client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/account/status" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{"account": {"uid": "503646255"}}`))
		})

		userID, err := client.FetchUserID(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if userID != "503646255" {
			t.Errorf("unexpected user id %q", userID)
		}
	})

	t.Run("unknown landing block", func(t *testing.T) {
		client := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {})
		if _, err := client.FetchLanding(ctx, "charts"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
