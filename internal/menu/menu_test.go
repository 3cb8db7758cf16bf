package menu

import (
	"errors"
	"reflect"
	"testing"

	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
)

func TestSanitize(t *testing.T) {
	t.Run("accepts", func(t *testing.T) {
		cases := []struct {
			name string
			raw  any
			want Link
		}{
			{"bare synthetic type", "personal_playlists", Link{Type: "personal_playlists"}},
			{"typed reference", "playlist:3", Link{Type: "playlist", ID: "3"}},
			{"owned playlist", "playlist:503646255:17", Link{Type: "playlist", ID: "503646255:17"}},
			{"table with string id", map[string]any{"type": "album", "id": "42"}, Link{Type: "album", ID: "42"}},
			{"table with integer id", map[string]any{"type": "track", "id": int64(99)}, Link{Type: "track", ID: "99"}},
			{"table without id", map[string]any{"type": "genres"}, Link{Type: "genres"}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := Sanitize(tc.raw)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tc.want {
					t.Errorf("expected %+v, got %+v", tc.want, got)
				}
			})
		}
	})

	t.Run("rejects", func(t *testing.T) {
		cases := []struct {
			name string
			raw  any
		}{
			{"unknown type", "podcast:1"},
			{"empty string", ""},
			{"library reference", "library"},
			{"menu reference", "menu:0"},
			{"wrong root type", 42},
			{"table with bad id", map[string]any{"type": "album", "id": true}},
			{"table without type", map[string]any{"id": "42"}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := Sanitize(tc.raw); !errors.Is(err, shared.ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
			})
		}
	})
}

func TestLink(t *testing.T) {
	t.Run("ContentID falls back to type", func(t *testing.T) {
		link := Link{Type: models.TypeGenres}
		if link.ContentID() != models.TypeGenres {
			t.Errorf("expected %s, got %s", models.TypeGenres, link.ContentID())
		}
	})

	t.Run("String keeps the reference form", func(t *testing.T) {
		if got := (Link{Type: "playlist", ID: "3"}).String(); got != "playlist:3" {
			t.Errorf("expected playlist:3, got %s", got)
		}
		if got := (Link{Type: "user_likes"}).String(); got != "user_likes" {
			t.Errorf("expected user_likes, got %s", got)
		}
	})
}

func TestParse(t *testing.T) {
	t.Run("nil yields the default tree", func(t *testing.T) {
		tree, err := Parse(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(tree, Default()) {
			t.Error("expected default tree")
		}
	})

	t.Run("plain list shorthand", func(t *testing.T) {
		tree, err := Parse([]any{"personal_playlists", "playlist:3"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(tree.Root.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(tree.Root.Items))
		}
		if tree.Root.Title != "" {
			t.Errorf("shorthand list should produce an untitled root, got %q", tree.Root.Title)
		}
		if tree.Root.Items[1].Link.ID != "3" {
			t.Errorf("expected playlist id 3, got %q", tree.Root.Items[1].Link.ID)
		}
	})

	t.Run("nested entries", func(t *testing.T) {
		raw := map[string]any{
			"title": "Music",
			"image": "folder.png",
			"items": []any{
				"user_likes",
				map[string]any{
					"title": "Curated",
					"items": []any{"new_releases", "new_playlists"},
				},
			},
		}

		tree, err := Parse(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if tree.Root.Title != "Music" {
			t.Errorf("expected root title Music, got %q", tree.Root.Title)
		}
		nested := tree.Root.Items[1].Entry
		if nested == nil || nested.Title != "Curated" {
			t.Fatalf("expected nested entry Curated, got %+v", tree.Root.Items[1])
		}
		if len(nested.Items) != 2 {
			t.Errorf("expected 2 nested items, got %d", len(nested.Items))
		}
	})

	t.Run("rejects hybrid item", func(t *testing.T) {
		raw := []any{
			map[string]any{"type": "playlist", "items": []any{"user_likes"}},
		}
		if _, err := Parse(raw); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects invalid reference deep in the tree", func(t *testing.T) {
		raw := map[string]any{
			"items": []any{
				map[string]any{"title": "Broken", "items": []any{"podcast:1"}},
			},
		}
		if _, err := Parse(raw); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects scalar root", func(t *testing.T) {
		if _, err := Parse("user_likes"); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestToMap(t *testing.T) {
	t.Run("round-trips to an equivalent tree", func(t *testing.T) {
		raw := map[string]any{
			"title": "Music",
			"class": "directory",
			"items": []any{
				"personal_playlists",
				"playlist:503646255:17",
				map[string]any{"title": "Curated", "items": []any{"genres"}},
			},
		}

		tree, err := Parse(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		again, err := Parse(tree.ToMap())
		if err != nil {
			t.Fatalf("re-parse failed: %v", err)
		}

		if !reflect.DeepEqual(tree, again) {
			t.Errorf("round trip changed the tree:\n%+v\n%+v", tree, again)
		}
	})
}

func TestDefault(t *testing.T) {
	tree := Default()
	if len(tree.Root.Items) != 5 {
		t.Fatalf("expected 5 default items, got %d", len(tree.Root.Items))
	}
	for _, item := range tree.Root.Items {
		if item.Link == nil {
			t.Fatal("default tree should contain only catalog references")
		}
		if !models.KnownContentTypes[item.Link.Type] {
			t.Errorf("unknown default type %q", item.Link.Type)
		}
	}
}
