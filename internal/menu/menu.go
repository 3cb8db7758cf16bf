// Package menu builds the immutable menu overlay mixing static curated
// entries with catalog references.
//
// A menu configuration is parsed once at startup and consulted read-only
// thereafter; parsing is pure and performs no network access.
package menu

import (
	"fmt"
	"strings"

	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// Link is a catalog-reference leaf: a content type plus an optional id.
// Synthetic listing types (personal_playlists, genres, ...) carry no id.
type Link struct {
	Type string
	ID   string
}

// ContentID returns the link's id, or its type for id-less synthetic links.
func (l Link) ContentID() string {
	if l.ID == "" {
		return l.Type
	}
	return l.ID
}

func (l Link) String() string {
	if l.ID == "" {
		return l.Type
	}
	return l.Type + ":" + l.ID
}

// Item is one entry of a menu node: either a catalog reference or a nested
// static entry, never both.
type Item struct {
	Link  *Link
	Entry *Entry
}

// Entry is a static menu node with an ordered item list.
type Entry struct {
	Title string
	Image string
	Class string
	Items []Item
}

// Tree is a parsed, validated menu overlay. It defines the root-level shape
// of the browse tree and is immutable after Parse.
type Tree struct {
	Root Entry
}

// Sanitize normalizes a raw catalog reference.
//
// Accepts "type" / "type:id" strings and {type, id} maps; rejects unknown
// content types.
func Sanitize(raw any) (Link, error) {
	switch value := raw.(type) {
	case string:
		linkType, linkID, _ := strings.Cut(value, ":")
		return checkLink(Link{Type: linkType, ID: linkID})

	case map[string]any:
		linkType, _ := value["type"].(string)
		link := Link{Type: linkType}
		switch id := value["id"].(type) {
		case string:
			link.ID = id
		case int64:
			link.ID = fmt.Sprintf("%d", id)
		case float64:
			link.ID = fmt.Sprintf("%.0f", id)
		case nil:
		default:
			return Link{}, fmt.Errorf("%w: media link id must be a string or number", shared.ErrValidation)
		}
		return checkLink(link)
	}

	return Link{}, fmt.Errorf("%w: media link must be a string or a {type, id} table", shared.ErrValidation)
}

func checkLink(link Link) (Link, error) {
	if link.Type == "" || !models.KnownContentTypes[link.Type] || link.Type == models.TypeLibrary || link.Type == models.TypeMenu {
		return Link{}, fmt.Errorf("%w: unknown media type %q", shared.ErrValidation, link.Type)
	}
	return link, nil
}

// Parse builds a [Tree] from raw configuration.
//
// Accepts either a plain list of catalog references or a full
// {title, image, class, items} object; nested objects recurse with the same
// shape. nil yields the built-in [Default] tree.
func Parse(raw any) (*Tree, error) {
	if raw == nil {
		return Default(), nil
	}

	root, err := parseEntry(raw)
	if err != nil {
		return nil, err
	}

	return &Tree{Root: *root}, nil
}

func parseEntry(raw any) (*Entry, error) {
	// A plain list is shorthand for an untitled entry.
	if items, ok := raw.([]any); ok {
		raw = map[string]any{"items": items}
	}

	object, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: menu entry must be a list or a table", shared.ErrValidation)
	}

	entry := &Entry{}
	if title, ok := object["title"].(string); ok {
		entry.Title = title
	}
	if image, ok := object["image"].(string); ok {
		entry.Image = image
	}
	if class, ok := object["class"].(string); ok {
		entry.Class = class
	}

	rawItems, _ := object["items"].([]any)
	for _, rawItem := range rawItems {
		item, err := parseItem(rawItem)
		if err != nil {
			return nil, err
		}
		entry.Items = append(entry.Items, item)
	}

	return entry, nil
}

func parseItem(raw any) (Item, error) {
	// A table with an "items" or "title" key is a nested entry; anything
	// else must sanitize as a catalog reference.
	if object, ok := raw.(map[string]any); ok {
		_, hasItems := object["items"]
		_, hasTitle := object["title"]
		if hasItems || hasTitle {
			if _, hasType := object["type"]; hasType {
				return Item{}, fmt.Errorf("%w: menu item cannot be both a reference and a nested entry", shared.ErrValidation)
			}
			nested, err := parseEntry(object)
			if err != nil {
				return Item{}, err
			}
			return Item{Entry: nested}, nil
		}
	}

	link, err := Sanitize(raw)
	if err != nil {
		return Item{}, err
	}
	return Item{Link: &link}, nil
}

// ToMap serializes the tree back to its raw configuration form.
// Parse(ToMap()) round-trips to an equivalent tree.
func (t *Tree) ToMap() map[string]any {
	return entryToMap(t.Root)
}

func entryToMap(entry Entry) map[string]any {
	items := make([]any, 0, len(entry.Items))
	for _, item := range entry.Items {
		if item.Link != nil {
			items = append(items, item.Link.String())
		} else if item.Entry != nil {
			items = append(items, entryToMap(*item.Entry))
		}
	}

	object := map[string]any{"items": items}
	if entry.Title != "" {
		object["title"] = entry.Title
	}
	if entry.Image != "" {
		object["image"] = entry.Image
	}
	if entry.Class != "" {
		object["class"] = entry.Class
	}
	return object
}

// Default returns the built-in menu tree used when the host provides none.
func Default() *Tree {
	return &Tree{
		Root: Entry{
			Items: []Item{
				{Link: &Link{Type: models.TypePersonalPlaylists}},
				{Link: &Link{Type: models.TypeUserLikes}},
				{Link: &Link{Type: models.TypeNewReleases}},
				{Link: &Link{Type: models.TypeNewPlaylists}},
				{Link: &Link{Type: models.TypeGenres}},
			},
		},
	}
}
