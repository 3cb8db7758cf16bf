// Package browser implements the hierarchical browse-node model and its
// lazy, cached expansion against the remote catalog.
//
// A [Browser] ties together the menu overlay, the fingerprinted node cache,
// the authentication coordinator and the URL resolver registry. Expansion is
// always one level deep per call; deeper levels are fetched lazily by
// subsequent calls.
package browser

import "github.com/alryaz/go-music-browser/internal/models"

// Fingerprint uniquely identifies a browse node within one session and keys
// the node cache.
type Fingerprint struct {
	ContentType string
	ContentID   string
}

func (f Fingerprint) String() string {
	return models.Describe(f.ContentType, f.ContentID)
}

// Node is one navigable item of the browse tree.
//
// Nodes are created on expansion, replaced wholesale on invalidation and
// never mutated in place. A node with CanExpand false never holds children.
type Node struct {
	ContentType string  `json:"content_type"`
	ContentID   string  `json:"content_id"`
	Title       string  `json:"title"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	CanPlay     bool    `json:"can_play"`
	CanExpand   bool    `json:"can_expand"`
	Children    []*Node `json:"children,omitempty"`

	// Media is the underlying catalog entity; nil for pure menu nodes.
	Media models.Object `json:"-"`
}

// Fingerprint returns the node's cache key.
func (n *Node) Fingerprint() Fingerprint {
	return Fingerprint{ContentType: n.ContentType, ContentID: n.ContentID}
}
