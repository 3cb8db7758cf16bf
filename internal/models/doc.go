// Package models defines the catalog entity model shared by the browser,
// resolver and delivery layers.
//
// Entities mirror the remote catalog's wire shapes: artists, albums,
// playlists, tracks and per-track download descriptors. Every entity
// implements [Object] so the resolver registry can dispatch by runtime kind.
package models
