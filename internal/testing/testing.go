// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/alryaz/go-music-browser/internal/catalog"
	"github.com/alryaz/go-music-browser/internal/models"
	"github.com/alryaz/go-music-browser/internal/shared"
)

// MockClient is a test double for [catalog.Client] backed by in-memory
// fixtures. Call counters are atomic so concurrency tests can assert on
// them.
type MockClient struct {
	UserID    string
	Entities  map[string]models.Object          // keyed by "type/id"
	Children  map[string][]models.Object        // keyed by "type/id"
	Downloads map[string]*models.DownloadInfo   // keyed by track id
	Playlists []models.Object
	Likes     []models.Object
	Landing   map[string][]models.Object

	FetchEntityCalls   atomic.Int64
	FetchChildrenCalls atomic.Int64
	DownloadInfoCalls  atomic.Int64
	UserIDCalls        atomic.Int64

	// Err, when set, is returned by every call to simulate transport
	// failure.
	Err error
}

// NewMockClient creates an empty MockClient for the given user.
func NewMockClient(userID string) *MockClient {
	return &MockClient{
		UserID:    userID,
		Entities:  map[string]models.Object{},
		Children:  map[string][]models.Object{},
		Downloads: map[string]*models.DownloadInfo{},
		Landing:   map[string][]models.Object{},
	}
}

// Add registers an entity and (optionally) its children.
func (m *MockClient) Add(object models.Object, children ...models.Object) {
	key := fmt.Sprintf("%s/%s", object.Kind(), object.ObjectID())
	m.Entities[key] = object
	if len(children) > 0 {
		m.Children[key] = children
	}
}

func (m *MockClient) FetchEntity(ctx context.Context, contentType, contentID string) (models.Object, error) {
	m.FetchEntityCalls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}

	object, ok := m.Entities[contentType+"/"+contentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", shared.ErrNotFound, contentType, contentID)
	}
	return object, nil
}

func (m *MockClient) FetchChildren(ctx context.Context, object models.Object) ([]models.Object, error) {
	m.FetchChildrenCalls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Children[fmt.Sprintf("%s/%s", object.Kind(), object.ObjectID())], nil
}

func (m *MockClient) FetchDownloadInfo(ctx context.Context, track *models.Track, codec string, bitrateKbps int) (*models.DownloadInfo, error) {
	m.DownloadInfoCalls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}

	info := m.Downloads[track.ID]
	if info == nil || info.Codec != codec || info.BitrateKbps != bitrateKbps {
		return nil, nil
	}
	return info, nil
}

func (m *MockClient) FetchUserID(ctx context.Context) (string, error) {
	m.UserIDCalls.Add(1)
	if m.Err != nil {
		return "", m.Err
	}
	return m.UserID, nil
}

func (m *MockClient) FetchUserPlaylists(ctx context.Context) ([]models.Object, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Playlists, nil
}

func (m *MockClient) FetchLikedTracks(ctx context.Context) ([]models.Object, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Likes, nil
}

func (m *MockClient) FetchLanding(ctx context.Context, block string) ([]models.Object, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Landing[block], nil
}

var _ catalog.Client = (*MockClient)(nil)

// StaticTokenProvider is a test double for an authentication provider that
// always returns the same token.
type StaticTokenProvider struct {
	ProviderName string
	Token        string
	Calls        atomic.Int64
	Fail         bool
}

func (p *StaticTokenProvider) Name() string {
	if p.ProviderName == "" {
		return "static"
	}
	return p.ProviderName
}

func (p *StaticTokenProvider) Authenticate(ctx context.Context) (string, error) {
	p.Calls.Add(1)
	if p.Fail {
		return "", fmt.Errorf("%w: static provider configured to fail", shared.ErrAuthFailed)
	}
	return p.Token, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}
