// Package assets keeps the images a session is working on.
//
// Every asset holds the source it was loaded from (Original) next to the
// latest successful edit (Current). Edits replace Current only after the
// raster operation has succeeded, so a failed matte or erode leaves the
// previous result intact. Revert restores Original.
package assets

import (
	"image"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

// ErrNotFound is returned for an unknown asset ID.
var ErrNotFound = errors.New("asset not found")

// Asset is one registered image.
type Asset struct {
	ID   string
	Name string
	// Source is the path or URL the asset was loaded from, empty for
	// derived assets and data URIs.
	Source    string
	Original  *image.NRGBA
	Current   *image.NRGBA
	Edits     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Edited reports whether Current differs from Original.
func (a Asset) Edited() bool {
	return len(a.Edits) > 0
}

// Store is an in-memory asset registry. It is safe for concurrent use.
//
// Images handed to and returned by the Store are shared, not copied.
// Callers must not modify them; every raster operation already works on
// its own copy.
type Store struct {
	mu     sync.RWMutex
	node   *snowflake.Node
	assets map[string]*Asset
	now    func() time.Time
}

// NewStore creates an empty store. nodeID seeds the snowflake generator
// (0-1023) so that IDs from several processes do not collide.
func NewStore(nodeID int64) (*Store, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "create snowflake node failed")
	}
	return &Store{
		node:   node,
		assets: make(map[string]*Asset),
		now:    time.Now,
	}, nil
}

// Add registers img under a new ID and returns a snapshot of the asset.
func (s *Store) Add(name string, img *image.NRGBA) Asset {
	return s.AddSource(name, "", img)
}

// AddSource is Add for an image read from source.
func (s *Store) AddSource(name, source string, img *image.NRGBA) Asset {
	now := s.now()
	a := &Asset{
		ID:        s.node.Generate().String(),
		Name:      name,
		Source:    source,
		Original:  img,
		Current:   img,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.assets[a.ID] = a
	s.mu.Unlock()

	return *a
}

// Get returns a snapshot of the asset.
func (s *Store) Get(id string) (Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[id]
	if !ok {
		return Asset{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return snapshot(a), nil
}

// Update replaces Current with img and records the edit. Original is kept.
func (s *Store) Update(id string, img *image.NRGBA, edit string) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assets[id]
	if !ok {
		return Asset{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	a.Current = img
	a.Edits = append(a.Edits, edit)
	a.UpdatedAt = s.now()
	return snapshot(a), nil
}

// Revert sets Current back to Original and clears the edit history.
func (s *Store) Revert(id string) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assets[id]
	if !ok {
		return Asset{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	a.Current = a.Original
	a.Edits = nil
	a.UpdatedAt = s.now()
	return snapshot(a), nil
}

// Delete removes the asset. Deleting an unknown ID returns ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[id]; !ok {
		return errors.Wrapf(ErrNotFound, "id %s", id)
	}
	delete(s.assets, id)
	return nil
}

// SourceInUse reports whether any registered asset was loaded from source.
func (s *Store) SourceInUse(source string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assets {
		if a.Source == source {
			return true
		}
	}
	return false
}

// List returns snapshots of every asset, oldest first.
func (s *Store) List() []Asset {
	s.mu.RLock()
	out := make([]Asset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, snapshot(a))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func snapshot(a *Asset) Asset {
	c := *a
	c.Edits = append([]string(nil), a.Edits...)
	return c
}
