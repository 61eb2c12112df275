package assets

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(1)
	require.NoError(t, err)

	// Deterministic clock, one second per call.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	tick := 0
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func newImage(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

func TestNewStore_InvalidNode(t *testing.T) {
	_, err := NewStore(5000)
	assert.Error(t, err)
}

func TestStore_AddGet(t *testing.T) {
	s := newTestStore(t)
	img := newImage(4, 4)

	a := s.Add("knight.png", img)
	assert.NotEmpty(t, a.ID)
	assert.Same(t, img, a.Original)
	assert.Same(t, img, a.Current)
	assert.False(t, a.Edited())

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "knight.png", got.Name)

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateKeepsOriginal(t *testing.T) {
	s := newTestStore(t)
	orig := newImage(4, 4)
	a := s.Add("orc.png", orig)

	edited := newImage(4, 4)
	got, err := s.Update(a.ID, edited, "matte")
	require.NoError(t, err)
	assert.Same(t, orig, got.Original)
	assert.Same(t, edited, got.Current)
	assert.Equal(t, []string{"matte"}, got.Edits)
	assert.True(t, got.UpdatedAt.After(a.UpdatedAt))

	_, err = s.Update("missing", edited, "erode")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Revert(t *testing.T) {
	s := newTestStore(t)
	orig := newImage(4, 4)
	a := s.Add("wolf.png", orig)

	_, err := s.Update(a.ID, newImage(2, 2), "erode")
	require.NoError(t, err)
	_, err = s.Update(a.ID, newImage(1, 1), "erode")
	require.NoError(t, err)

	got, err := s.Revert(a.ID)
	require.NoError(t, err)
	assert.Same(t, orig, got.Current)
	assert.Empty(t, got.Edits)
	assert.False(t, got.Edited())
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := newTestStore(t)
	a := s.Add("elf.png", newImage(1, 1))
	got, err := s.Update(a.ID, newImage(1, 1), "matte")
	require.NoError(t, err)

	got.Edits[0] = "tampered"

	again, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"matte"}, again.Edits)
}

func TestStore_DeleteAndList(t *testing.T) {
	s := newTestStore(t)
	first := s.Add("a.png", newImage(1, 1))
	second := s.Add("b.png", newImage(1, 1))
	third := s.Add("c.png", newImage(1, 1))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, s.Delete(second.ID))
	assert.ErrorIs(t, s.Delete(second.ID), ErrNotFound)
	assert.Len(t, s.List(), 2)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore(t)
	a := s.Add("shared.png", newImage(2, 2))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := s.Update(a.ID, newImage(2, 2), "dilate")
				assert.NoError(t, err)
			} else {
				_, err := s.Get(a.ID)
				assert.NoError(t, err)
			}
			s.Add("extra.png", newImage(1, 1))
		}(i)
	}
	wg.Wait()

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Edits, 10)
	assert.Len(t, s.List(), 21)
}

func TestStore_SourceInUse(t *testing.T) {
	s := newTestStore(t)
	a := s.AddSource("hero.png", "/art/hero.png", newImage(1, 1))
	s.Add("frame.png", newImage(1, 1))

	assert.Equal(t, "/art/hero.png", a.Source)
	assert.True(t, s.SourceInUse("/art/hero.png"))
	assert.False(t, s.SourceInUse(""))

	require.NoError(t, s.Delete(a.ID))
	assert.False(t, s.SourceInUse("/art/hero.png"))
}
