package images

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator paints a small PNG, failing for names in fail.
type fakeGenerator struct {
	t    *testing.T
	fail map[string]bool

	mu      sync.Mutex
	painted []string
	active  atomic.Int32
	peak    atomic.Int32
}

func (f *fakeGenerator) Generate(_ context.Context, recipeName string) ([]byte, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)

	f.mu.Lock()
	f.painted = append(f.painted, recipeName)
	f.mu.Unlock()
	if f.fail[recipeName] {
		return nil, errors.New("content policy")
	}
	return encodePNG(f.t, 600, 600), nil
}

func TestIllustrate(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)
	_, err = s.Save("Egg Fried Rice", encodePNG(t, 8, 8))
	require.NoError(t, err)

	gen := &fakeGenerator{t: t, fail: map[string]bool{"Congee": true}}
	names := []string{"Egg Fried Rice", "Rice Pudding", "Congee", "Risotto", "Paella", "Arancini", "Rice Pudding"}

	found := s.Illustrate(context.Background(), gen, names)

	assert.Equal(t, map[string]string{
		"Egg Fried Rice": "egg_fried_rice.png",
		"Rice Pudding":   "rice_pudding.png",
		"Risotto":        "risotto.png",
		"Paella":         "paella.png",
		"Arancini":       "arancini.png",
	}, found)
	assert.ElementsMatch(t, []string{"Rice Pudding", "Congee", "Risotto", "Paella", "Arancini"}, gen.painted)
	assert.LessOrEqual(t, gen.peak.Load(), int32(GenerateWorkers))
	assert.True(t, s.Exists("Risotto"))
	assert.False(t, s.Exists("Congee"))

	img, err := s.Thumbnail("risotto.png", StoredWidth)
	require.NoError(t, err)
	assert.NotEmpty(t, img)
}

func TestIllustrate_WithoutGenerator(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)
	_, err = s.Save("Paella", encodePNG(t, 8, 8))
	require.NoError(t, err)

	found := s.Illustrate(context.Background(), nil, []string{"Paella", "Risotto"})
	assert.Equal(t, map[string]string{"Paella": "paella.png"}, found)
}
