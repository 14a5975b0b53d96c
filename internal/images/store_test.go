package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/internal/recipe"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPath(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)

	p, err := s.Path("../../etc/pan cakes.png")
	require.ErrorIs(t, err, ErrInvalidFormat, p)

	p, err = s.Path("pan/cakes.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.dir, "pancakes.png"), p)

	_, err = s.Path("pancakes.jpg")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSave(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 1024, 512)), nil))

	name, err := s.Save("Egg Fried Rice", jpg.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "egg_fried_rice.png", name)
	assert.True(t, s.Exists("Egg Fried Rice"))
	assert.False(t, s.Exists("Waffles"))

	f, err := os.Open(filepath.Join(s.dir, name))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, StoredWidth, cfg.Width)
	assert.Equal(t, 256, cfg.Height)

	_, err = s.Save("Broken", []byte("not an image"))
	assert.Error(t, err)
}

func TestCleanup(t *testing.T) {
	s, err := NewStore(t.TempDir(), 2, nil)
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	for i, name := range []string{"a", "b", "c"} {
		_, err := s.Save(name, encodePNG(t, 4, 4))
		require.NoError(t, err)
		ts := old.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(filepath.Join(s.dir, name+".png"), ts, ts))
	}
	require.NoError(t, s.Cleanup())

	assert.False(t, s.Exists("a"))
	assert.True(t, s.Exists("b"))
	assert.True(t, s.Exists("c"))
}

func TestThumbnail(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)
	_, err = s.Save("Soup", encodePNG(t, 200, 100))
	require.NoError(t, err)

	data, err := s.Thumbnail("soup.png", 50)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)

	_, err = s.Thumbnail("missing.png", 50)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPath_MatchesClientNameForHyphens(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)

	name, err := s.Save("Stir-Fry", encodePNG(t, 8, 8))
	require.NoError(t, err)
	assert.Equal(t, "stir_fry.png", name)

	p, err := s.Path(recipe.ImageName("Stir-Fry"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.dir, "stir_fry.png"), p)
	_, err = os.Stat(p)
	assert.NoError(t, err)
}

func TestSave_RejectsNameWithoutLetters(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0, nil)
	require.NoError(t, err)

	_, err = s.Save("!!!", encodePNG(t, 8, 8))
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.False(t, s.Exists("!!!"))

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
