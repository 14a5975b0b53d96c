// Package images stores and serves recipe pictures.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nfnt/resize"

	"recipebook/internal/recipe"
)

// Defaults for a Store.
const (
	DefaultMaxImages = 50
	StoredWidth      = 512
)

// Errors returned by Store.
var (
	ErrInvalidFormat = errors.New("invalid file format")
	ErrNotFound      = errors.New("image not found")
	ErrInvalidName   = errors.New("recipe name has no usable characters")
)

// Store keeps PNG images in a directory, named after their recipe.
type Store struct {
	mu        sync.Mutex
	dir       string
	maxImages int
	logger    *slog.Logger
}

// NewStore creates a Store rooted at dir, creating it if needed. When
// more than maxImages are stored the oldest are removed.
func NewStore(dir string, maxImages int, logger *slog.Logger) (*Store, error) {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &Store{dir: dir, maxImages: maxImages, logger: logger}, nil
}

// Path resolves a requested file name to a path inside the store. Only
// letters, digits, '_' and '.' are kept, '-' becomes '_' as in
// recipe.SafeImageName, and the name must end in ".png".
func (s *Store) Path(filename string) (string, error) {
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r == '-':
			b.WriteRune('_')
		case r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if !strings.HasSuffix(safe, ".png") || strings.Contains(safe, "..") {
		return "", ErrInvalidFormat
	}
	return filepath.Join(s.dir, safe), nil
}

// Exists reports whether an image is stored for the recipe.
func (s *Store) Exists(recipeName string) bool {
	filename := recipe.SafeImageName(recipeName)
	if filename == ".png" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, filename))
	return err == nil
}

// Save decodes a JPEG or PNG, scales it down to StoredWidth and stores it
// as the recipe's PNG. It returns the stored file name.
func (s *Store) Save(recipeName string, data []byte) (string, error) {
	filename := recipe.SafeImageName(recipeName)
	if filename == ".png" {
		return "", ErrInvalidName
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > StoredWidth {
		img = resize.Resize(StoredWidth, 0, img, resize.Lanczos3)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	if err := s.Cleanup(); err != nil {
		s.logger.Error("failed to clean up old images", "err", err)
	}
	return filename, nil
}

// Cleanup removes the oldest images beyond the store's limit.
func (s *Store) Cleanup() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	type stored struct {
		name    string
		modUnix int64
	}
	var files []stored
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, stored{name: e.Name(), modUnix: info.ModTime().UnixNano()})
	}
	if len(files) <= s.maxImages {
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modUnix < files[j].modUnix })
	for _, f := range files[:len(files)-s.maxImages] {
		if err := os.Remove(filepath.Join(s.dir, f.name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		s.logger.Debug("removed old image", "file", f.name)
	}
	return nil
}

// Thumbnail returns the named image scaled to width, PNG encoded.
func (s *Store) Thumbnail(filename string, width uint) ([]byte, error) {
	path, err := s.Path(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = resize.Resize(width, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
