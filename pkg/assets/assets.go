// Package assets loads body textures and the emblem model. Loading is
// best-effort: failures are reported to the caller, which falls back to
// placeholder sprites and keeps the scene running.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // body textures are jpeg
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/opd-ai/go-universo/pkg/validation"
)

// ErrAssetsUnavailable is returned while the asset guard refuses requests
// after repeated failures
var ErrAssetsUnavailable = errors.New("assets unavailable")

// Loader fetches assets. Implementations honour ctx cancellation.
type Loader interface {
	LoadTexture(ctx context.Context, path string) (image.Image, error)
	LoadModel(ctx context.Context, path string) (*Model, error)
}

// FileLoader reads assets from a directory tree
type FileLoader struct {
	Root string
}

// NewFileLoader returns a loader rooted at root
func NewFileLoader(root string) *FileLoader {
	return &FileLoader{Root: root}
}

func (l *FileLoader) open(ctx context.Context, path string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("empty asset path")
	}
	if err := validation.TexturePath(path); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(l.Root, filepath.FromSlash(path)))
}

// LoadTexture decodes a jpeg or png image
func (l *FileLoader) LoadTexture(ctx context.Context, path string) (image.Image, error) {
	f, err := l.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return img, nil
}

// LoadModel parses an STL mesh and centres it on the origin
func (l *FileLoader) LoadModel(ctx context.Context, path string) (*Model, error) {
	f, err := l.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := readAll(ctx, f)
	if err != nil {
		return nil, err
	}
	m, err := ParseSTL(data)
	if err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	m.Path = path
	m.Recentre()
	return m, nil
}

// readAll reads in chunks so a large model can be abandoned on cancellation
func readAll(ctx context.Context, f *os.File) ([]byte, error) {
	var out []byte
	buf := make([]byte, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := f.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
	}
}
