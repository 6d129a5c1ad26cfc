// Package media stores clip content as plain files under a root directory,
// one blob per clip id. Playable references are absolute file paths, which
// lets the HTTP layer serve them with range support via http.ServeContent.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

type fsRepository struct {
	root string
}

// NewFSRepository returns a MediaRepository rooted at dir, creating it when
// missing.
func NewFSRepository(dir string) (repository.MediaRepository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &fsRepository{root: abs}, nil
}

func (r *fsRepository) path(id string) string {
	// ids are generated uuids, but never trust them as path components
	return filepath.Join(r.root, filepath.Base(id))
}

// Put streams content to a temp file and renames it into place so a crashed
// upload never leaves a half-written blob behind.
func (r *fsRepository) Put(ctx context.Context, id string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(r.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}

	dst := r.path(id)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("publish blob: %w", err)
	}
	return dst, nil
}

func (r *fsRepository) Get(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := r.path(id)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", entity.ErrMediaNotFound
		}
		return "", fmt.Errorf("stat blob: %w", err)
	}
	return path, nil
}

func (r *fsRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(r.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}
