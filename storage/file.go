package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// FileStore implements a secret store using the local file system.
// Every secret is kept in its own 0600 file under the base directory. The
// key alias is recorded for logging only, values are not encrypted at rest.
type FileStore struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// NewFileStore creates a new file store using the specified base directory.
func NewFileStore(baseDir string, log *slog.Logger) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("%w: empty base directory", interfaces.ErrInvalidLocationURI)
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileStore{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Put writes value to the file for name. Without opts.Overwrite the file is
// created exclusively so an existing secret is never replaced.
func (b *FileStore) Put(ctx context.Context, name string, value []byte, opts interfaces.PutOptions) error {
	filePath, err := b.getFilePath(name)
	if err != nil {
		return err
	}

	if !opts.Overwrite {
		f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				return fmt.Errorf("%w: %s", interfaces.ErrAlreadyExists, name)
			}
			return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
		}
		if _, err := f.Write(value); err != nil {
			f.Close()
			os.Remove(filePath)
			return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
		}
	} else {
		tmp, err := os.CreateTemp(b.baseDir, ".tmp-*")
		if err != nil {
			return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
		}
		defer os.Remove(tmp.Name())

		if _, err := tmp.Write(value); err != nil {
			tmp.Close()
			return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
		}
		if err := tmp.Chmod(0600); err != nil {
			tmp.Close()
			return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
		}
		if err := os.Rename(tmp.Name(), filePath); err != nil {
			return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
		}
	}

	b.log.Debug("Stored secret in file",
		slog.String("path", filePath),
		slog.String("key_alias", opts.KeyAlias),
		slog.Bool("overwrite", opts.Overwrite))

	return nil
}

// Get reads the file for name.
func (b *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	filePath, err := b.getFilePath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	b.log.Debug("Fetched secret from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return data, nil
}

// Delete removes the file for name.
func (b *FileStore) Delete(ctx context.Context, name string) error {
	filePath, err := b.getFilePath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}
	return nil
}

// Available checks if the file store is accessible by verifying the base directory exists.
func (b *FileStore) Available(ctx context.Context) bool {
	_, err := os.Stat(b.baseDir)
	if err != nil {
		b.log.Debug("File store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this store.
func (b *FileStore) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(b.baseDir))
}

// LocationURI returns the URI that identifies this store.
func (b *FileStore) LocationURI() string {
	return b.locationURI
}

// getFilePath maps a parameter name onto a single flat file name.
func (b *FileStore) getFilePath(name string) (string, error) {
	escaped := url.QueryEscape(name)
	if escaped == "" || escaped == "." || escaped == ".." {
		return "", fmt.Errorf("%w: unusable file name %q", interfaces.ErrValidation, name)
	}
	return filepath.Join(b.baseDir, escaped), nil
}
