package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const metaSuffix = ".meta"

// LocalStorage implements Storage over an afero filesystem rooted at a base
// path. Production uses the OS filesystem; tests use an in-memory one.
type LocalStorage struct {
	fs       afero.Fs
	basePath string
}

// NewLocalStorage creates storage rooted at basePath on fsys.
func NewLocalStorage(fsys afero.Fs, basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "."
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage path %s: %w", basePath, err)
	}
	basePath = abs
	if err := fsys.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{
		fs:       afero.NewBasePathFs(fsys, basePath),
		basePath: basePath,
	}, nil
}

// Get retrieves content from the given key. A missing file wraps fs.ErrNotExist.
func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := afero.ReadFile(s.fs, keyToPath(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", key, err)
	}
	return content, nil
}

// GetInfo retrieves file information without returning content
func (s *LocalStorage) GetInfo(ctx context.Context, key string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := keyToPath(key)
	stat, err := s.fs.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", key, err)
	}

	checksum, err := s.fileChecksum(p)
	if err != nil {
		return nil, fmt.Errorf("failed to compute checksum: %w", err)
	}

	info := &FileInfo{
		Key:        strings.TrimPrefix(p, "/"),
		Size:       stat.Size(),
		Checksum:   checksum,
		ModifiedAt: stat.ModTime(),
	}
	if metaBytes, err := afero.ReadFile(s.fs, p+metaSuffix); err == nil {
		var metadata Metadata
		if err := json.Unmarshal(metaBytes, &metadata); err == nil {
			info.Metadata = &metadata
		}
	}
	return info, nil
}

// Exists checks if a file exists at the given key
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := afero.Exists(s.fs, keyToPath(key))
	if err != nil {
		return false, fmt.Errorf("failed to stat file %s: %w", key, err)
	}
	return ok, nil
}

// List returns the files directly inside dir sorted by key. A missing
// directory lists as empty.
func (s *LocalStorage) List(ctx context.Context, dir string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := keyToPath(dir)
	entries, err := afero.ReadDir(s.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		return []FileInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), metaSuffix) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, FileInfo{
			Key:        strings.TrimPrefix(path.Join(p, e.Name()), "/"),
			Size:       e.Size(),
			ModifiedAt: e.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}

// Put stores content at the given key with optional metadata
func (s *LocalStorage) Put(ctx context.Context, key string, content []byte, metadata *Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := keyToPath(key)
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := afero.WriteFile(s.fs, p, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", key, err)
	}
	if metadata != nil {
		return s.writeMeta(p, metadata)
	}
	return nil
}

// Move renames src to dst.
func (s *LocalStorage) Move(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, to := keyToPath(src), keyToPath(dst)
	if err := s.fs.MkdirAll(path.Dir(to), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := s.fs.Rename(from, to); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return nil
}

// WriteMetadata writes or replaces the .meta sidecar of an existing file.
func (s *LocalStorage) WriteMetadata(ctx context.Context, key string, metadata *Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeMeta(keyToPath(key), metadata)
}

// BasePath returns the root this storage was created with.
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

func (s *LocalStorage) writeMeta(p string, metadata *Metadata) error {
	metaBytes, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := afero.WriteFile(s.fs, p+metaSuffix, metaBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata %s: %w", p+metaSuffix, err)
	}
	return nil
}

func (s *LocalStorage) fileChecksum(p string) (string, error) {
	file, err := s.fs.Open(p)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// keyToPath cleans a key into an absolute path inside the storage root, so
// ".." can never escape it.
func keyToPath(key string) string {
	key = strings.ReplaceAll(key, "\\", "/")
	return path.Clean("/" + key)
}

// ComputeChecksum computes SHA256 checksum for content
func ComputeChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
