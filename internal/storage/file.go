package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"moodtrack/internal/models"
)

// FileStorage keeps the collection as a pretty-printed JSON array on local disk.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (fs_st *FileStorage) ensureDir() error {
	return os.MkdirAll(filepath.Dir(fs_st.path), 0o755)
}

func (fs_st *FileStorage) LoadAll(ctx context.Context) ([]models.MoodEntry, error) {
	op := "internal/storage/file.go LoadAll"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := fs_st.ensureDir(); err != nil {
		return nil, unavailable(op, "create data dir", err)
	}

	data, err := os.ReadFile(fs_st.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.MoodEntry{}, nil
	}
	if err != nil {
		return nil, unavailable(op, "read "+fs_st.path, err)
	}

	var entries []models.MoodEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, unavailable(op, "decode "+fs_st.path, err)
	}

	return emptyIfNil(entries), nil
}

// SaveAll writes to a temp file next to the target and renames it over the target,
// so readers never see a half-written document.
func (fs_st *FileStorage) SaveAll(ctx context.Context, entries []models.MoodEntry) error {
	op := "internal/storage/file.go SaveAll"

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := fs_st.ensureDir(); err != nil {
		return unavailable(op, "create data dir", err)
	}

	data, err := json.MarshalIndent(emptyIfNil(entries), "", "  ")
	if err != nil {
		return unavailable(op, "encode entries", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs_st.path), filepath.Base(fs_st.path)+".*.tmp")
	if err != nil {
		return unavailable(op, "create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return unavailable(op, "write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return unavailable(op, "close temp file", err)
	}

	if err := os.Rename(tmpName, fs_st.path); err != nil {
		os.Remove(tmpName)
		return unavailable(op, "replace "+fs_st.path, err)
	}

	return nil
}

func (fs_st *FileStorage) Close() error {
	return nil
}
