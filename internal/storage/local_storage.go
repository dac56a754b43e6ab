package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"docscan/internal/model"
)

// ErrInvalidName is returned for names that are empty or would leave the store root.
var ErrInvalidName = errors.New("invalid document name")

// LocalStorage keeps uploaded documents as flat files under basePath.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

// StoredName builds "<unix-millis>-<base name>", so names sort in upload order.
func StoredName(original string, at time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		base = "document.txt"
	}
	return strconv.FormatInt(at.UnixMilli(), 10) + "-" + base
}

func (ls *LocalStorage) pathFor(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(ls.basePath, name), nil
}

// Save writes data under name, refusing to overwrite an existing document.
func (ls *LocalStorage) Save(name string, data io.Reader) error {
	filePath, err := ls.pathFor(name)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, data); err != nil {
		file.Close()
		_ = os.Remove(filePath)
		return err
	}
	return file.Close()
}

func (ls *LocalStorage) Get(name string) (io.ReadCloser, error) {
	filePath, err := ls.pathFor(name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document %s not found: %w", name, err)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(name string) error {
	filePath, err := ls.pathFor(name)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

// List reads every stored document, ordered by name.
func (ls *LocalStorage) List(ctx context.Context) ([]model.Document, error) {
	entries, err := os.ReadDir(ls.basePath)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	docs := make([]model.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(filepath.Join(ls.basePath, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		docs = append(docs, model.Document{Name: name, Content: string(content)})
	}

	return docs, nil
}
