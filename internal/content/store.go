package content

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	"ProjectKiosk/internal/dialogue"
)

// Store resolves scenario ids to normalized scenarios.
type Store interface {
	Load(ctx context.Context, id string) (*dialogue.Scenario, error)
}

//go:embed seed
var seedFS embed.FS

// candidateExts are tried in order when an id carries no extension.
var candidateExts = []string{".json", ".yaml", ".yml"}

// FileStore reads scenario documents from a directory tree.
type FileStore struct {
	fsys fs.FS
}

// NewFileStore serves records from fsys.
func NewFileStore(fsys fs.FS) *FileStore {
	return &FileStore{fsys: fsys}
}

// NewDirStore serves records from a directory on disk.
func NewDirStore(dir string) *FileStore {
	return NewFileStore(os.DirFS(dir))
}

// Seed returns a store over the scenarios compiled into the binary.
func Seed() *FileStore {
	sub, err := fs.Sub(seedFS, "seed")
	if err != nil {
		panic(err)
	}
	return NewFileStore(sub)
}

// SeedPlaylist returns the embedded scenario playlist document.
func SeedPlaylist() []byte {
	data, err := seedFS.ReadFile("seed/scenarios.json")
	if err != nil {
		panic(err)
	}
	return data
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, id string) (*dialogue.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := s.Record(id)
	if err != nil {
		return nil, err
	}
	return rec.Normalize()
}

// Record reads and decodes the document for id without normalizing it.
func (s *FileStore) Record(id string) (Record, error) {
	name, data, err := s.read(id)
	if err != nil {
		return Record{}, err
	}
	return DecodeRecord(id, name, data)
}

func (s *FileStore) read(id string) (string, []byte, error) {
	clean := path.Clean(strings.TrimPrefix(id, "/"))
	if clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return "", nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	names := []string{clean}
	if path.Ext(clean) == "" {
		names = names[:0]
		for _, ext := range candidateExts {
			names = append(names, clean+ext)
		}
	}
	for _, name := range names {
		data, err := fs.ReadFile(s.fsys, name)
		if err == nil {
			return name, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("content: read %s: %w", name, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// IDs lists the scenario ids available in the store, sorted.
func (s *FileStore) IDs() ([]string, error) {
	seen := make(map[string]bool)
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ferr := FormatFor(p); ferr != nil {
			return nil
		}
		id := strings.TrimSuffix(p, path.Ext(p))
		if id == "scenarios" {
			return nil // the playlist, not a scenario
		}
		seen[id] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Chain tries each store in order and returns the first hit. Errors other
// than ErrNotFound stop the search.
type Chain []Store

// Load implements Store.
func (c Chain) Load(ctx context.Context, id string) (*dialogue.Scenario, error) {
	for _, s := range c {
		sc, err := s.Load(ctx, id)
		if err == nil {
			return sc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	log.Printf("[content] scenario %s not found in %d stores", id, len(c))
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
