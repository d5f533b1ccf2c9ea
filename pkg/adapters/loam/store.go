package loam

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/inferschema/pkg/ports"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/aretw0/loam"
	loamfs "github.com/aretw0/loam/pkg/adapters/fs"
)

const ext = ".json"

// Store adapts a Loam repository to ports.DefinitionStore. Each definition
// is one JSON document named after the record, so the directory can be
// reviewed and edited by hand.
type Store struct {
	Repo *loam.TypedRepository[schema.Definition]
	dir  string
}

// New wraps an existing typed repository rooted at dir.
func New(repo *loam.TypedRepository[schema.Definition], dir string) *Store {
	return &Store{Repo: repo, dir: dir}
}

// Open initializes a Loam repository in dir, creating it if needed.
func Open(dir string, opts ...loam.Option) (*Store, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("create definitions dir: %w", err)
	}

	// Strict JSON keeps numbers exact; ForceTemp(false) makes writes land in
	// dir even when running under a dev toolchain.
	base := []loam.Option{
		loam.WithVersioning(false),
		loam.WithStrict(true),
		loam.WithForceTemp(false),
		loam.WithSerializer(ext, loamfs.NewJSONSerializer(true)),
	}
	repo, err := loam.Init(absPath, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[schema.Definition](repo), absPath), nil
}

func (s *Store) exists(name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, name+ext))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Save writes the definition document.
func (s *Store) Save(ctx context.Context, def schema.Definition) error {
	err := s.Repo.Save(ctx, &loam.DocumentModel[schema.Definition]{
		ID:      def.Name + ext,
		Content: def.Doc,
		Data:    def,
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", def.Name, err)
	}
	return nil
}

// Load reads the definition document for name.
func (s *Store) Load(ctx context.Context, name string) (schema.Definition, error) {
	ok, err := s.exists(name)
	if err != nil {
		return schema.Definition{}, err
	}
	if !ok {
		return schema.Definition{}, ports.ErrDefinitionNotFound
	}

	doc, err := s.Repo.Get(ctx, name)
	if err != nil {
		return schema.Definition{}, fmt.Errorf("loam get failed for %s: %w", name, err)
	}
	def := doc.Data
	if def.Name == "" {
		def.Name = name
	}
	return def, nil
}

// Delete removes the definition document.
func (s *Store) Delete(ctx context.Context, name string) error {
	ok, err := s.exists(name)
	if err != nil || !ok {
		return err
	}
	if err := s.Repo.Delete(ctx, name+ext); err != nil {
		return fmt.Errorf("loam delete failed for %s: %w", name, err)
	}
	return nil
}

// List lists the record names of all documents in the repository.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		name := doc.Data.Name
		if name == "" {
			name = trimExtension(doc.ID)
		}
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: record '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Watch implements ports.Watchable.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(filepath.Base(evt.ID)):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
