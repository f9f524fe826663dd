package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mistakia/finance-sub001/internal/model"
)

// Adapter normalizes raw institution records into canonical transactions.
// Adapters are pure: the same records and owner always produce the same
// transactions, in the same order.
type Adapter interface {
	Normalize(records []Record, owner string) ([]model.Transaction, error)
	Source() string
}

// Registry holds named adapters.
type Registry struct {
	adapters map[string]Adapter
}

// FileInfo describes a raw export in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter. Panics on duplicate source.
func (r *Registry) Register(a Adapter) {
	key := strings.ToLower(a.Source())
	if _, ok := r.adapters[key]; ok {
		panic("duplicate adapter source: " + key)
	}
	r.adapters[key] = a
}

// Get returns the adapter for source, or nil.
func (r *Registry) Get(source string) Adapter {
	return r.adapters[strings.ToLower(source)]
}

// Sources returns the registered source names, sorted.
func (r *Registry) Sources() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect picks the adapter whose source name prefixes fileName, preferring
// the longest match. "interactive-brokers-2025.json" -> interactive-brokers.
func (r *Registry) Detect(fileName string) Adapter {
	base := strings.ToLower(filepath.Base(fileName))
	var best Adapter
	bestLen := 0
	for name, a := range r.adapters {
		if strings.HasPrefix(base, name) && len(name) > bestLen {
			best, bestLen = a, len(name)
		}
	}
	return best
}

// DefaultRegistry returns a registry with all built-in adapters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewKoinlyAdapter())
	r.Register(NewRobinhoodAdapter())
	r.Register(NewSchwabAdapter())
	r.Register(NewFidelityAdapter())
	r.Register(NewInteractiveBrokersAdapter())
	return r
}

// processedDir is the subdirectory of the import dir for processed exports.
const processedDir = "processed"

// Scan returns the JSON exports in dir.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from dir to dir/processed/.
func MarkProcessed(dir, fileName string) error {
	src := filepath.Join(dir, fileName)
	dstDir := filepath.Join(dir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
