package bough

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jward/bough/internal/analyzer"
	"github.com/jward/bough/internal/source"
	"github.com/jward/bough/internal/store"
)

// Engine orchestrates the bundle pipeline: source collection, definition
// indexing, entry resolution, closure building, and rendering input.
type Engine struct {
	root       string
	extensions []string
	analyzer   analyzer.Analyzer
	logger     *log.Logger
	attribute  string

	// languageTags overrides the default extension → fence-tag mapping.
	languageTags map[string]string

	// cache memoizes per-file definition scans across runs. nil means every
	// run indexes from scratch.
	cache     *store.Store
	cachePath string

	// useParallel enables the worker-pool definition scan. The merge is
	// order-preserving, so results are identical to the serial pass.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtensions restricts collection to the given file extensions
// (leading dot). Defaults to the extensions of the known languages.
func WithExtensions(exts ...string) Option {
	return func(e *Engine) {
		e.extensions = exts
	}
}

// WithAnalyzer selects the analysis tier. Defaults to the heuristic tier.
func WithAnalyzer(a analyzer.Analyzer) Option {
	return func(e *Engine) {
		e.analyzer = a
	}
}

// WithLogger sets the progress logger. Defaults to a discard logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMarkerAttribute overrides the annotation name the entry resolver looks
// for. Defaults to CommandMethod.
func WithMarkerAttribute(name string) Option {
	return func(e *Engine) {
		e.attribute = name
	}
}

// WithLanguageTags overrides the extension → code-fence tag mapping for the
// given extensions. Unlisted extensions keep their defaults.
func WithLanguageTags(tags map[string]string) Option {
	return func(e *Engine) {
		e.languageTags = tags
	}
}

// WithCache enables the SQLite definition-index cache at dbPath. Files whose
// content hash is unchanged since the last run skip re-scanning. The cache is
// fingerprinted by analysis tier; switching tiers wipes it.
func WithCache(dbPath string) Option {
	return func(e *Engine) {
		e.cachePath = dbPath
	}
}

// WithParallel controls the parallel definition scan. Default true.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// New creates an Engine rooted at the given directory.
func New(root string, opts ...Option) (*Engine, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("bough: resolve root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("bough: root not found: %s", abs)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bough: root is not a directory: %s", abs)
	}

	e := &Engine{
		root:        abs,
		extensions:  analyzer.DefaultExtensions,
		analyzer:    analyzer.NewHeuristic(),
		logger:      log.New(io.Discard),
		attribute:   analyzer.DefaultAttribute,
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.cachePath != "" {
		if err := e.openCache(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Close releases the Engine's cache resources, if any.
func (e *Engine) Close() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Close()
}

// openCache opens and migrates the cache database, wiping cached data if it
// was built by a different analysis tier.
func (e *Engine) openCache() error {
	if dir := filepath.Dir(e.cachePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("bough: create cache directory: %w", err)
		}
	}
	s, err := store.NewStore(e.cachePath)
	if err != nil {
		return fmt.Errorf("bough: open cache: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return fmt.Errorf("bough: migrate cache: %w", err)
	}

	tier, err := s.GetMetadata("analyzer")
	if err != nil {
		s.Close()
		return fmt.Errorf("bough: read cache metadata: %w", err)
	}
	if tier != e.analyzer.Name() {
		if tier != "" {
			e.logger.Debug("analysis tier changed, resetting cache", "was", tier, "now", e.analyzer.Name())
		}
		if err := s.Reset(); err != nil {
			s.Close()
			return fmt.Errorf("bough: reset cache: %w", err)
		}
		if err := s.SetMetadata("analyzer", e.analyzer.Name()); err != nil {
			s.Close()
			return fmt.Errorf("bough: write cache metadata: %w", err)
		}
	}

	e.cache = s
	return nil
}

// Bundle runs the whole pipeline for one target marker and returns the
// assembled bundle. Fatal conditions (ErrNoSources, ErrEntryNotFound, and in
// direct mode ErrEntryBodyNotFound) abort with no partial result.
func (e *Engine) Bundle(ctx context.Context, marker string, mode Mode) (*Bundle, error) {
	units, err := source.Collect(e.root, e.extensions)
	if err != nil {
		return nil, fmt.Errorf("bough: collect sources: %w", err)
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: no %s files under %s", ErrNoSources, strings.Join(e.extensions, "/"), e.root)
	}

	index, err := e.buildIndex(ctx, units)
	if err != nil {
		return nil, err
	}
	e.logger.Info("indexed definitions", "functions", len(index), "files", len(units))

	entry, ok := analyzer.FindEntry(units, e.attribute, marker)
	if !ok {
		return nil, fmt.Errorf("%w: no [%s(%q)] annotation in any unit", ErrEntryNotFound, e.attribute, marker)
	}
	e.logger.Info("entry point", "function", entry.Name, "file", entry.Unit)

	byPath := make(map[string]*source.Unit, len(units))
	for _, u := range units {
		byPath[u.Path] = u
	}

	b := &Bundle{
		Marker:      marker,
		Mode:        mode,
		Root:        e.root,
		EntryName:   entry.Name,
		EntryUnit:   entry.Unit,
		GeneratedAt: time.Now(),
	}

	switch mode {
	case ModeDirect:
		report, err := e.directReport(ctx, byPath, index, entry)
		if err != nil {
			return nil, err
		}
		for _, path := range sortedKeys(report) {
			b.Files = append(b.Files, BundleFile{
				Path:     path,
				Language: e.languageTag(byPath[path]),
				Bodies:   report[path],
			})
		}
	default:
		included, err := e.transitiveClosure(ctx, byPath, index, entry)
		if err != nil {
			return nil, err
		}
		for _, path := range sortedKeys(included) {
			b.Files = append(b.Files, BundleFile{
				Path:     path,
				Language: e.languageTag(byPath[path]),
				FullText: byPath[path].Text,
			})
		}
	}

	e.logger.Info("bundle assembled", "files", len(b.Files), "mode", mode.String())
	return b, nil
}

// buildIndex produces the definition index: function name → owning unit path.
// The first unit (in collection order) to define a name wins; later
// duplicates are ignored, which is a known ambiguity rather than an error.
func (e *Engine) buildIndex(ctx context.Context, units []*source.Unit) (map[string]string, error) {
	var perUnit [][]string
	var err error
	if e.useParallel {
		perUnit, err = e.scanDefinitionsParallel(ctx, units)
	} else {
		perUnit, err = e.scanDefinitions(ctx, units)
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]string)
	for i, names := range perUnit {
		for _, name := range names {
			if owner, ok := index[name]; ok {
				if owner != units[i].Path {
					e.logger.Debug("duplicate definition ignored", "function", name, "kept", owner, "skipped", units[i].Path)
				}
				continue
			}
			index[name] = units[i].Path
		}
	}
	return index, nil
}

// scanDefinitions is the serial definition scan, consulting the cache when
// one is configured.
func (e *Engine) scanDefinitions(ctx context.Context, units []*source.Unit) ([][]string, error) {
	perUnit := make([][]string, len(units))
	for i, u := range units {
		names, hit, err := e.cachedDefinitions(u)
		if err != nil {
			return nil, err
		}
		if hit {
			perUnit[i] = names
			continue
		}
		names, err = e.analyzer.Definitions(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("bough: index %s: %w", u.Path, err)
		}
		if err := e.commitDefinitions(u, names); err != nil {
			return nil, err
		}
		perUnit[i] = names
	}
	return perUnit, nil
}

// cachedDefinitions returns the cached names for a unit when the cache holds
// a record with a matching content hash. hit=false means the unit must be
// scanned (and any stale record has already been deleted).
func (e *Engine) cachedDefinitions(u *source.Unit) ([]string, bool, error) {
	if e.cache == nil {
		return nil, false, nil
	}
	f, err := e.cache.FileByPath(u.Path)
	if err != nil {
		return nil, false, fmt.Errorf("bough: cache lookup %s: %w", u.Path, err)
	}
	if f == nil {
		return nil, false, nil
	}
	if f.Hash != contentHash(u.Text) {
		if err := e.cache.DeleteFileData(f.ID); err != nil {
			return nil, false, fmt.Errorf("bough: evict stale cache entry %s: %w", u.Path, err)
		}
		return nil, false, nil
	}
	names, err := e.cache.DefinitionNames(f.ID)
	if err != nil {
		return nil, false, fmt.Errorf("bough: cached definitions %s: %w", u.Path, err)
	}
	return names, true, nil
}

// commitDefinitions records a freshly scanned unit in the cache.
func (e *Engine) commitDefinitions(u *source.Unit, names []string) error {
	if e.cache == nil {
		return nil
	}
	lang, _ := analyzer.LanguageForExt(u.Ext())
	fileID, err := e.cache.InsertFile(&store.File{
		Path:        u.Path,
		Language:    lang,
		Hash:        contentHash(u.Text),
		LastIndexed: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("bough: cache %s: %w", u.Path, err)
	}
	if err := e.cache.InsertDefinitions(fileID, names); err != nil {
		return fmt.Errorf("bough: cache definitions %s: %w", u.Path, err)
	}
	return nil
}

// languageTag returns the code-fence tag for a unit, honoring overrides.
// Unmapped extensions get an empty tag.
func (e *Engine) languageTag(u *source.Unit) string {
	if tag, ok := e.languageTags[u.Ext()]; ok {
		return tag
	}
	tag, _ := analyzer.LanguageForExt(u.Ext())
	return tag
}

func contentHash(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})
	return keys
}
