package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"bidsmeta/internal/logging"
	"bidsmeta/internal/metadata"
	"bidsmeta/internal/openminds"
	"bidsmeta/internal/terms"
	"bidsmeta/internal/units"
)

const descriptionFile = "dataset_description.json"

// DefaultSkipDirs are top-level directories that never hold raw data.
var DefaultSkipDirs = []string{"derivatives", "sourcedata", "code"}

// ErrNotDataset reports a root that is not a readable directory.
var ErrNotDataset = errors.New("not a dataset directory")

// Option configures Open.
type Option func(*Dataset)

// WithSkipDirs replaces the top-level directories excluded from the walk.
func WithSkipDirs(dirs ...string) Option {
	return func(d *Dataset) {
		d.skip = make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			dir = strings.Trim(strings.TrimSpace(dir), "/")
			if dir != "" {
				d.skip[dir] = struct{}{}
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dataset) {
		d.logger = logger
	}
}

// WithHashing enables content hashing in RegisterFiles.
func WithHashing(enabled bool) Option {
	return func(d *Dataset) {
		d.hash = enabled
	}
}

// WithRegistries sets the term and unit registries used for file entities.
func WithRegistries(termReg *terms.Registry, unitReg *units.Registry) Option {
	return func(d *Dataset) {
		if termReg != nil {
			d.terms = termReg
		}
		if unitReg != nil {
			d.units = unitReg
		}
	}
}

// Dataset is a BIDS dataset on disk.
type Dataset struct {
	root   string
	name   string
	skip   map[string]struct{}
	hash   bool
	terms  *terms.Registry
	units  *units.Registry
	logger *slog.Logger

	// files holds slash-separated paths relative to root, sorted. byDir
	// and sidecars index the same paths by parent directory.
	files        []string
	byDir        map[string][]string
	sidecars     map[string][]sidecar
	sidecarCount int

	mu      sync.Mutex
	records map[string]metadata.Record
	refs    map[string]openminds.Ref
}

// Open walks root and reads its description.
func Open(root string, opts ...Option) (*Dataset, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataset, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotDataset, abs)
	}

	d := &Dataset{
		root:    abs,
		terms:   terms.Default(),
		units:   units.Default(),
		records: make(map[string]metadata.Record),
		refs:    make(map[string]openminds.Ref),
	}
	WithSkipDirs(DefaultSkipDirs...)(d)
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "dataset")

	if d.name, err = readName(abs); err != nil {
		return nil, err
	}
	if err := d.walk(); err != nil {
		return nil, err
	}
	d.logger.Debug("dataset opened",
		logging.String("dataset", d.name),
		logging.String("root", abs),
		logging.Int("file_count", len(d.files)),
		logging.Int("sidecar_count", d.sidecarCount),
	)
	return d, nil
}

func readName(root string) (string, error) {
	fallback := filepath.Base(root)
	data, err := os.ReadFile(filepath.Join(root, descriptionFile))
	if errors.Is(err, fs.ErrNotExist) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", descriptionFile, err)
	}
	var desc struct {
		Name string `json:"Name"`
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return "", fmt.Errorf("decode %s: %w", descriptionFile, err)
	}
	if name := strings.TrimSpace(desc.Name); name != "" {
		return name, nil
	}
	return fallback, nil
}

func (d *Dataset) walk() error {
	matches, err := doublestar.Glob(os.DirFS(d.root), "**", doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("walk dataset: %w", err)
	}
	for _, rel := range matches {
		if !d.skipped(rel) {
			d.files = append(d.files, rel)
		}
	}
	sort.Strings(d.files)

	d.byDir = make(map[string][]string)
	d.sidecars = make(map[string][]sidecar)
	for _, rel := range d.files {
		dir := path.Dir(rel)
		d.byDir[dir] = append(d.byDir[dir], rel)
		if strings.HasSuffix(rel, ".json") && rel != descriptionFile {
			d.sidecars[dir] = append(d.sidecars[dir], sidecar{rel: rel, entities: ParseEntities(rel)})
			d.sidecarCount++
		}
	}
	return nil
}

func (d *Dataset) skipped(rel string) bool {
	segments := strings.Split(rel, "/")
	if len(segments) > 1 {
		if _, ok := d.skip[segments[0]]; ok {
			return true
		}
	}
	for _, segment := range segments {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}

// DisplayName returns the dataset name from its description, or the root
// directory name.
func (d *Dataset) DisplayName() string { return d.name }

// Paths returns every dataset file relative to the root.
func (d *Dataset) Paths() []string {
	return append([]string(nil), d.files...)
}

// Enumerate returns the files whose names end in one of exts, in path order.
func (d *Dataset) Enumerate(exts []string) ([]File, error) {
	patterns := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		pattern := "**/*" + ext
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid extension %q", ext)
		}
		patterns = append(patterns, pattern)
	}

	var out []File
	for _, rel := range d.files {
		for _, pattern := range patterns {
			if doublestar.MatchUnvalidated(pattern, rel) {
				out = append(out, d.file(rel))
				break
			}
		}
	}
	return out, nil
}

func (d *Dataset) file(rel string) *bidsFile {
	return &bidsFile{ds: d, rel: rel, entities: ParseEntities(rel)}
}

// metadataFor merges the sidecars applicable to rel, shallowest first.
func (d *Dataset) metadataFor(rel string, target Entities) (metadata.Record, error) {
	d.mu.Lock()
	if rec, ok := d.records[rel]; ok {
		d.mu.Unlock()
		return rec, nil
	}
	d.mu.Unlock()

	merged := metadata.Record{}
	for _, sidecar := range d.applicableSidecars(rel, target) {
		rec, err := d.readSidecar(sidecar)
		if err != nil {
			return nil, err
		}
		for key, value := range rec {
			merged[key] = value
		}
	}

	d.mu.Lock()
	d.records[rel] = merged
	d.mu.Unlock()
	return merged, nil
}

type sidecar struct {
	rel      string
	entities Entities
}

// applicableSidecars returns the sidecars in rel's directory or any
// ancestor whose entities apply to target, ordered from the root down.
func (d *Dataset) applicableSidecars(rel string, target Entities) []string {
	var out []string
	for _, dir := range ancestorDirs(path.Dir(rel)) {
		for _, sc := range d.sidecars[dir] {
			if sc.rel != rel && sc.entities.appliesTo(target) {
				out = append(out, sc.rel)
			}
		}
	}
	return out
}

func (d *Dataset) readSidecar(rel string) (metadata.Record, error) {
	data, err := os.ReadFile(filepath.Join(d.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("read sidecar %s: %w", rel, err)
	}
	var rec metadata.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode sidecar %s: %w", rel, err)
	}
	return rec, nil
}

// ancestorDirs lists ".", then every directory on the way down to dir.
func ancestorDirs(dir string) []string {
	out := []string{"."}
	if dir == "." || dir == "" {
		return out
	}
	for i, c := range dir {
		if c == '/' {
			out = append(out, dir[:i])
		}
	}
	return append(out, dir)
}
