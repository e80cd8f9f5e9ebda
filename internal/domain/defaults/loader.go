// Package defaults loads the widget files that seed a context's container
// the first time a user opens it.
//
// Files live under one directory tree and are matched by
// **/*.widgets.{toml,yaml,yml}. Each file declares one context and its
// ordered widget list. Parsing is strict: unknown fields are rejected
// instead of silently dropped.
package defaults

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/infrastructure/logging"
	"github.com/reportdeck/backend/internal/shared/types"
	"github.com/reportdeck/backend/internal/shared/utils"
)

// filePattern matches default-widget files anywhere under the root.
const filePattern = "**/*.widgets.{toml,yaml,yml}"

// File is the declared layout of one default-widgets file.
type File struct {
	Context string      `toml:"context" yaml:"context"`
	Widgets []WidgetDef `toml:"widgets" yaml:"widgets"`
}

// WidgetDef declares one seeded widget. Alias, width, and sortOrder are
// optional: a missing alias follows the generated naming pattern, width
// falls back to full width, and sortOrder falls back to file position.
type WidgetDef struct {
	Class      string                 `toml:"class" yaml:"class"`
	Alias      string                 `toml:"alias" yaml:"alias"`
	Width      int                    `toml:"width" yaml:"width"`
	NewRow     bool                   `toml:"newRow" yaml:"newRow"`
	SortOrder  int                    `toml:"sortOrder" yaml:"sortOrder"`
	Properties map[string]interface{} `toml:"properties" yaml:"properties"`
}

// Loader parses default-widget files into per-context record sets.
type Loader struct {
	registry *widget.Registry
	logger   *logging.Logger
}

// NewLoader creates a loader. registry may be nil to skip the class
// existence warning.
func NewLoader(registry *widget.Registry, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Loader{registry: registry, logger: logger}
}

// Load walks dir and returns the seeded record set per context. An empty dir
// means no defaults are configured. A context declared by several files is
// taken from the lexically last path, with a warning.
func (l *Loader) Load(dir string) (map[string]*types.RecordSet, error) {
	out := make(map[string]*types.RecordSet)
	if dir == "" {
		return out, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("defaults dir: %w", err)
	}

	paths, err := l.matchFiles(dir)
	if err != nil {
		return nil, err
	}

	source := make(map[string]string)
	widgets := 0
	for _, path := range paths {
		file, err := l.parseFile(path)
		if err != nil {
			return nil, err
		}

		set, err := l.buildSet(file, path)
		if err != nil {
			return nil, err
		}

		if prev, dup := source[file.Context]; dup {
			l.logger.Warn("Default widgets redefined for context",
				zap.String("context", file.Context),
				zap.String("kept", path),
				zap.String("overridden", prev))
			widgets -= out[file.Context].Len()
		}
		source[file.Context] = path
		out[file.Context] = set
		widgets += set.Len()
	}

	l.logger.Info("Default widgets loaded",
		zap.String("dir", dir),
		zap.Int("contexts", len(out)),
		zap.Int("widgets", widgets))
	return out, nil
}

// matchFiles collects matching paths in lexical order. The walk callback
// runs concurrently, so appends are guarded.
func (l *Loader) matchFiles(dir string) ([]string, error) {
	var mu sync.Mutex
	var paths []string

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		ok, err := doublestar.Match(filePattern, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if ok {
			mu.Lock()
			paths = append(paths, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk defaults dir: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) parseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return &file, nil
}

func (l *Loader) buildSet(file *File, path string) (*types.RecordSet, error) {
	if err := utils.ValidateContextName(file.Context); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	set := types.NewRecordSet()
	for i, def := range file.Widgets {
		rec, err := l.buildRecord(file.Context, i, def)
		if err != nil {
			return nil, fmt.Errorf("%s: widget %d: %w", path, i+1, err)
		}
		if set.Has(rec.Alias) {
			return nil, fmt.Errorf("%s: widget %d: duplicate alias %q", path, i+1, rec.Alias)
		}
		set.Put(rec)
	}
	return set, nil
}

func (l *Loader) buildRecord(contextName string, index int, def WidgetDef) (*types.WidgetRecord, error) {
	if strings.TrimSpace(def.Class) == "" {
		return nil, fmt.Errorf("class is required")
	}
	if l.registry != nil {
		if _, ok := l.registry.Resolve(def.Class); !ok {
			// Kept, not dropped: listing tolerates unresolvable records.
			l.logger.Warn("Default widget class is not registered",
				zap.String("context", contextName),
				zap.String("class", def.Class))
		}
	}

	width := def.Width
	if width == 0 {
		width = widget.MaxWidth
	}
	if width < widget.MinWidth || width > widget.MaxWidth {
		return nil, fmt.Errorf("width %d out of range %d..%d", width, widget.MinWidth, widget.MaxWidth)
	}

	alias := def.Alias
	if alias == "" {
		alias = fmt.Sprintf("report_container_%s_%d", contextName, index+1)
	}
	if err := utils.ValidateAlias(alias, true); err != nil {
		return nil, err
	}

	sortOrder := def.SortOrder
	if sortOrder == 0 {
		sortOrder = index + 1
	}

	configuration := make(map[string]interface{}, len(def.Properties)+2)
	for k, v := range def.Properties {
		configuration[k] = v
	}
	// Reserved fields are authoritative over the free-form properties.
	configuration[widget.PropWidth] = width
	configuration[widget.PropNewRow] = def.NewRow

	return &types.WidgetRecord{
		Alias:         alias,
		ClassName:     def.Class,
		Configuration: configuration,
		SortOrder:     sortOrder,
	}, nil
}
