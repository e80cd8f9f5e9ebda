package container

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/reportdeck/backend/internal/infrastructure/logging"
	"github.com/reportdeck/backend/internal/prefs"
	"github.com/reportdeck/backend/internal/shared/types"
)

// Store maps a context name to its record set, backed by the per-user
// preference store. One preference entry holds one whole container; every
// mutation rewrites it in full.
type Store struct {
	prefs     prefs.Store
	namespace string
	defaults  map[string]*types.RecordSet
	logger    *logging.Logger
}

// NewStore creates a container store. defaults maps context names to the
// record sets a fresh container starts from; nil means every context starts
// empty.
func NewStore(p prefs.Store, namespace string, defaults map[string]*types.RecordSet, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		prefs:     p,
		namespace: namespace,
		defaults:  defaults,
		logger:    logger,
	}
}

// Key returns the preference entry key for a context.
func (s *Store) Key(contextName string) string {
	return fmt.Sprintf("%s.reportwidgets.%s", s.namespace, contextName)
}

// Load materializes the container for a context. A context with no stored
// entry yields a copy of its configured defaults, or an empty set. The
// defaults are not written back here; they persist once the first mutation
// saves.
func (s *Store) Load(ctx context.Context, userID, contextName string) (*types.RecordSet, error) {
	raw, found, err := s.prefs.Get(ctx, userID, s.Key(contextName))
	if err != nil {
		return nil, fmt.Errorf("load container %q: %w", contextName, err)
	}
	if !found {
		if def, ok := s.defaults[contextName]; ok {
			s.logger.Debug("Container seeded from defaults",
				zap.String("context", contextName),
				zap.Int("widgets", def.Len()))
			return def.Clone(), nil
		}
		return types.NewRecordSet(), nil
	}

	set := types.NewRecordSet()
	if err := sonic.Unmarshal(raw, set); err != nil {
		return nil, fmt.Errorf("decode container %q: %w", contextName, err)
	}
	return set, nil
}

// Save serializes the whole container back to its preference entry.
func (s *Store) Save(ctx context.Context, userID, contextName string, set *types.RecordSet) error {
	data, err := sonic.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode container %q: %w", contextName, err)
	}
	if err := s.prefs.Set(ctx, userID, s.Key(contextName), data); err != nil {
		return fmt.Errorf("save container %q: %w", contextName, err)
	}
	return nil
}
