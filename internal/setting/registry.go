// Package setting holds ruleset definitions: loading them from YAML,
// validating them and tracking which one is active.
package setting

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/events"
	"go.uber.org/zap"
)

// Registry is the process-wide catalog of settings with at most one active.
// Settings are copied on Register and must be treated as read-only by
// callers of Get and Active.
type Registry struct {
	mu       sync.RWMutex
	settings map[string]*entities.Setting
	order    []string
	active   *entities.Setting

	events events.Emitter
	logger *zap.Logger
}

// RegistryConfig holds configuration for the registry
type RegistryConfig struct {
	Events events.Emitter // Optional
	Logger *zap.Logger    // Optional
}

// NewRegistry creates an empty registry
func NewRegistry(cfg *RegistryConfig) *Registry {
	if cfg == nil {
		cfg = &RegistryConfig{}
	}

	r := &Registry{
		settings: make(map[string]*entities.Setting),
		events:   cfg.Events,
		logger:   cfg.Logger,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Register validates and adds a setting to the catalog
func (r *Registry) Register(s *entities.Setting) error {
	if err := Validate(s); err != nil {
		return err
	}

	stored, err := clone(s)
	if err != nil {
		return yzeerr.Wrapf(err, "failed to copy setting %q", s.ID)
	}
	Normalize(stored)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.settings[stored.ID]; exists {
		return yzeerr.AlreadyExistsf("setting %q is already registered", stored.ID).
			WithMeta("setting_id", stored.ID)
	}

	r.settings[stored.ID] = stored
	r.order = append(r.order, stored.ID)

	r.logger.Info("registered setting", zap.String("setting_id", stored.ID))
	return nil
}

// Get returns a registered setting
func (r *Registry) Get(id string) (*entities.Setting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[id]
	if !ok {
		return nil, yzeerr.NotFoundf("setting %q is not registered", id).
			WithMeta("setting_id", id)
	}
	return s, nil
}

// List returns settings in registration order
func (r *Registry) List() []*entities.Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Setting, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.settings[id])
	}
	return out
}

// Active returns the active setting, or nil. The returned value is a stable
// snapshot; a later Activate does not change it.
func (r *Registry) Active() *entities.Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// ActiveID returns the id of the active setting, or ""
func (r *Registry) ActiveID() string {
	return r.Active().GetID()
}

// Activate makes a registered setting the active one. The previous active
// setting, if any, is deactivated first.
func (r *Registry) Activate(ctx context.Context, id string) error {
	r.mu.Lock()
	next, ok := r.settings[id]
	if !ok {
		r.mu.Unlock()
		return yzeerr.NotFoundf("cannot activate setting %q: not registered", id).
			WithMeta("setting_id", id)
	}
	prev := r.active
	if prev == next {
		r.mu.Unlock()
		return nil
	}
	r.active = next
	r.mu.Unlock()

	if prev != nil {
		r.emit(ctx, events.NewSettingDeactivatedEvent(prev))
	}
	r.emit(ctx, events.NewSettingActivatedEvent(next, prev))

	r.logger.Info("activated setting",
		zap.String("setting_id", next.ID),
		zap.String("previous", prev.GetID()))
	return nil
}

// Deactivate clears the active setting
func (r *Registry) Deactivate(ctx context.Context) {
	r.mu.Lock()
	prev := r.active
	r.active = nil
	r.mu.Unlock()

	if prev == nil {
		return
	}

	r.emit(ctx, events.NewSettingDeactivatedEvent(prev))
	r.logger.Info("deactivated setting", zap.String("setting_id", prev.ID))
}

func (r *Registry) emit(ctx context.Context, event events.Event) {
	if r.events == nil {
		return
	}
	if err := r.events.Emit(ctx, event); err != nil {
		r.logger.Warn("setting listener failed",
			zap.String("event", string(event.GetType())),
			zap.Error(err))
	}
}

func clone(s *entities.Setting) (*entities.Setting, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out entities.Setting
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
