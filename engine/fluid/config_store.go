package fluid

import "sync/atomic"

// ConfigStore holds the live SimulationConfig. Readers take a snapshot by value once per frame, so a
// concurrent Store is never observed half-applied.
type ConfigStore struct {
	current atomic.Pointer[SimulationConfig]
}

// NewConfigStore creates a ConfigStore seeded with cfg.
//
// Parameters:
//   - cfg: the initial configuration
//
// Returns:
//   - *ConfigStore: the store
func NewConfigStore(cfg SimulationConfig) *ConfigStore {
	s := &ConfigStore{}
	s.Store(cfg)
	return s
}

// Load returns a copy of the current configuration.
func (s *ConfigStore) Load() SimulationConfig {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return DefaultSimulationConfig()
}

// Store replaces the current configuration.
func (s *ConfigStore) Store(cfg SimulationConfig) {
	s.current.Store(&cfg)
}

// Update applies fn to a copy of the current configuration and stores the result.
// Concurrent updates are serialized by compare-and-swap.
func (s *ConfigStore) Update(fn func(cfg *SimulationConfig)) {
	for {
		old := s.current.Load()
		next := DefaultSimulationConfig()
		if old != nil {
			next = *old
		}
		fn(&next)
		if s.current.CompareAndSwap(old, &next) {
			return
		}
	}
}
