package config

import (
	"go.uber.org/atomic"
)

// Store publishes the current Config to concurrent readers. Configs are never mutated in place;
// writers swap in a new value.
type Store struct {
	current *atomic.Pointer[Config]
	version *atomic.Uint64
}

// NewStore returns a store holding cfg. cfg is not validated.
func NewStore(cfg Config) *Store {
	return &Store{
		current: atomic.NewPointer(&cfg),
		version: atomic.NewUint64(0),
	}
}

// Load returns the current config.
func (s *Store) Load() Config {
	return *s.current.Load()
}

// Version increases every time a new config is stored.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Store validates cfg and makes it current.
func (s *Store) Store(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.current.Store(&cfg)
	s.version.Inc()
	return nil
}

// Update applies fn to the current config and stores the result, retrying if another writer
// got there first. Nothing is stored if the result is invalid.
func (s *Store) Update(fn func(Config) Config) (Config, error) {
	for {
		old := s.current.Load()
		next := fn(*old)
		if err := next.Validate(); err != nil {
			return *old, err
		}
		if s.current.CompareAndSwap(old, &next) {
			s.version.Inc()
			return next, nil
		}
	}
}
