package validation

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Registry maps protocol identifiers to validator factories
type Registry struct {
	mu             sync.RWMutex
	factories      map[string]Factory
	defaultFactory Factory
	logger         *slog.Logger
}

// RegistryOption configures a registry
type RegistryOption func(*Registry)

// WithDefault sets the factory used when no identifier matches
func WithDefault(factory Factory) RegistryOption {
	return func(r *Registry) {
		if factory != nil {
			r.defaultFactory = factory
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry whose fallback is DefaultValidator
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		factories:      make(map[string]Factory),
		defaultFactory: func() Validator { return NewDefaultValidator() },
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewBuiltinRegistry creates a registry with the validators shipped with the
// library
func NewBuiltinRegistry(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)
	for identifier, chainID := range EthereumChains {
		r.MustRegister(identifier, func() Validator { return NewEthereumValidator(chainID) })
	}
	return r
}

// Register adds a factory for a protocol identifier
func (r *Registry) Register(identifier string, factory Factory) error {
	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("%w: identifier cannot be empty", ErrInvalidIdentifier)
	}
	if factory == nil {
		return ErrNilFactory
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[identifier]; exists {
		return fmt.Errorf("%w: %s", ErrValidatorExists, identifier)
	}
	r.factories[identifier] = factory
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(identifier string, factory Factory) {
	if err := r.Register(identifier, factory); err != nil {
		panic(err)
	}
}

// Resolve creates the validator for a protocol identifier. It never fails:
// unknown identifiers get the default validator.
func (r *Registry) Resolve(identifier string) Validator {
	r.mu.RLock()
	factory, match := r.lookup(identifier)
	r.mu.RUnlock()

	if match != identifier {
		r.logger.Debug("Validator resolved by fallback",
			"protocol", identifier,
			"match", match)
	}
	return factory()
}

// lookup returns the factory and the identifier it is registered under,
// which is empty for the default.
func (r *Registry) lookup(identifier string) (Factory, string) {
	if factory, ok := r.factories[identifier]; ok {
		return factory, identifier
	}

	best := ""
	for registered := range r.factories {
		if strings.HasPrefix(identifier, registered) && len(registered) > len(best) {
			best = registered
		}
	}
	if best != "" {
		return r.factories[best], best
	}
	return r.defaultFactory, ""
}

// Identifiers returns the registered identifiers in sorted order
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
